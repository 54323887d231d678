package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
)

func newSender(t *testing.T, h http.HandlerFunc) *HTTPSender {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s, err := NewHTTPSender(srv.URL+"/", logging.Nop())
	require.NoError(t, err)
	return s
}

func TestSend_Classification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Response
	}{
		{"json object", 200, `{"status":200,"response":"ok"}`, JSONResponse(200, map[string]any{"status": 200.0, "response": "ok"})},
		{"json 4xx stays json", 404, `{"status":404}`, JSONResponse(404, map[string]any{"status": 404.0})},
		{"empty body is empty string", 204, "", JSONResponse(204, "")},
		{"blank body is empty string", 200, "  \n", JSONResponse(200, "")},
		{"text 500", 500, "Internal Server Error", NonJSONResponse(500, "Internal Server Error")},
		{"html", 502, "<html></html>", NonJSONResponse(502, "<html></html>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			got := s.Send(context.Background(), Request{Method: http.MethodGet, URL: "/api/x"})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSend_RefusedConnectionIsNoResponse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s, err := NewHTTPSender("http://"+addr, logging.Nop())
	require.NoError(t, err)

	got := s.Send(context.Background(), Request{Method: http.MethodGet, URL: "/api/x"})
	assert.Equal(t, KindNoResponse, got.Kind)
	assert.NotEmpty(t, got.Reason)
	assert.False(t, got.Is2xx())
}

func TestSend_CanceledContextIsNoResponse(t *testing.T) {
	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := s.Send(ctx, Request{Method: http.MethodGet, URL: "/"})
	assert.Equal(t, KindNoResponse, got.Kind)
}

func TestSend_JSONBodyAndHeaders(t *testing.T) {
	var gotBody map[string]any
	var gotHeader http.Header
	var gotPath string

	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{}`)
	})

	s.Send(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     "api/accounts/login",
		Body:    map[string]string{"username": "u", "password": "p"},
		Token:   "tok",
		Headers: map[string]string{"X-Client": "cli"},
	})

	assert.Equal(t, "/api/accounts/login", gotPath)
	assert.Equal(t, map[string]any{"username": "u", "password": "p"}, gotBody)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", gotHeader.Get("Authorization"))
	assert.Equal(t, "cli", gotHeader.Get("X-Client"))

	_, err := uuid.Parse(gotHeader.Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestSend_NoBodyNoContentType(t *testing.T) {
	var header http.Header
	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
	})

	s.Send(context.Background(), Request{Method: http.MethodDelete, URL: "/api/books/1"})
	assert.Empty(t, header.Get("Content-Type"))
	assert.Empty(t, header.Get("Authorization"))
}

func TestSend_MultipartForm(t *testing.T) {
	var fields map[string]string
	var fileName, fileContent, contentType string

	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{
			"title":    r.FormValue("title"),
			"filename": r.FormValue("filename"),
		}
		f, hdr, err := r.FormFile("book")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		fileName, fileContent = hdr.Filename, string(b)
		_, _ = io.WriteString(w, `{"id":"b1"}`)
	})

	form := NewForm().
		AddField("title", "Dune").
		AddFile("book", "dune.epub", strings.NewReader("spice")).
		AddField("filename", "dune.epub")

	got := s.Send(context.Background(), Request{Method: http.MethodPost, URL: "/api/books", Form: form, Body: "ignored"})

	require.True(t, got.Is2xx())
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Equal(t, map[string]string{"title": "Dune", "filename": "dune.epub"}, fields)
	assert.Equal(t, "dune.epub", fileName)
	assert.Equal(t, "spice", fileContent)
}

func TestSend_ProgressReportsUntilReturn(t *testing.T) {
	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = io.WriteString(w, `{"id":"b1"}`)
	})

	var mu sync.Mutex
	var calls [][2]int64
	returned := false
	lateCall := false

	onProgress := func(loaded, total int64) {
		mu.Lock()
		defer mu.Unlock()
		if returned {
			lateCall = true
		}
		calls = append(calls, [2]int64{loaded, total})
	}

	content := strings.Repeat("x", 256<<10)
	form := NewForm().AddField("title", "t").AddFile("book", "b.txt", strings.NewReader(content))
	s.Send(context.Background(), Request{Method: http.MethodPost, URL: "/api/books", Form: form, OnProgress: onProgress})

	mu.Lock()
	returned = true
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i][0], calls[i-1][0])
	}
	mu.Unlock()

	assert.Equal(t, last[1], last[0], "the whole body was reported")
	assert.Greater(t, last[1], int64(len(content)))
	assert.False(t, lateCall)
}

func TestProgressReader_StopSilencesCallbacks(t *testing.T) {
	calls := 0
	p := newProgressReader(strings.NewReader("abcdef"), 6, func(int64, int64) { calls++ })

	buf := make([]byte, 3)
	_, _ = p.Read(buf)
	p.stop()
	_, _ = p.Read(buf)

	assert.Equal(t, 1, calls)
}

func TestSend_CookiesPersist(t *testing.T) {
	var second string
	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/accounts/login" {
			http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "r1", Path: "/"})
			return
		}
		if c, err := r.Cookie("refresh"); err == nil {
			second = c.Value
		}
	})

	s.Send(context.Background(), Request{Method: http.MethodPost, URL: "/api/accounts/login", Body: map[string]string{}})
	s.Send(context.Background(), Request{Method: http.MethodPost, URL: "/api/login/refresh", Body: map[string]string{}})

	assert.Equal(t, "r1", second)
}

func TestURL(t *testing.T) {
	s, err := NewHTTPSender("https://books.example/app/", logging.Nop())
	require.NoError(t, err)

	assert.Equal(t, "https://books.example/app/api/books/1", s.URL("/api/books/1"))
	assert.Equal(t, "https://books.example/app/api/books/1", s.URL("api/books/1"))
}

func TestResponse_Describe(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "no response", "reason": "refused"}, NoResponse("refused").Describe())
	assert.Equal(t, map[string]any{"type": "non json response", "status": 500, "response": "oops"}, NonJSONResponse(500, "oops").Describe())
	assert.Equal(t, map[string]any{"type": "json response", "status": 401, "response": ""}, JSONResponse(401, "").Describe())
}

func TestForm_Lookup(t *testing.T) {
	f := NewForm().AddField("title", "Dune").AddFile("book", "d.epub", strings.NewReader(""))

	assert.True(t, f.Has("book"))
	assert.False(t, f.Has("filename"))

	v, ok := f.Value("title")
	assert.True(t, ok)
	assert.Equal(t, "Dune", v)

	_, ok = f.Value("book")
	assert.False(t, ok, "file parts have no plain value")

	var nilForm *Form
	assert.False(t, nilForm.Has("title"))
}
