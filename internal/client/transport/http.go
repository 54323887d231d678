package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// HTTPSender is the net/http implementation of Sender. It keeps a cookie jar
// across requests and imposes no timeout of its own; callers bound requests
// with their context.
type HTTPSender struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

type Option func(*HTTPSender)

// WithHTTPClient replaces the default client. Its Jar is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSender) { s.client = c }
}

func NewHTTPSender(baseURL string, logger logging.Logger, opts ...Option) (*HTTPSender, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	s := &HTTPSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar},
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// URL joins path onto the base URL.
func (s *HTTPSender) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (s *HTTPSender) Send(ctx context.Context, req Request) Response {
	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID, "method", req.Method, "url", req.URL)

	body, contentType, err := encodeBody(req)
	if err != nil {
		log.Warn(ctx, "could not encode request body", "error", err)
		return NoResponse(fmt.Sprintf("could not encode request body: %v", err))
	}

	var reader io.Reader
	var size int64
	if body != nil {
		size = int64(body.Len())
		reader = body
		if req.OnProgress != nil {
			progress := newProgressReader(body, size, req.OnProgress)
			reader = progress
			defer progress.stop()
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, s.URL(req.URL), reader)
	if err != nil {
		return NoResponse(err.Error())
	}
	httpReq.ContentLength = size
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		log.Debug(ctx, "no response", "error", err, "elapsed", time.Since(start))
		return NoResponse(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug(ctx, "response body interrupted", "status", resp.StatusCode, "error", err)
		return NoResponse(fmt.Sprintf("reading response body: %v", err))
	}

	log.Debug(ctx, "exchange complete", "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start))
	return classify(resp.StatusCode, raw)
}

func classify(status int, raw []byte) Response {
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return JSONResponse(status, "")
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return NonJSONResponse(status, text)
	}
	return JSONResponse(status, body)
}

// encodeBody returns the buffered body and its Content-Type. Multipart
// bodies are buffered so their length, and thus progress, is known.
func encodeBody(req Request) (*bytes.Buffer, string, error) {
	if req.Form != nil {
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for _, p := range req.Form.parts {
			if p.content == nil {
				if err := w.WriteField(p.name, p.value); err != nil {
					return nil, "", err
				}
				continue
			}
			fw, err := w.CreateFormFile(p.name, p.filename)
			if err != nil {
				return nil, "", err
			}
			if _, err := io.Copy(fw, p.content); err != nil {
				return nil, "", fmt.Errorf("form part %s: %w", p.name, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf, w.FormDataContentType(), nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewBuffer(b), "application/json", nil
}
