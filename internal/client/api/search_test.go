package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBlankQueryShortCircuits(t *testing.T) {
	// no EXPECT: any Send fails the test
	f := newFixture(t)
	session := f.login(t, "alice")
	ctx := context.Background()

	search := f.svc.Search(ctx, session, "", 10, 0)
	require.True(t, search.IsSuccess())
	assert.NotNil(t, search.Value())
	assert.Empty(t, search.Value())

	suggestions := f.svc.Suggestions(ctx, session, "", 5)
	require.True(t, suggestions.IsSuccess())
	assert.Empty(t, suggestions.Value())

	count := f.svc.SearchCount(ctx, session, " ")
	require.True(t, count.IsSuccess())
	assert.Zero(t, count.Value())
}

func TestSearch_RequestAndResults(t *testing.T) {
	f := newFixture(t)
	session := f.login(t, "alice")

	f.sender.EXPECT().
		Send(gomock.Any(), request{http.MethodGet, "/api/search/query/dune%20messiah?count=2&page=3", session.Token}).
		Return(okJSON(t, `{"status":200,"response":"ok","results":[`+bookJSON+`]}`))

	res := f.svc.Search(context.Background(), session, "dune messiah", 2, 3)
	require.True(t, res.IsSuccess(), res.Error())
	assert.Equal(t, []Book{dune}, res.Value())
}

func TestSearch_BadPaging(t *testing.T) {
	f := newFixture(t)
	session := f.login(t, "alice")

	assert.True(t, f.svc.Search(context.Background(), session, "q", 0, 0).IsError())
	assert.True(t, f.svc.Search(context.Background(), session, "q", 10, -1).IsError())
}

func TestSearch_InvalidResultElement(t *testing.T) {
	f := newFixture(t)
	session := f.login(t, "alice")

	f.sender.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(okJSON(t, `{"status":200,"response":"ok","results":[`+bookJSON+`,{"id":"b2","title":"x","size":1}]}`))

	res := f.svc.Search(context.Background(), session, "q", 10, 0)
	require.True(t, res.IsError())
	assert.Contains(t, res.Error(), `$.results[1]: missing required key "metadata"`)
}

func TestSearchCount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr string
	}{
		{name: "positive", body: `{"status":200,"response":"ok","count":42}`, want: 42},
		{name: "zero", body: `{"status":200,"response":"ok","count":0}`, want: 0},
		{name: "negative", body: `{"status":200,"response":"ok","count":-1}`, wantErr: "negative"},
		{name: "fractional", body: `{"status":200,"response":"ok","count":2.5}`, wantErr: "not an integer"},
		{name: "string", body: `{"status":200,"response":"ok","count":"3"}`, wantErr: `$.count: "3" is not a number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			session := f.login(t, "alice")
			f.sender.EXPECT().
				Send(gomock.Any(), request{http.MethodGet, "/api/search/count/dune", session.Token}).
				Return(okJSON(t, tt.body))

			res := f.svc.SearchCount(context.Background(), session, "dune")
			if tt.wantErr != "" {
				require.True(t, res.IsError())
				assert.Contains(t, res.Error(), tt.wantErr)
				return
			}
			require.True(t, res.IsSuccess(), res.Error())
			assert.Equal(t, tt.want, res.Value())
		})
	}
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t)
	session := f.login(t, "alice")

	gomock.InOrder(
		f.sender.EXPECT().
			Send(gomock.Any(), request{http.MethodGet, "/api/suggestions/du/3", session.Token}).
			Return(okJSON(t, `[{"id":"b1","text":"Dune","tag":"title"},{"id":"a1","text":"Dunsany","tag":"author"}]`)),
		f.sender.EXPECT().
			Send(gomock.Any(), request{http.MethodGet, "/api/suggestions/du/5", session.Token}).
			Return(okJSON(t, `[{"id":"b1","text":"Dune"}]`)),
	)

	res := f.svc.Suggestions(context.Background(), session, "du", 3)
	require.True(t, res.IsSuccess(), res.Error())
	assert.Equal(t, []Suggestion{
		{ID: "b1", Text: "Dune", Tag: "title"},
		{ID: "a1", Text: "Dunsany", Tag: "author"},
	}, res.Value())

	bad := f.svc.Suggestions(context.Background(), session, "du", 0)
	require.True(t, bad.IsError())
	assert.Contains(t, bad.Error(), `$[0]: missing required key "tag"`)
}
