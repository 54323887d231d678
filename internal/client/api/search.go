package api

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

const (
	pathSearchQuery = "/api/search/query/"
	pathSearchCount = "/api/search/count/"
	pathSuggestions = "/api/suggestions/"
)

const DefaultSuggestionLimit = 5

// Search returns one page of results. A blank query is an empty page and
// sends nothing.
func (s *Service) Search(ctx context.Context, session auth.Session, query string, pageSize, pageIndex int) result.Result[[]Book, string] {
	if blank(query) {
		return result.Success[[]Book, string]([]Book{})
	}
	if pageSize <= 0 {
		return result.Failuref[[]Book]("page size must be positive, got %d", pageSize)
	}
	if pageIndex < 0 {
		return result.Failuref[[]Book]("page index must not be negative, got %d", pageIndex)
	}

	params := url.Values{}
	params.Set("count", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(pageIndex))

	resp := s.authorized(ctx, session, call{
		method: http.MethodGet,
		path:   pathSearchQuery + url.PathEscape(query) + "?" + params.Encode(),
	})

	return result.Map(
		postProcess(resp, decodeAs[searchResponse](searchResponseSchema)),
		func(r searchResponse) []Book {
			if r.Results == nil {
				return []Book{}
			}
			return r.Results
		},
	)
}

// SearchCount returns the total number of matches for query.
func (s *Service) SearchCount(ctx context.Context, session auth.Session, query string) result.Result[int, string] {
	if blank(query) {
		return result.Success[int, string](0)
	}

	resp := s.authorized(ctx, session, call{
		method: http.MethodGet,
		path:   pathSearchCount + url.PathEscape(query),
	})

	return result.Then(
		postProcess(resp, decodeAs[searchCountResponse](searchCountResponseSchema)),
		func(r searchCountResponse) result.Result[int, string] {
			if r.Count < 0 {
				return result.Failuref[int]("$.count: %v is negative", r.Count)
			}
			if r.Count != math.Trunc(r.Count) {
				return result.Failuref[int]("$.count: %v is not an integer", r.Count)
			}
			return result.Success[int, string](int(r.Count))
		},
	)
}

// Suggestions returns up to limit completions for query; limit <= 0 means
// DefaultSuggestionLimit. A blank query sends nothing.
func (s *Service) Suggestions(ctx context.Context, session auth.Session, query string, limit int) result.Result[[]Suggestion, string] {
	if blank(query) {
		return result.Success[[]Suggestion, string]([]Suggestion{})
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	resp := s.authorized(ctx, session, call{
		method: http.MethodGet,
		path:   pathSuggestions + url.PathEscape(query) + "/" + strconv.Itoa(limit),
	})
	return postProcess(resp, decodeAs[[]Suggestion](suggestionsSchema))
}
