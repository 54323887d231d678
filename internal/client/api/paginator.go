package api

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

// PageFunc fetches the page at index.
type PageFunc[T any] func(ctx context.Context, index int) result.Result[[]T, string]

// Paginator walks pages 0, 1, 2, ... and stops at the first empty page or
// failure. A page is never requested twice.
type Paginator[T any] struct {
	fetch PageFunc[T]

	mu       sync.Mutex
	next     int
	inFlight bool
	done     bool
}

func NewPaginator[T any](fetch PageFunc[T]) *Paginator[T] {
	return &Paginator[T]{fetch: fetch}
}

// SearchPages returns a Paginator over Search results for query.
func (s *Service) SearchPages(session auth.Session, query string, pageSize int) *Paginator[Book] {
	return NewPaginator(func(ctx context.Context, index int) result.Result[[]Book, string] {
		return s.Search(ctx, session, query, pageSize, index)
	})
}

// Next fetches the next page. Once Done it returns an empty page without
// fetching; while another Next is running it fails immediately.
func (p *Paginator[T]) Next(ctx context.Context) result.Result[[]T, string] {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return result.Success[[]T, string]([]T{})
	}
	if p.inFlight {
		idx := p.next
		p.mu.Unlock()
		return result.Failuref[[]T]("page %d is already being fetched", idx)
	}
	p.inFlight = true
	idx := p.next
	p.mu.Unlock()

	res := p.fetch(ctx, idx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if res.IsError() || len(res.Value()) == 0 {
		p.done = true
	} else {
		p.next++
	}
	return res
}

func (p *Paginator[T]) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Page is the index the next call to Next will request.
func (p *Paginator[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Collect drains the paginator and concatenates every page.
func (p *Paginator[T]) Collect(ctx context.Context) result.Result[[]T, string] {
	all := []T{}
	for !p.Done() {
		res := p.Next(ctx)
		if res.IsError() {
			return res
		}
		all = append(all, res.Value()...)
	}
	return result.Success[[]T, string](all)
}
