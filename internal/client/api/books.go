package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/client/transport"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

const (
	pathBookMetadata = "/api/books/metadata/"
	pathBooks        = "/api/books"
	pathCover        = "/api/books/cover/"
	pathThumbnail    = "/api/books/thumbnail/"
	pathDownload     = "/api/books/download/"
)

const errBlankID = "book id must not be blank"

// Upload form fields expected by the server.
const (
	FieldTitle    = "title"
	FieldBook     = "book"
	FieldFilename = "filename"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (s *Service) Book(ctx context.Context, session auth.Session, id string) result.Result[Book, string] {
	if blank(id) {
		return result.Failure[Book](errBlankID)
	}

	resp := s.authorized(ctx, session, call{
		method: http.MethodGet,
		path:   pathBookMetadata + url.PathEscape(id),
	})
	return postProcess(resp, decodeAs[Book](bookSchema))
}

// Books fetches several books concurrently. The result keeps the order of
// ids; the first failure fails the whole call.
func (s *Service) Books(ctx context.Context, session auth.Session, ids []string) result.Result[[]Book, string] {
	out := make([]Book, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			res := s.Book(gctx, session, id)
			if res.IsError() {
				return fmt.Errorf("book %q: %s", id, res.Error())
			}
			out[i] = res.Value()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result.Failure[[]Book](err.Error())
	}
	return result.Success[[]Book, string](out)
}

func (s *Service) DeleteBook(ctx context.Context, session auth.Session, id string) result.Result[struct{}, string] {
	if blank(id) {
		return result.Failure[struct{}](errBlankID)
	}

	resp := s.authorized(ctx, session, call{
		method: http.MethodDelete,
		path:   pathBooks + "/" + url.PathEscape(id),
	})
	return postProcess(resp, ignoreBody)
}

func (s *Service) UpdateBookMetadata(ctx context.Context, session auth.Session, id, title string, metadata map[string]string) result.Result[struct{}, string] {
	if blank(id) {
		return result.Failure[struct{}](errBlankID)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	resp := s.authorized(ctx, session, call{
		method: http.MethodPut,
		path:   pathBookMetadata + url.PathEscape(id),
		body:   updateMetadataRequest{Title: title, Metadata: metadata},
	})
	return postProcess(resp, ignoreBody)
}

func ignoreBody(any) result.Result[struct{}, string] {
	return result.Success[struct{}, string](struct{}{})
}

// UploadBook sends form as multipart data and returns the new book id.
// onProgress may be nil.
func (s *Service) UploadBook(ctx context.Context, session auth.Session, form UploadForm, onProgress transport.ProgressFunc) result.Result[string, string] {
	switch {
	case blank(form.Title):
		return result.Failuref[string]("upload form is missing the %q field", FieldTitle)
	case form.Content == nil:
		return result.Failuref[string]("upload form is missing the %q field", FieldBook)
	case blank(form.Filename):
		return result.Failuref[string]("upload form is missing the %q field", FieldFilename)
	}

	content, err := io.ReadAll(form.Content)
	if err != nil {
		return result.Failuref[string]("could not read %s: %v", form.Filename, err)
	}

	resp := s.authorized(ctx, session, call{
		method: http.MethodPost,
		path:   pathBooks,
		form: func() *transport.Form {
			return transport.NewForm().
				AddField(FieldTitle, form.Title).
				AddFile(FieldBook, form.Filename, bytes.NewReader(content)).
				AddField(FieldFilename, form.Filename)
		},
		onProgress: onProgress,
	})

	res := result.Map(
		postProcess(resp, decodeAs[uploadResponse](uploadResponseSchema)),
		func(r uploadResponse) string { return r.ID },
	)
	if res.IsSuccess() {
		s.logger.Info(ctx, "book uploaded", "id", res.Value(), "bytes", len(content))
	}
	return res
}

func (s *Service) CoverURL(id string) string {
	return s.url(pathCover + url.PathEscape(id))
}

func (s *Service) ThumbnailURL(id string) string {
	return s.url(pathThumbnail + url.PathEscape(id))
}

func (s *Service) DownloadURL(id string) string {
	return s.url(pathDownload + url.PathEscape(id))
}
