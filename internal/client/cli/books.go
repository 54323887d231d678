package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/bookshelf/internal/client/api"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

// Search lists matching books one page at a time, asking before each
// further page.
func (a *App) Search(ctx context.Context, query string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	pages := a.library.SearchPages(session, query, a.config.PageSize)
	shown := 0
	for {
		res := track(ctx, a, "Searching", pages.Next)
		if res.IsError() {
			return failure("search failed", res.Error())
		}

		for _, b := range res.Value() {
			shown++
			fmt.Fprintf(a.out, "%3d. %s  %s  [%s]\n", shown, b.Title, humanize.IBytes(uint64(max(b.Size, 0))), b.ID)
		}

		if pages.Done() {
			break
		}
		more, err := Confirm(a.reader, "Show more?", a.out)
		if err != nil || !more {
			break
		}
	}

	if shown == 0 {
		fmt.Fprintln(a.out, "No books found")
	}
	return nil
}

func (a *App) Count(ctx context.Context, query string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	res := track(ctx, a, "Counting", func(ctx context.Context) result.Result[int, string] {
		return a.library.SearchCount(ctx, session, query)
	})
	if res.IsError() {
		return failure("count failed", res.Error())
	}

	fmt.Fprintf(a.out, "%s book(s) match %q\n", humanize.Comma(int64(res.Value())), query)
	return nil
}

func (a *App) Suggest(ctx context.Context, query string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	res := track(ctx, a, "Looking up", func(ctx context.Context) result.Result[[]api.Suggestion, string] {
		return a.library.Suggestions(ctx, session, query, a.config.SuggestionLimit)
	})
	if res.IsError() {
		return failure("suggestions failed", res.Error())
	}

	if len(res.Value()) == 0 {
		fmt.Fprintln(a.out, "No suggestions")
		return nil
	}
	for _, s := range res.Value() {
		fmt.Fprintf(a.out, "  %-10s %s  [%s]\n", s.Tag, s.Text, s.ID)
	}
	return nil
}

// Show prints one or more books; arg holds whitespace-separated ids.
// Several ids are fetched concurrently and printed in the order given.
func (a *App) Show(ctx context.Context, arg string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	ids := strings.Fields(arg)
	if len(ids) == 0 {
		return errors.New("no book id given")
	}

	var res result.Result[[]api.Book, string]
	if len(ids) == 1 {
		res = track(ctx, a, "Loading", func(ctx context.Context) result.Result[[]api.Book, string] {
			return result.Map(a.library.Book(ctx, session, ids[0]), func(b api.Book) []api.Book { return []api.Book{b} })
		})
	} else {
		res = track(ctx, a, fmt.Sprintf("Loading %d books", len(ids)), func(ctx context.Context) result.Result[[]api.Book, string] {
			return a.library.Books(ctx, session, ids)
		})
	}
	if res.IsError() {
		return failure("could not load book", res.Error())
	}

	for i, b := range res.Value() {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		a.printBook(b)
	}
	return nil
}

func (a *App) printBook(b api.Book) {
	fmt.Fprintf(a.out, "Title:     %s\n", b.Title)
	fmt.Fprintf(a.out, "ID:        %s\n", b.ID)
	fmt.Fprintf(a.out, "Size:      %s\n", humanize.IBytes(uint64(max(b.Size, 0))))
	for _, k := range slices.Sorted(maps.Keys(b.Metadata)) {
		fmt.Fprintf(a.out, "  %s: %s\n", k, b.Metadata[k])
	}
	fmt.Fprintf(a.out, "Cover:     %s\n", a.library.CoverURL(b.ID))
	fmt.Fprintf(a.out, "Thumbnail: %s\n", a.library.ThumbnailURL(b.ID))
	fmt.Fprintf(a.out, "Download:  %s\n", a.library.DownloadURL(b.ID))
}

func (a *App) Delete(ctx context.Context, id string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete book %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	res := track(ctx, a, "Deleting", func(ctx context.Context) result.Result[struct{}, string] {
		return a.library.DeleteBook(ctx, session, id)
	})
	if res.IsError() {
		return failure("could not delete book", res.Error())
	}

	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Edit replaces the title and metadata of a book. An empty title keeps the
// current one; entering no metadata lines keeps the current metadata.
func (a *App) Edit(ctx context.Context, id string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	current := track(ctx, a, "Loading", func(ctx context.Context) result.Result[api.Book, string] {
		return a.library.Book(ctx, session, id)
	})
	if current.IsError() {
		return failure("could not load book", current.Error())
	}
	b := current.Value()

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", b.Title), a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = b.Title
	}

	lines, err := GetMetadata(a.reader, a.out)
	if err != nil {
		return err
	}
	metadata := b.Metadata
	if len(lines) > 0 {
		if metadata, err = ParseMetadata(lines); err != nil {
			return err
		}
	}

	res := track(ctx, a, "Saving", func(ctx context.Context) result.Result[struct{}, string] {
		return a.library.UpdateBookMetadata(ctx, session, b.ID, title, metadata)
	})
	if res.IsError() {
		return failure("could not update book", res.Error())
	}

	fmt.Fprintln(a.out, "Saved")
	return nil
}

// Upload sends the file at path as a new book, reporting progress as the
// body is written.
func (a *App) Upload(ctx context.Context, path string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	filename := filepath.Base(path)
	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", filename), a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = filename
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var mu sync.Mutex
	progress := func(loaded, total int64) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(a.out, "\rUploading %s / %s", humanize.IBytes(uint64(loaded)), humanize.IBytes(uint64(total)))
	}

	res := a.library.UploadBook(ctx, session, api.UploadForm{Title: title, Filename: filename, Content: f}, progress)
	fmt.Fprint(a.out, "\r\033[K")
	if res.IsError() {
		return failure("upload failed", res.Error())
	}

	fmt.Fprintf(a.out, "Uploaded %q as %s\n", title, res.Value())
	return nil
}
