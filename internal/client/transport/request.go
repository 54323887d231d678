package transport

import (
	"context"
	"io"
	"slices"
)

// ProgressFunc receives the number of request body bytes sent so far and the
// total body length.
type ProgressFunc func(loaded, total int64)

// Request describes one exchange. URL is a path relative to the sender's base
// URL. When Form is set it is sent as multipart/form-data and Body is ignored;
// otherwise a non-nil Body is sent as JSON.
type Request struct {
	Method     string
	URL        string
	Body       any
	Form       *Form
	Token      string
	Headers    map[string]string
	OnProgress ProgressFunc
}

// Sender performs a single HTTP exchange and classifies its outcome.
// Send never returns an error: failures are expressed in the Response.
type Sender interface {
	Send(ctx context.Context, req Request) Response
}

type formPart struct {
	name     string
	value    string
	filename string
	content  io.Reader
}

// Form is an ordered multipart payload.
type Form struct {
	parts []formPart
}

func NewForm() *Form {
	return &Form{}
}

func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

func (f *Form) AddFile(name, filename string, content io.Reader) *Form {
	f.parts = append(f.parts, formPart{name: name, filename: filename, content: content})
	return f
}

// Has reports whether a part called name is present.
func (f *Form) Has(name string) bool {
	if f == nil {
		return false
	}
	return slices.ContainsFunc(f.parts, func(p formPart) bool { return p.name == name })
}

// Value returns the value of the first plain field called name.
func (f *Form) Value(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, p := range f.parts {
		if p.name == name && p.content == nil {
			return p.value, true
		}
	}
	return "", false
}
