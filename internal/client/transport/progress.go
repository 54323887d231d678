package transport

import (
	"io"
	"sync"
)

// progressReader reports bytes read through fn until stop is called.
// After stop returns fn is never invoked again.
type progressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu      sync.Mutex
	loaded  int64
	stopped bool
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.loaded += int64(n)
		if !p.stopped {
			p.fn(p.loaded, p.total)
		}
		p.mu.Unlock()
	}
	return n, err
}

func (p *progressReader) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}
