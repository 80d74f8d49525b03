package pkg

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// CombinedWriter writes every message to all of its writers. A write succeeds as long
// as one of the writers took the whole message; errors of the others are combined.
type CombinedWriter struct {
	mu      sync.Mutex
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	var (
		errs    error
		written bool
	)
	for _, w := range cw.Writers {
		n, err := w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		written = true
	}

	if !written {
		return 0, errs
	}
	return len(p), errs
}

// Close closes the writers that are io.Closers (e.g. rotating log files).
func (cw *CombinedWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	var errs error
	for _, w := range cw.Writers {
		if c, ok := w.(io.Closer); ok {
			errs = multierr.Append(errs, c.Close())
		}
	}
	return errs
}
