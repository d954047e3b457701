package tprime

import (
	"io"
	"sync"

	"github.com/tutils/tprime/prime"
)

// SyncWriter is concurrency safe writer
type SyncWriter struct {
	w  io.Writer
	mu sync.Mutex
}

func (w *SyncWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// NewSyncWriter create a new SyncWriter
func NewSyncWriter(w io.Writer) io.Writer {
	return &SyncWriter{w: w}
}

// Progress marks
var (
	MarkRejected = []byte("X")
	MarkAccepted = []byte("O")
)

// Progress writes one mark per tested candidate. Observers of concurrent
// runs may share it.
type Progress struct {
	w io.Writer
}

// NewProgress create a new Progress writing to w
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: NewSyncWriter(w)}
}

// Observer returns a prime.Observer that writes to p.
func (p *Progress) Observer() prime.Observer {
	return func(e prime.Event) {
		if e.Accepted {
			p.w.Write(MarkAccepted)
		} else {
			p.w.Write(MarkRejected)
		}
	}
}
