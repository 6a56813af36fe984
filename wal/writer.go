package wal

import (
	"errors"
	"io"
	"sync"

	"github.com/flashts-io/flashts/segmentmanager"
)

// ErrClosed is returned by Writer.Write once Close has been called.
var ErrClosed = errors.New("wal: writer closed")

// Writer serializes concurrent pushes onto a single background goroutine
// that owns the segment manager, so callers never block on each other's
// fsyncs beyond the queue depth.
type Writer struct {
	mu     sync.Mutex
	ch     chan *writeRequest
	done   chan struct{}
	closed bool
	sm     segmentmanager.SegmentManager
	wg     sync.WaitGroup
}

type writeRequest struct {
	entry *Entry
	done  chan error
}

// NewWriter starts the writer loop over sm. buffer sizes the pending-write
// queue; 0 makes every Write synchronous with the loop goroutine.
func NewWriter(buffer int, sm segmentmanager.SegmentManager) *Writer {
	w := &Writer{
		ch:   make(chan *writeRequest, buffer),
		done: make(chan struct{}),
		sm:   sm,
	}
	go w.loop()
	return w
}

// Write durably appends entry and blocks until it is synced or the writer
// is closed.
func (w *Writer) Write(entry *Entry) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	req := &writeRequest{entry: entry, done: make(chan error, 1)}
	select {
	case w.ch <- req:
		return <-req.done
	case <-w.done:
		return ErrClosed
	}
}

// Close drains in-flight writes, stops the loop, and closes the
// underlying segment manager. Safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.wg.Wait()
	close(w.ch)
	<-w.done
	return w.sm.Close()
}

func (w *Writer) loop() {
	defer close(w.done)
	for req := range w.ch {
		var encodeErr error
		err := w.sm.WriteActive(req.entry.Size(), func(dst io.Writer) {
			encodeErr = req.entry.Encode(dst)
		})
		if encodeErr != nil {
			req.done <- encodeErr
			continue
		}
		req.done <- err
	}
}
