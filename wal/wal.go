package wal

import (
	"iter"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/segmentmanager"
	"github.com/flashts-io/flashts/tstime"
)

// defaultWriteBuffer bounds how many pushes can be in flight before Write
// blocks on the background loop.
const defaultWriteBuffer = 64

// WAL is a durable log of pushed datapoints for one metric, backed by a
// directory of rotating segment files.
type WAL struct {
	dir    string
	writer *Writer
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	segmentOpts []segmentmanager.DiskSegmentManagerOption
}

// WithMaxSegmentSize overrides the segment rotation threshold, mostly
// useful in tests that want to exercise rotation and truncation without
// writing megabytes of entries.
func WithMaxSegmentSize(n int64) Option {
	return func(o *openOptions) {
		o.segmentOpts = append(o.segmentOpts, segmentmanager.WithMaxSegmentSize(n))
	}
}

// Open opens (or creates) the WAL directory for a metric and starts its
// background writer.
func Open(dir string, opts ...Option) (*WAL, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	sm, err := segmentmanager.NewDiskSegmentManager(dir, o.segmentOpts...)
	if err != nil {
		return nil, err
	}
	return &WAL{dir: dir, writer: NewWriter(defaultWriteBuffer, sm)}, nil
}

// Push durably appends a push entry and waits for it to be synced.
func (w *WAL) Push(metric schema.Metric, dp schema.DataPoint) error {
	return w.writer.Write(&Entry{
		Op:        OperationPush,
		Metric:    metric,
		DataPoint: dp,
	})
}

// Replay returns every entry durably recorded across this WAL's segments,
// oldest first, for recovery on store open.
func (w *WAL) Replay() (iter.Seq2[*Entry, error], error) {
	r, err := NewReader(w.dir)
	if err != nil {
		return nil, err
	}
	return r.Entries(), nil
}

// TruncateBefore deletes every closed segment whose entries are all older
// than until, now that they are durably captured in a persisted block and
// no longer need WAL protection. It is a no-op if no segment qualifies.
func (w *WAL) TruncateBefore(until tstime.Nano) error {
	r, err := NewReader(w.dir)
	if err != nil {
		return err
	}
	id, ok := r.segmentWatermark(until)
	if !ok {
		return nil
	}
	return w.writer.sm.DeleteThrough(id)
}

// Close flushes and closes the background writer and its segment files.
func (w *WAL) Close() error {
	return w.writer.Close()
}
