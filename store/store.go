// Package store implements the mutable write path: an in-memory buffer of
// pushed datapoints that periodically reconciles into timestamp order and
// persists through storageapi.
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/wal"
)

// Store holds one metric's writable buffer: newly pushed datapoints land
// in dirty, unordered, until reconcile merges them into sorted. Every
// exported method is safe for concurrent use.
type Store struct {
	id         uuid.UUID
	metric     schema.Metric
	fieldTypes []schema.FieldType
	sorter     schema.DatapointSorter

	mu     sync.Mutex
	dirty  []schema.DataPoint
	sorted []schema.DataPoint

	wal *wal.WAL
}

// Option configures a Store at construction.
type Option func(*Store)

// WithSorter overrides the default timestamp-only comparator used to
// order the dirty buffer before merging it into sorted.
func WithSorter(sorter schema.DatapointSorter) Option {
	return func(s *Store) { s.sorter = sorter }
}

// WithWAL attaches a write-ahead log; every Push/PushMulti is durably
// recorded there before it is acknowledged.
func WithWAL(w *wal.WAL) Option {
	return func(s *Store) { s.wal = w }
}

// New creates a Store for metric, whose datapoints must each carry
// fieldTypes as their field tuple.
func New(metric schema.Metric, fieldTypes []schema.FieldType, opts ...Option) *Store {
	s := &Store{
		id:         uuid.New(),
		metric:     metric,
		fieldTypes: fieldTypes,
		sorter:     schema.DefaultSorter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns this store instance's identity, used to recognize and clean
// up its own advisory locks on shutdown.
func (s *Store) ID() uuid.UUID { return s.id }

// Metric returns the metric this store buffers.
func (s *Store) Metric() schema.Metric { return s.metric }

func (s *Store) checkFieldTypes(dp schema.DataPoint) error {
	if !schema.SameFieldTypes(s.fieldTypes, dp.Fields) {
		return &schema.DataFieldTypesMismatchedError{
			Expected: s.fieldTypes,
			Got:      dp.FieldTypes(),
		}
	}
	return nil
}

// Push appends one datapoint to the dirty buffer, recording it to the WAL
// first if one is attached.
func (s *Store) Push(dp schema.DataPoint) error {
	if err := s.checkFieldTypes(dp); err != nil {
		return err
	}
	if s.wal != nil {
		if err := s.wal.Push(s.metric, dp); err != nil {
			return fmt.Errorf("store: wal push: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = append(s.dirty, dp)
	return nil
}

// PushReplayed appends a datapoint recovered from the WAL straight to the
// dirty buffer without re-recording it there: it is already durable, and
// writing it again would grow the WAL without bound across restarts.
func (s *Store) PushReplayed(dp schema.DataPoint) error {
	if err := s.checkFieldTypes(dp); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = append(s.dirty, dp)
	return nil
}

// PushMulti appends a batch of datapoints, validating every one's field
// types before appending any of them.
func (s *Store) PushMulti(datapoints []schema.DataPoint) error {
	for _, dp := range datapoints {
		if err := s.checkFieldTypes(dp); err != nil {
			return err
		}
	}
	if s.wal != nil {
		for _, dp := range datapoints {
			if err := s.wal.Push(s.metric, dp); err != nil {
				return fmt.Errorf("store: wal push: %w", err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = append(s.dirty, datapoints...)
	return nil
}
