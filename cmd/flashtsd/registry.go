package main

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/flashts-io/flashts/config"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/storageapi"
	"github.com/flashts-io/flashts/store"
	"github.com/flashts-io/flashts/wal"
)

// registry lazily opens one Store (with its own WAL and periodic persist
// loop) per metric on first use, and tears every one of them down on
// shutdown.
type registry struct {
	api *storageapi.API
	cfg config.Config

	mu      sync.Mutex
	stores  map[schema.Metric]*store.Store
	wals    map[schema.Metric]*wal.WAL
	persist map[schema.Metric]*store.PeriodicPersistShutdown
}

func newRegistry(api *storageapi.API, cfg config.Config) *registry {
	return &registry{
		api:     api,
		cfg:     cfg,
		stores:  make(map[schema.Metric]*store.Store),
		wals:    make(map[schema.Metric]*wal.WAL),
		persist: make(map[schema.Metric]*store.PeriodicPersistShutdown),
	}
}

// open returns metric's Store, creating it (and replaying its WAL) on
// first use.
func (r *registry) open(metric schema.Metric, fieldTypes []schema.FieldType) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[metric]; ok {
		return s, nil
	}

	w, err := wal.Open(filepath.Join(r.cfg.DBDir, "wal", string(metric)))
	if err != nil {
		return nil, err
	}

	s := store.New(metric, fieldTypes, store.WithWAL(w))

	entries, err := w.Replay()
	if err != nil {
		return nil, err
	}
	for entry, err := range entries {
		if err != nil {
			return nil, err
		}
		if pushErr := s.PushReplayed(entry.DataPoint); pushErr != nil {
			slog.Warn("dropping unreplayable wal entry", "metric", metric, "error", pushErr)
		}
	}

	r.stores[metric] = s
	r.wals[metric] = w
	if r.cfg.PersistInterval > 0 {
		r.persist[metric] = s.StartPeriodicPersist(r.api, r.cfg.PersistInterval)
	}
	return s, nil
}

// shutdown stops every periodic persist loop and closes every WAL.
func (r *registry) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, shutdown := range r.persist {
		shutdown.Shutdown()
	}
	for metric, s := range r.stores {
		if err := s.ScavengeOnShutdown(r.api); err != nil {
			slog.Error("scavenge on shutdown", "metric", metric, "error", err)
		}
	}
	for metric, w := range r.wals {
		if err := w.Close(); err != nil {
			slog.Error("closing wal", "metric", metric, "error", err)
		}
	}
}
