package main

import (
	"testing"

	"github.com/flashts-io/flashts/config"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/storageapi"
	"github.com/flashts-io/flashts/tstime"
	"github.com/flashts-io/flashts/wal"
)

func TestRegistryOpenReplaysWALAndReusesStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.PersistInterval = 0 // keep the test deterministic, no background ticks
	api := storageapi.New(cfg.DBDir)
	r := newRegistry(api, cfg)
	defer r.shutdown()

	fieldTypes := []schema.FieldType{schema.FieldTypeFloat64}
	s, err := r.open("cpu.load", fieldTypes)
	if err != nil {
		t.Fatal(err)
	}
	dp := schema.NewDataPoint(tstime.Nano(100), []schema.FieldValue{schema.Float64Value(1)})
	if err := s.Push(dp); err != nil {
		t.Fatal(err)
	}

	again, err := r.open("cpu.load", fieldTypes)
	if err != nil {
		t.Fatal(err)
	}
	if again != s {
		t.Fatal("expected the same store instance on a second open")
	}
	if again.Len() != 1 {
		t.Fatalf("got %d buffered datapoints, want 1", again.Len())
	}
}

func countWALEntries(t *testing.T, dir string) int {
	t.Helper()
	r, err := wal.NewReader(dir)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, err := range r.Entries() {
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	return n
}

func TestRegistryReopenAcrossProcessesDoesNotGrowWALOnReplay(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.PersistInterval = 0
	fieldTypes := []schema.FieldType{schema.FieldTypeFloat64}

	api := storageapi.New(cfg.DBDir)
	first := newRegistry(api, cfg)
	s, err := first.open("cpu.load", fieldTypes)
	if err != nil {
		t.Fatal(err)
	}
	dp := schema.NewDataPoint(tstime.Nano(100), []schema.FieldValue{schema.Float64Value(1)})
	if err := s.Push(dp); err != nil {
		t.Fatal(err)
	}
	first.shutdown()

	walDir := dir + "/wal/cpu.load"
	before := countWALEntries(t, walDir)
	if before != 1 {
		t.Fatalf("got %d wal entries after first run, want 1", before)
	}

	second := newRegistry(api, cfg)
	reopened, err := second.open("cpu.load", fieldTypes)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("got %d buffered datapoints after replay, want 1", reopened.Len())
	}
	second.shutdown()

	after := countWALEntries(t, walDir)
	if after != before {
		t.Fatalf("replay grew the wal: got %d entries, want %d (unchanged)", after, before)
	}
}
