package segmentmanager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func setupDiskTests(t *testing.T, options ...DiskSegmentManagerOption) (sm *diskSegmentManager, cleanup func()) {
	dir := t.TempDir()
	sm, err := NewDiskSegmentManager(dir, options...)
	if err != nil {
		t.Fatal("failed to create disk segment manager", err)
	}
	return sm, func() {}
}

func TestInitializeEmptyDirDiskSegmentManager(t *testing.T) {
	sm, cleanup := setupDiskTests(t)
	defer cleanup()

	if sm.activeID != 1 {
		t.Fatal("active id not set")
	}

	entries, err := os.ReadDir(sm.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "segment-0001.log" {
		t.Fatalf("unexpected dir entries: %v", entries)
	}
}

func TestExistingDirDiskSegmentManager(t *testing.T) {
	dir := t.TempDir()
	if f, err := os.Create(filepath.Join(dir, "segment-0001.log")); err != nil {
		t.Fatal(err)
	} else {
		f.Close()
	}

	sm, err := NewDiskSegmentManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if sm.activeID != 1 {
		t.Fatal("active id not resumed from existing segment")
	}
}

func TestWriteActiveRotatesOnOverflow(t *testing.T) {
	sm, cleanup := setupDiskTests(t, WithMaxSegmentSize(10))
	defer cleanup()

	for i := 0; i < 5; i++ {
		content := "hello"
		if err := sm.WriteActive(len(content), func(w io.Writer) {
			fmt.Fprint(w, content)
		}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(sm.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected rotation to produce multiple segments, got %d", len(entries))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	sm, cleanup := setupDiskTests(t)
	defer cleanup()
	if err := sm.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sm.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDeleteThroughRemovesOnlyClosedSegmentsUpToID(t *testing.T) {
	sm, cleanup := setupDiskTests(t, WithMaxSegmentSize(10))
	defer cleanup()

	for i := 0; i < 5; i++ {
		if err := sm.WriteActive(5, func(w io.Writer) { fmt.Fprint(w, "hello") }); err != nil {
			t.Fatal(err)
		}
	}

	before, err := os.ReadDir(sm.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) < 3 {
		t.Fatalf("expected at least 3 segments before truncation, got %d", len(before))
	}

	if err := sm.DeleteThrough(sm.activeID - 1); err != nil {
		t.Fatal(err)
	}

	after, err := os.ReadDir(sm.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 1 {
		t.Fatalf("expected only the active segment to remain, got %d entries", len(after))
	}
	if after[0].Name() != fmt.Sprintf("segment-%04d.log", sm.activeID) {
		t.Fatalf("active segment was deleted: %v", after)
	}
}

func TestReopenAfterDeleteThroughToleratesGap(t *testing.T) {
	dir := t.TempDir()
	sm, err := NewDiskSegmentManager(dir, WithMaxSegmentSize(10))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := sm.WriteActive(5, func(w io.Writer) { fmt.Fprint(w, "hello") }); err != nil {
			t.Fatal(err)
		}
	}
	if err := sm.DeleteThrough(sm.activeID - 1); err != nil {
		t.Fatal(err)
	}
	wantActive := sm.activeID
	if err := sm.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewDiskSegmentManager(dir, WithMaxSegmentSize(10))
	if err != nil {
		t.Fatalf("reopen after truncation should tolerate the id gap: %v", err)
	}
	if reopened.activeID != wantActive {
		t.Fatalf("got active id %d, want %d", reopened.activeID, wantActive)
	}
}
