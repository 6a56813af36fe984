package cloud

import (
	"bytes"
	"context"
	"sort"
	"testing"
)

func TestLocalDiskUploadThenDownload(t *testing.T) {
	s := NewLocalDisk(t.TempDir())
	ctx := context.Background()

	if err := s.Upload(ctx, "cpu.load/block_list.list", bytes.NewReader([]byte("hello"))); err != nil {
		t.Fatal(err)
	}

	data, ok, err := s.DownloadIfExists(ctx, "cpu.load/block_list.list")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected object to exist")
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

func TestLocalDiskDownloadIfExistsMissingIsNotError(t *testing.T) {
	s := NewLocalDisk(t.TempDir())
	_, ok, err := s.DownloadIfExists(context.Background(), "never/written")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing object")
	}
}

func TestLocalDiskExistsAndDelete(t *testing.T) {
	s := NewLocalDisk(t.TempDir())
	ctx := context.Background()

	if err := s.WriteSmallFile(ctx, "cpu.load.lock", []byte("store-id")); err != nil {
		t.Fatal(err)
	}
	exists, err := s.Exists(ctx, "cpu.load.lock")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("expected lock object to exist")
	}

	if err := s.Delete(ctx, "cpu.load.lock"); err != nil {
		t.Fatal(err)
	}
	exists, err = s.Exists(ctx, "cpu.load.lock")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected lock object to be gone")
	}

	if err := s.Delete(ctx, "cpu.load.lock"); err != nil {
		t.Fatalf("deleting an already-missing key should not error, got %v", err)
	}
}

func TestLocalDiskListUnderPrefix(t *testing.T) {
	s := NewLocalDisk(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{
		"block/cpu.load/1000_2000/block",
		"block/cpu.load/2000_3000/block",
		"block_list/cpu.load.list",
	} {
		if err := s.Upload(ctx, key, bytes.NewReader([]byte("x"))); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := s.ListUnderPrefix(ctx, "block/cpu.load")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(keys)
	want := []string{"block/cpu.load/1000_2000/block", "block/cpu.load/2000_3000/block"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}
