package persistederror

import (
	"path/filepath"
	"testing"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpu.load.err.json")

	since := tstime.Sec(100)
	until := tstime.Sec(200)
	e := New(tstime.Now(), schema.Metric("cpu.load"), TypeFailedToUploadBlockOrBlockList, &since, &until, "connection reset")

	if err := Write(path, e); err != nil {
		t.Fatal(err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ErrorType != TypeFailedToUploadBlockOrBlockList {
		t.Fatalf("got error type %q", got.ErrorType)
	}
	if got.Metric == nil || *got.Metric != "cpu.load" {
		t.Fatalf("got metric %v", got.Metric)
	}
	if got.BlockSince == nil || *got.BlockSince != since {
		t.Fatalf("got block since %v", got.BlockSince)
	}
	if got.Detail == nil || *got.Detail != "connection reset" {
		t.Fatalf("got detail %v", got.Detail)
	}
}

func TestWriteCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "errors")
	path := filepath.Join(dir, "cpu.load.err.json")

	e := New(tstime.Now(), schema.Metric("cpu.load"), TypeFailedToUploadBlockOrBlockList, nil, nil, "")
	if err := Write(path, e); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err != nil {
		t.Fatal(err)
	}
}
