package wal

import (
	"io"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/flashts-io/flashts/tstime"
)

var segmentFileNamePattern = regexp.MustCompile(`^segment-(\d+)\.log$`)

// segment names one discovered segment file.
type segment struct {
	id   int
	path string
}

// Reader replays every segment file in a wal directory, in segment-id
// order, as a single logical stream.
type Reader struct {
	dir      string
	paths    []string
	segments []segment
}

// NewReader discovers the segment files under dir. It does not open any of
// them until Entries is iterated.
func NewReader(dir string) (*Reader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var segments []segment
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		matches := segmentFileNamePattern.FindStringSubmatch(e.Name())
		if len(matches) != 2 {
			continue
		}
		id, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		segments = append(segments, segment{id: id, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].id < segments[j].id })

	paths := make([]string, len(segments))
	for i, s := range segments {
		paths[i] = s.path
	}
	return &Reader{dir: dir, paths: paths, segments: segments}, nil
}

// Entries replays every entry across every segment file in order. Iteration
// stops early and yields the error if any segment is corrupt or fails to
// open; a clean end of the last segment ends iteration without an error.
func (r *Reader) Entries() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		for _, path := range r.paths {
			f, err := os.Open(path)
			if err != nil {
				yield(nil, err)
				return
			}

			for {
				entry, err := Decode(f)
				if err == io.EOF {
					break
				}
				if err != nil {
					f.Close()
					yield(nil, err)
					return
				}
				if !yield(entry, nil) {
					f.Close()
					return
				}
			}
			f.Close()
		}
	}
}

// segmentWatermark returns the largest segment id such that it and every
// older segment's entries all have a timestamp strictly before until. The
// newest (highest-id) segment is never considered, since it may still be
// the active one being appended to. ok is false if no segment qualifies.
func (r *Reader) segmentWatermark(until tstime.Nano) (id int, ok bool) {
	if len(r.segments) < 2 {
		return 0, false
	}
	for _, seg := range r.segments[:len(r.segments)-1] {
		maxTS, empty, err := segmentMaxTimestamp(seg.path)
		if err != nil {
			break
		}
		if !empty && maxTS >= until {
			break
		}
		id, ok = seg.id, true
	}
	return id, ok
}

// segmentMaxTimestamp decodes every entry in path and returns the highest
// timestamp seen. empty is true if the segment has no entries at all.
func segmentMaxTimestamp(path string) (max tstime.Nano, empty bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	empty = true
	for {
		entry, err := Decode(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false, err
		}
		if empty || entry.DataPoint.Timestamp > max {
			max = entry.DataPoint.Timestamp
		}
		empty = false
	}
	return max, empty, nil
}
