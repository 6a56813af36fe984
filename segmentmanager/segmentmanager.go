// Package segmentmanager provides rotating, size-bounded segment files for
// an append-only log. Callers never see individual file handles: they hand
// a size and a write function to WriteActive, and the manager rotates to a
// fresh segment transparently when the active one would exceed its size
// cap.
package segmentmanager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
)

const (
	defaultMaxSegmentSize = 16 * 1024 * 1024 // 16MB
	defaultLogFileExt     = ".log"
)

var segmentFileNamePattern = regexp.MustCompile(`^segment-(\d+)\.log$`)

// SegmentManager is the interface wal depends on: write into the current
// segment, rotating as needed, deleting segments a caller knows are fully
// superseded, and closing cleanly on shutdown.
type SegmentManager interface {
	WriteActive(n int, fn func(w io.Writer)) error
	RotateSegment() error
	Sync() error
	Close() error
	DeleteThrough(id int) error
}

type diskSegmentManager struct {
	mu             sync.Mutex
	active         *os.File
	activeID       int
	dir            string
	logFileExt     string
	maxSegmentSize int64
}

type segmentEntry struct {
	id   int
	name string
}

// SegmentEntries implements sort.Interface ordering entries by segment id.
type SegmentEntries []segmentEntry

func (a SegmentEntries) Len() int           { return len(a) }
func (a SegmentEntries) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SegmentEntries) Less(i, j int) bool { return a[i].id < a[j].id }

// DiskSegmentManagerOption configures NewDiskSegmentManager.
type DiskSegmentManagerOption func(sm *diskSegmentManager)

// WithMaxSegmentSize overrides the default 16MB rotation threshold.
func WithMaxSegmentSize(maxSegmentSize int64) DiskSegmentManagerOption {
	return func(sm *diskSegmentManager) {
		sm.maxSegmentSize = maxSegmentSize
	}
}

func isDirectoryValid(path string) error {
	fileInfo, err := os.Stat(path)
	if err == nil {
		if fileInfo.IsDir() {
			return nil
		}
		return fmt.Errorf("path exists but is not a directory: %s", path)
	}
	return err
}

func initializeEmptySegmentDir(sm *diskSegmentManager) (*diskSegmentManager, error) {
	if err := sm.RotateSegment(); err != nil {
		return nil, fmt.Errorf("failed to create first segment: %w", err)
	}
	return sm, nil
}

// NewDiskSegmentManager opens dir (creating it if absent) and resumes
// writing at the latest segment, or creates the first one.
func NewDiskSegmentManager(dir string, options ...DiskSegmentManagerOption) (*diskSegmentManager, error) {
	sm := &diskSegmentManager{
		dir:            dir,
		logFileExt:     defaultLogFileExt,
		maxSegmentSize: defaultMaxSegmentSize,
	}
	for _, option := range options {
		option(sm)
	}

	if err := isDirectoryValid(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
			return initializeEmptySegmentDir(sm)
		}
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var segmentEntries SegmentEntries
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) != sm.logFileExt {
			continue
		}
		matches := segmentFileNamePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}
		id, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		segmentEntries = append(segmentEntries, segmentEntry{id: id, name: entry.Name()})
	}

	if len(segmentEntries) == 0 {
		return initializeEmptySegmentDir(sm)
	}

	sort.Sort(segmentEntries)
	if !validateSegmentEntries(segmentEntries) {
		return nil, errors.New("segmentmanager: duplicate or out-of-order segment id")
	}

	sm.activeID = segmentEntries[len(segmentEntries)-1].id
	activeFile, err := os.OpenFile(sm.idToPath(sm.activeID), os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open active segment: %w", err)
	}
	sm.active = activeFile

	return sm, nil
}

// validateSegmentEntries requires strictly increasing, unique ids (entries
// is already sorted ascending by the caller). A gap is expected once
// DeleteThrough has removed old segments; a duplicate or out-of-order id
// means the directory was tampered with.
func validateSegmentEntries(entries SegmentEntries) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].id <= entries[i-1].id {
			return false
		}
	}
	return true
}

func (s *diskSegmentManager) idToPath(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("segment-%04d%s", id, s.logFileExt))
}

func (s *diskSegmentManager) RotateSegment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		if err := s.active.Close(); err != nil {
			return fmt.Errorf("failed to close previous segment: %w", err)
		}
	}

	s.activeID++
	file, err := os.Create(s.idToPath(s.activeID))
	if err != nil {
		return err
	}
	s.active = file
	return nil
}

// WriteActive writes n bytes via fn into the active segment, rotating
// first if that write would exceed maxSegmentSize.
func (s *diskSegmentManager) WriteActive(n int, fn func(w io.Writer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int64(n) > s.maxSegmentSize {
		return fmt.Errorf("segmentmanager: entry of %d bytes exceeds max segment size %d", n, s.maxSegmentSize)
	}
	if s.active == nil {
		return errors.New("segmentmanager: active segment not initialized")
	}

	stat, err := s.active.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat active segment: %w", err)
	}
	if stat.Size()+int64(n) > s.maxSegmentSize {
		s.mu.Unlock()
		err := s.RotateSegment()
		s.mu.Lock()
		if err != nil {
			return fmt.Errorf("failed to rotate segment: %w", err)
		}
	}

	fn(s.active)

	if err := s.active.Sync(); err != nil {
		return fmt.Errorf("failed to sync active segment: %w", err)
	}
	return nil
}

func (s *diskSegmentManager) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return errors.New("segmentmanager: active segment not initialized")
	}
	if err := s.active.Sync(); err != nil {
		return fmt.Errorf("failed to sync active segment: %w", err)
	}
	return nil
}

// DeleteThrough removes every closed segment file with id <= id. It never
// removes the active segment, regardless of the threshold passed in, since
// that one is still being appended to.
func (s *diskSegmentManager) DeleteThrough(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != s.logFileExt {
			continue
		}
		matches := segmentFileNamePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}
		segID, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		if segID > id || segID == s.activeID {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete segment %d: %w", segID, err)
		}
	}
	return nil
}

func (s *diskSegmentManager) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	if err := s.active.Close(); err != nil {
		return fmt.Errorf("failed to close active segment: %w", err)
	}
	s.active = nil
	return nil
}
