package storageapi

import "errors"

var (
	// ErrNoBlockListFile is returned by Read when a metric has never been
	// written.
	ErrNoBlockListFile = errors.New("storageapi: no block list file")
	// ErrNoBlockFile is returned when a block list entry's backing block
	// file is missing or unreadable.
	ErrNoBlockFile = errors.New("storageapi: no block file")
	// ErrEmptyDatapoints is returned by Write when called with no datapoints.
	ErrEmptyDatapoints = errors.New("storageapi: empty datapoints")
	// ErrNotSorted is returned by Write when datapoints are not sorted
	// ascending by timestamp.
	ErrNotSorted = errors.New("storageapi: datapoints not sorted")
	// ErrBlockFileExists is returned by Write when a block covering the
	// exact same range already exists; merging blocks is not supported.
	ErrBlockFileExists = errors.New("storageapi: block file already exists")
	// ErrOverlappingBlocks is returned by Read when the block list's
	// entries overlap or are out of order, a state this engine refuses to
	// reconcile automatically.
	ErrOverlappingBlocks = errors.New("storageapi: overlapping or unsorted blocks")
)
