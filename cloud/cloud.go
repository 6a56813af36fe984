// Package cloud defines the remote-mirror contract storageapi's write and
// scavenge paths call through, plus a local-disk reference implementation
// used by tests in place of a real object-storage SDK.
package cloud

import (
	"context"
	"io"
)

// Storage mirrors a local storage root to a remote bucket/prefix. Every
// method takes a key relative to that prefix; implementations own the
// mapping to their own path or object-name scheme.
type Storage interface {
	// Upload writes data under key, replacing any existing object.
	Upload(ctx context.Context, key string, data io.Reader) error

	// DownloadIfExists reads key's contents, reporting ok=false (no
	// error) if the object does not exist.
	DownloadIfExists(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// WriteSmallFile uploads a short, text-sized object such as a lock
	// file body. Implementations may use a cheaper path than Upload for
	// payloads this size.
	WriteSmallFile(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a key that does not exist is not an
	// error.
	Delete(ctx context.Context, key string) error

	// ListUnderPrefix returns every key under prefix.
	ListUnderPrefix(ctx context.Context, prefix string) ([]string, error)
}
