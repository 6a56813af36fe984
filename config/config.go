// Package config holds the typed settings flashtsd needs to wire a store
// and its storage API together: no file format is parsed here, callers
// build a Config programmatically (flags, env, or a caller's own file
// format) and pass it in.
package config

import "time"

// CloudConfig configures mirroring a metric's storage tree to a remote
// cloud.Storage.
type CloudConfig struct {
	Bucket                 string
	Prefix                 string
	UploadAfterWrite       bool
	RemoveLocalAfterUpload bool
}

// Config is the full set of settings one flashtsd process needs.
type Config struct {
	// DBDir is the local storage root storageapi writes under.
	DBDir string

	// PersistInterval is how often a store's periodic persistence loop
	// runs. Zero disables periodic persistence.
	PersistInterval time.Duration

	// ClearAfterPersisted is not read by flashtsd or by
	// Store.StartPeriodicPersist: periodic persist cycles always drop the
	// buffered datapoints they have durably written.
	ClearAfterPersisted bool

	// Cloud configures remote mirroring. Nil disables it.
	Cloud *CloudConfig

	// BlockCacheSize bounds how many decoded blocks stay resident across
	// reads. Zero disables the block cache.
	BlockCacheSize int
}

// Default returns a Config with conservative defaults: no cloud
// mirroring, a five-minute persist interval, and a small block cache.
func Default(dbDir string) Config {
	return Config{
		DBDir:               dbDir,
		PersistInterval:     5 * time.Minute,
		ClearAfterPersisted: true,
		BlockCacheSize:      64,
	}
}
