// Command flashtsd wires a config, a storage API, and per-metric writable
// stores together into a running process. It has no query frontend or
// network listener: those are out of scope collaborators, not part of
// this engine.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flashts-io/flashts/cache"
	"github.com/flashts-io/flashts/cloud"
	"github.com/flashts-io/flashts/config"
	"github.com/flashts-io/flashts/storageapi"
)

func main() {
	dbDir := flag.String("db-dir", "./flashts-data", "local storage root")
	cloudDir := flag.String("cloud-mirror-dir", "", "if set, mirror every write to this directory as a stand-in cloud bucket")
	flag.Parse()

	cfg := config.Default(*dbDir)
	if *cloudDir != "" {
		cfg.Cloud = &config.CloudConfig{
			Bucket:           *cloudDir,
			UploadAfterWrite: true,
		}
	}

	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		slog.Error("creating db dir", "dir", cfg.DBDir, "error", err)
		os.Exit(1)
	}

	opts := []storageapi.Option{
		storageapi.WithBlockListCache(cache.NewBlockListCache()),
		storageapi.WithBlockCache(cache.NewBlockCache(cfg.BlockCacheSize)),
	}
	if cfg.Cloud != nil {
		opts = append(opts, storageapi.WithCloud(cloud.NewLocalDisk(cfg.Cloud.Bucket), *cfg.Cloud))
	}
	api := storageapi.New(cfg.DBDir, opts...)

	stores := newRegistry(api, cfg)
	defer stores.shutdown()

	slog.Info("flashtsd serving", "db_dir", cfg.DBDir, "persist_interval", cfg.PersistInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	slog.Info("flashtsd shutting down")
}
