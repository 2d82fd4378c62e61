package main

import (
	"fmt"
	"log/slog"
	"os"

	"gallery/internal/blobstore"
	"gallery/internal/config"
	"gallery/internal/library"
	"gallery/internal/store"
	"gallery/internal/thumbnail"
)

// libraryEnv is an opened library directory and the library service built
// over it.
type libraryEnv struct {
	store *store.Store
	lib   *library.Library
}

func (e *libraryEnv) Close() error {
	return e.store.Close()
}

func openLibrary(cfg *config.Config, logger *slog.Logger) (*libraryEnv, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	if cfg.LibraryPath == "" {
		return nil, fmt.Errorf("library path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.LibraryPath, 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	logger.Debug("opening library", "path", cfg.LibraryPath)
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cas, err := blobstore.NewLocalCAS(cfg.BlobRoot())
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	deriver := thumbnail.New(thumbnail.Options{
		MaxEdge:     cfg.Media.ThumbnailMaxEdge,
		Quality:     cfg.Media.ThumbnailQuality,
		FFmpegPath:  cfg.Media.FFmpegPath,
		FrameOffset: cfg.FrameOffset(),
		Logger:      logger,
	})

	lib := library.New(st, st, cas, deriver, library.Options{
		MaxUploadBytes:    cfg.Media.MaxUploadBytes,
		AllowedMediaTypes: cfg.Media.AllowedMediaTypes,
		GCBatchSize:       cfg.Media.GCBatchSize,
		Logger:            logger,
	})

	return &libraryEnv{store: st, lib: lib}, nil
}

// withLibrary opens the library for one command and closes it afterwards.
func withLibrary(cfg *config.Config, fn func(env *libraryEnv) error) error {
	env, err := openLibrary(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}
