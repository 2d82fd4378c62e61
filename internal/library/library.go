// Package library coordinates the album store, the media store, the blob
// store, and thumbnail derivation so that album counters and covers always
// agree with the media that exists.
package library

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"gallery/internal/blobstore"
	"gallery/internal/models"
	"gallery/internal/store"
	"gallery/internal/thumbnail"
)

const (
	defaultGCBatchSize     = 500
	defaultRecountAttempts = 3
	defaultRecountBackoff  = 25 * time.Millisecond
	dashboardRecentLimit   = 8
)

// Options configures ingestion policy.
type Options struct {
	MaxUploadBytes    int64
	AllowedMediaTypes []string
	GCBatchSize       int
	RecountAttempts   int
	RecountBackoff    time.Duration
	Logger            *slog.Logger
}

// Library is the single entry point for mutating and reading the media
// library. It is safe for concurrent use.
type Library struct {
	albums  store.AlbumStore
	media   store.MediaStore
	blobs   blobstore.BlobStore
	deriver thumbnail.Deriver

	maxUploadBytes  int64
	allowed         map[string]struct{}
	gcBatchSize     int
	recountAttempts int
	recountBackoff  time.Duration
	logger          *slog.Logger

	locks *keyedMutex
	// gcMu keeps a sweep from deleting bytes that an in-flight ingestion
	// has written but not yet referenced.
	gcMu sync.RWMutex
}

// New constructs a Library. A nil deriver disables thumbnails.
func New(albums store.AlbumStore, media store.MediaStore, blobs blobstore.BlobStore, deriver thumbnail.Deriver, opts Options) *Library {
	lib := &Library{
		albums:          albums,
		media:           media,
		blobs:           blobs,
		deriver:         deriver,
		maxUploadBytes:  opts.MaxUploadBytes,
		gcBatchSize:     opts.GCBatchSize,
		recountAttempts: opts.RecountAttempts,
		recountBackoff:  opts.RecountBackoff,
		logger:          opts.Logger,
		locks:           newKeyedMutex(),
	}
	if lib.maxUploadBytes <= 0 {
		lib.maxUploadBytes = models.DefaultMaxUploadBytes
	}
	if lib.gcBatchSize <= 0 {
		lib.gcBatchSize = defaultGCBatchSize
	}
	if lib.recountAttempts <= 0 {
		lib.recountAttempts = defaultRecountAttempts
	}
	if lib.recountBackoff <= 0 {
		lib.recountBackoff = defaultRecountBackoff
	}
	if lib.logger == nil {
		lib.logger = slog.Default()
	}
	lib.logger = lib.logger.With("component", "library")

	allowed := opts.AllowedMediaTypes
	if len(allowed) == 0 {
		allowed = models.DefaultAllowedMediaTypes
	}
	lib.allowed = map[string]struct{}{}
	for _, raw := range allowed {
		if mt := models.NormalizeMIME(raw); mt != "" {
			lib.allowed[mt] = struct{}{}
		}
	}
	return lib
}

// MaxUploadBytes returns the per-file ingestion ceiling.
func (l *Library) MaxUploadBytes() int64 {
	return l.maxUploadBytes
}

// AllowedMediaTypes returns the MIME allow-list in sorted order.
func (l *Library) AllowedMediaTypes() []string {
	out := make([]string, 0, len(l.allowed))
	for mt := range l.allowed {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

func (l *Library) isAllowed(mimeType string) bool {
	_, ok := l.allowed[mimeType]
	return ok
}
