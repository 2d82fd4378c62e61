package library

import (
	"context"
	"time"
)

// refreshAlbum brings MediaCount and Cover back in line with the media
// table. It retries with linear backoff and never fails the caller: the
// mutation that triggered it has already committed. It runs detached from
// ctx cancellation so an abandoned request cannot leave counters stale.
func (l *Library) refreshAlbum(ctx context.Context, albumID string) {
	ctx = context.WithoutCancel(ctx)
	unlock := l.locks.Lock(albumKey(albumID))
	defer unlock()

	var err error
	for attempt := 1; attempt <= l.recountAttempts; attempt++ {
		if _, err = l.albums.RecountAlbum(ctx, albumID); err == nil {
			return
		}
		l.logger.Warn("album recount failed", "album_id", albumID, "attempt", attempt, "error", err)
		if attempt < l.recountAttempts {
			time.Sleep(time.Duration(attempt) * l.recountBackoff)
		}
	}
	l.logger.Error("album counters left stale", "album_id", albumID, "error", err)
}

// sweep deletes blobs that no row references any more. Failures are logged
// and left for an explicit GC run.
func (l *Library) sweep(ctx context.Context) {
	result, err := l.GCBlobs(context.WithoutCancel(ctx), 0, true)
	if err != nil {
		l.logger.Warn("blob sweep failed", "error", err)
		return
	}
	if result.DeletedCount > 0 || result.FailedCount > 0 {
		l.logger.Debug("blob sweep", "deleted", result.DeletedCount, "failed", result.FailedCount, "reclaimed_bytes", result.ReclaimedBytes)
	}
}
