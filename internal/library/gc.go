package library

import (
	"context"

	"gallery/internal/models"
)

// GCBlobs finds blobs that no media row or album cover references. With
// apply it deletes their bytes and rows in batches; without it, it only
// reports what would be reclaimed.
func (l *Library) GCBlobs(ctx context.Context, batchSize int, apply bool) (models.BlobGCResult, error) {
	result := models.BlobGCResult{DryRun: !apply}
	if batchSize <= 0 {
		batchSize = l.gcBatchSize
	}

	if !apply {
		blobs, err := l.media.ListUnreferencedBlobs(ctx, 0)
		if err != nil {
			return result, classify(err)
		}
		result.CandidateCount = len(blobs)
		for _, blob := range blobs {
			result.ReclaimedBytes += blob.SizeBytes
		}
		return result, nil
	}

	l.gcMu.Lock()
	defer l.gcMu.Unlock()

	for {
		blobs, err := l.media.ListUnreferencedBlobs(ctx, batchSize)
		if err != nil {
			return result, classify(err)
		}
		if len(blobs) == 0 {
			return result, nil
		}
		result.CandidateCount += len(blobs)

		deleted := 0
		for _, blob := range blobs {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := l.blobs.Delete(ctx, blob.BlobKey); err != nil {
				l.logger.Warn("delete blob bytes failed", "blob_id", blob.ID, "blob_key", blob.BlobKey, "error", err)
				result.FailedCount++
				continue
			}
			if err := l.media.DeleteBlob(ctx, blob.ID); err != nil {
				l.logger.Warn("delete blob row failed", "blob_id", blob.ID, "error", err)
				result.FailedCount++
				continue
			}
			deleted++
			result.DeletedCount++
			result.ReclaimedBytes += blob.SizeBytes
		}
		// The same candidates would come back forever.
		if deleted == 0 {
			return result, nil
		}
	}
}
