package library

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gallery/internal/models"
	"gallery/internal/store"
)

// ErrQueueRunning reports a second concurrent Run on the same queue.
var ErrQueueRunning = errors.New("upload queue is already running")

type queueEntry struct {
	item   models.UploadItem
	upload models.Upload
	err    error
}

// UploadQueue ingests a batch of files into one album, one file at a time.
// Per-file validation failures are recorded on the item and do not stop the
// batch. A storage failure stops it; items committed before it stay
// committed, and a later Run resumes with the remaining items.
type UploadQueue struct {
	lib     *Library
	albumID string

	mu      sync.Mutex
	entries []*queueEntry
	running bool
}

// NewUploadQueue returns an empty queue for albumID.
func NewUploadQueue(lib *Library, albumID string) *UploadQueue {
	return &UploadQueue{lib: lib, albumID: albumID}
}

// Enqueue adds a pending upload and returns its item id.
func (q *UploadQueue) Enqueue(up models.Upload) (string, error) {
	id, err := store.GenerateID("up", nil)
	if err != nil {
		return "", err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, &queueEntry{
		item: models.UploadItem{
			ID:       id,
			Filename: up.Filename,
			Size:     up.Size,
			Status:   models.UploadPending,
		},
		upload: up,
	})
	return id, nil
}

// Remove drops a pending item. It reports whether anything was removed.
func (q *UploadQueue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, entry := range q.entries {
		if entry.item.ID != id {
			continue
		}
		if entry.item.Status != models.UploadPending {
			return false
		}
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		return true
	}
	return false
}

// Items returns a snapshot of every queued item in enqueue order.
func (q *UploadQueue) Items() []models.UploadItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.UploadItem, 0, len(q.entries))
	for _, entry := range q.entries {
		out = append(out, entry.item)
	}
	return out
}

// Run ingests every item that has not completed yet. progress, when set, is
// called after each item finishes. The returned error is the one that
// stopped the batch, or nil when every item was attempted.
func (q *UploadQueue) Run(ctx context.Context, progress func(models.UploadProgress)) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return ErrQueueRunning
	}
	q.running = true
	pending := make([]*queueEntry, 0, len(q.entries))
	for _, entry := range q.entries {
		if entry.item.Status != models.UploadCompleted {
			pending = append(pending, entry)
		}
	}
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}()

	total := len(pending)
	for i, entry := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.setStatus(entry, models.UploadUploading, "", "")

		item, err := q.lib.AddMedia(ctx, q.albumID, entry.upload)
		q.finish(entry, item.ID, err)

		if progress != nil {
			progress(models.UploadProgress{Completed: i + 1, Total: total, Item: q.snapshot(entry)})
		}
		if err != nil && abortsBatch(err) {
			return fmt.Errorf("upload %s: %w", entry.item.Filename, err)
		}
	}
	return nil
}

// Err returns the failure recorded for an item, or nil.
func (q *UploadQueue) Err(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, entry := range q.entries {
		if entry.item.ID == id {
			return entry.err
		}
	}
	return nil
}

func (q *UploadQueue) finish(entry *queueEntry, mediaID string, err error) {
	if err != nil {
		q.setStatus(entry, models.UploadError, err.Error(), "")
	} else {
		q.setStatus(entry, models.UploadCompleted, "", mediaID)
	}
	q.mu.Lock()
	entry.err = err
	q.mu.Unlock()
}

func (q *UploadQueue) setStatus(entry *queueEntry, status models.UploadStatus, message, mediaID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry.item.Status = status
	entry.item.Message = message
	entry.item.MediaID = mediaID
}

func (q *UploadQueue) snapshot(entry *queueEntry) models.UploadItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return entry.item
}

func abortsBatch(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrStorageQuota) {
		return true
	}
	var libErr *Error
	return !errors.As(err, &libErr)
}
