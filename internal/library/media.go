package library

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"gallery/internal/blobstore"
	"gallery/internal/models"
	"gallery/internal/thumbnail"
)

const previewMimeType = "image/jpeg"

// Content is an open media payload.
type Content struct {
	Reader   io.ReadCloser
	Size     int64
	MimeType string
	Filename string
}

// AddMedia ingests one file into an album. Validation happens before any
// byte is stored, so a rejected upload leaves both stores untouched. A
// payload whose preview cannot be derived is still ingested, without a
// thumbnail. After the row is written the album counters are refreshed; a
// refresh failure is logged, never returned.
func (l *Library) AddMedia(ctx context.Context, albumID string, up models.Upload) (models.MediaItem, error) {
	var zero models.MediaItem

	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return zero, invalid(ErrCodeMissingRequired, "album id is required")
	}
	exists, err := l.albums.AlbumExists(ctx, albumID)
	if err != nil {
		return zero, classify(err)
	}
	if !exists {
		return zero, notFound(ErrCodeAlbumNotFound, "album not found: %s", albumID)
	}

	name := cleanFilename(up.Filename)
	if name == "" {
		return zero, invalid(ErrCodeMissingRequired, "file name is required")
	}
	if up.Size > l.maxUploadBytes {
		return zero, l.tooLarge(name)
	}
	mimeType := models.NormalizeMIME(up.MimeType)
	if mimeType == "" || !l.isAllowed(mimeType) {
		return zero, newError(ErrUnsupportedType, ErrCodeUnsupportedType, "unsupported media type %q for %s", up.MimeType, name)
	}

	data, err := l.readUpload(up, name)
	if err != nil {
		return zero, err
	}

	preview, err := l.derive(ctx, data, mimeType)
	if err != nil {
		return zero, err
	}

	item := &models.MediaItem{
		AlbumID:  albumID,
		Name:     name,
		Type:     models.MediaTypeForMIME(mimeType),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}
	if preview != nil {
		item.Color = preview.Color
	}

	if err := l.storeMedia(ctx, item, data, preview); err != nil {
		return zero, err
	}
	l.logger.Debug("media added", "media_id", item.ID, "album_id", albumID, "type", item.Type, "size", item.Size, "thumbnail", item.HasThumbnail())

	l.refreshAlbum(ctx, albumID)
	return *item, nil
}

// GetAlbumMedia returns an album's media in ingestion order.
func (l *Library) GetAlbumMedia(ctx context.Context, albumID string) ([]models.MediaItem, error) {
	items, err := l.media.ListMediaByAlbum(ctx, strings.TrimSpace(albumID))
	return items, classify(err)
}

// GetAlbumMediaByType returns the album's media of one type in ingestion
// order. An empty type returns everything.
func (l *Library) GetAlbumMediaByType(ctx context.Context, albumID string, mediaType models.MediaType) ([]models.MediaItem, error) {
	if mediaType != "" && !models.IsValidMediaType(mediaType) {
		return nil, invalid(ErrCodeInvalidArgument, "invalid media type: %s", mediaType)
	}
	items, err := l.GetAlbumMedia(ctx, albumID)
	if err != nil || mediaType == "" {
		return items, err
	}
	filtered := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Type == mediaType {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetMediaItem returns one media item, or nil when the id is unknown.
func (l *Library) GetMediaItem(ctx context.Context, id string) (*models.MediaItem, error) {
	item, err := l.media.GetMedia(ctx, strings.TrimSpace(id))
	return item, classify(err)
}

// GetAllMedia returns every media item, newest first.
func (l *Library) GetAllMedia(ctx context.Context) ([]models.MediaItem, error) {
	items, err := l.media.ListAllMedia(ctx)
	return items, classify(err)
}

// GetMediaByType returns every photo or every video, newest first.
func (l *Library) GetMediaByType(ctx context.Context, mediaType models.MediaType) ([]models.MediaItem, error) {
	if !models.IsValidMediaType(mediaType) {
		return nil, invalid(ErrCodeInvalidArgument, "invalid media type: %s", mediaType)
	}
	items, err := l.media.ListMediaByType(ctx, mediaType)
	return items, classify(err)
}

// DeleteMedia removes one media item and refreshes its album. Deleting an
// unknown id is a no-op.
func (l *Library) DeleteMedia(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	unlock := l.locks.Lock(mediaKey(id))
	removed, err := l.media.DeleteMedia(ctx, id)
	unlock()
	if err != nil {
		return classify(err)
	}
	if removed == nil {
		return nil
	}
	l.logger.Debug("media deleted", "media_id", id, "album_id", removed.AlbumID)

	l.refreshAlbum(ctx, removed.AlbumID)
	l.sweep(ctx)
	return nil
}

// IncrementDownloadCount records one download. Unknown ids are a no-op.
func (l *Library) IncrementDownloadCount(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	unlock := l.locks.Lock(mediaKey(id))
	defer unlock()
	return classify(l.media.IncrementDownloads(ctx, id))
}

// OpenMediaContent opens the primary payload of a media item.
func (l *Library) OpenMediaContent(ctx context.Context, id string) (*Content, error) {
	item, err := l.requireMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.openBlob(ctx, item.DataBlobID, item.MimeType, item.Name)
}

// DownloadMedia opens the primary payload and counts one download.
func (l *Library) DownloadMedia(ctx context.Context, id string) (*Content, error) {
	content, err := l.OpenMediaContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.IncrementDownloadCount(ctx, id); err != nil {
		_ = content.Reader.Close()
		return nil, err
	}
	return content, nil
}

// OpenThumbnail opens the preview of a media item, falling back to the
// primary payload when no thumbnail was derived.
func (l *Library) OpenThumbnail(ctx context.Context, id string) (*Content, error) {
	item, err := l.requireMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.HasThumbnail() {
		return l.openBlob(ctx, item.DataBlobID, item.MimeType, item.Name)
	}
	return l.openBlob(ctx, item.ThumbnailBlobID, previewMimeType, previewName(item.Name))
}

// OpenAlbumCover opens the blob representing an album.
func (l *Library) OpenAlbumCover(ctx context.Context, albumID string) (*Content, error) {
	album, err := l.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, notFound(ErrCodeAlbumNotFound, "album not found: %s", albumID)
	}
	if album.Cover == nil {
		return nil, notFound(ErrCodeBlobNotFound, "album %s has no cover", album.ID)
	}

	mimeType, name := previewMimeType, previewName(album.Name)
	if item, err := l.media.GetMedia(ctx, album.Cover.MediaID); err == nil && item != nil && item.ThumbnailBlobID != album.Cover.BlobID {
		mimeType, name = item.MimeType, item.Name
	}
	return l.openBlob(ctx, album.Cover.BlobID, mimeType, name)
}

func (l *Library) requireMedia(ctx context.Context, id string) (*models.MediaItem, error) {
	id = strings.TrimSpace(id)
	item, err := l.media.GetMedia(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if item == nil {
		return nil, notFound(ErrCodeMediaNotFound, "media not found: %s", id)
	}
	return item, nil
}

func (l *Library) openBlob(ctx context.Context, blobID, mimeType, filename string) (*Content, error) {
	blob, err := l.media.GetBlob(ctx, blobID)
	if err != nil {
		return nil, classify(err)
	}
	if blob == nil {
		return nil, notFound(ErrCodeBlobNotFound, "content not found: %s", blobID)
	}
	rc, err := l.blobs.Open(ctx, blob.BlobKey)
	if err != nil {
		return nil, classify(err)
	}
	return &Content{Reader: rc, Size: blob.SizeBytes, MimeType: mimeType, Filename: filename}, nil
}

// readUpload reads at most the ceiling plus one byte so oversized payloads
// with an understated size are still rejected.
func (l *Library) readUpload(up models.Upload, name string) ([]byte, error) {
	rc, err := up.Reader()
	if err != nil {
		return nil, invalid(ErrCodeMissingRequired, "%s: %v", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, l.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > l.maxUploadBytes {
		return nil, l.tooLarge(name)
	}
	if len(data) == 0 {
		return nil, invalid(ErrCodeMissingRequired, "%s is empty", name)
	}
	return data, nil
}

func (l *Library) tooLarge(name string) error {
	return newError(ErrFileTooLarge, ErrCodeFileTooLarge, "%s exceeds the %d byte upload limit", name, l.maxUploadBytes)
}

func (l *Library) derive(ctx context.Context, data []byte, mimeType string) (*thumbnail.Result, error) {
	if l.deriver == nil {
		return nil, nil
	}
	preview, err := l.deriver.Derive(ctx, data, mimeType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		l.logger.Debug("thumbnail derivation failed", "mime_type", mimeType, "error", err)
		return nil, nil
	}
	if preview != nil && len(preview.Data) == 0 {
		return nil, nil
	}
	return preview, nil
}

// storeMedia writes payload bytes, registers their blob rows, and inserts
// the media row. Blob rows are registered before the media row so bytes
// orphaned by a failed insert remain visible to GC.
func (l *Library) storeMedia(ctx context.Context, item *models.MediaItem, data []byte, preview *thumbnail.Result) error {
	l.gcMu.RLock()
	defer l.gcMu.RUnlock()

	dataBlob, err := l.putBlob(ctx, data)
	if err != nil {
		return err
	}
	var thumbBlob *models.Blob
	if preview != nil {
		thumbBlob, err = l.putBlob(ctx, preview.Data)
		if err != nil {
			return err
		}
	}
	return classify(l.media.CreateMediaWithBlobs(ctx, item, dataBlob, thumbBlob))
}

func (l *Library) putBlob(ctx context.Context, data []byte) (*models.Blob, error) {
	put, err := l.blobs.Put(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, classify(err)
	}
	blob, err := l.media.UpsertBlob(ctx, &models.Blob{SHA256: put.SHA256, SizeBytes: put.SizeBytes, BlobKey: put.BlobKey})
	if err != nil {
		l.discardBytes(ctx, put)
		return nil, classify(err)
	}
	return blob, nil
}

// discardBytes removes freshly written bytes that never got a blob row.
func (l *Library) discardBytes(ctx context.Context, put blobstore.BlobPutResult) {
	ctx = context.WithoutCancel(ctx)
	if existing, err := l.media.GetBlobBySHA256(ctx, put.SHA256); err != nil || existing != nil {
		return
	}
	if err := l.blobs.Delete(ctx, put.BlobKey); err != nil {
		l.logger.Warn("discard unregistered blob failed", "blob_key", put.BlobKey, "error", err)
	}
}

func cleanFilename(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if raw == "" {
		return ""
	}
	base := path.Base(raw)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

func previewName(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + ".jpg"
}
