package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gallery/internal/models"
)

const mediaColumns = "id, album_id, name, type, mime_type, size_bytes, data_blob_id, thumbnail_blob_id, color, downloads, created_at"

// mediaColumnsM is mediaColumns qualified with the "m" table alias.
const mediaColumnsM = "m.id, m.album_id, m.name, m.type, m.mime_type, m.size_bytes, m.data_blob_id, m.thumbnail_blob_id, m.color, m.downloads, m.created_at"

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateMediaWithBlobs upserts the data blob and optional thumbnail blob,
// then inserts the media row referencing their canonical ids, all in one
// transaction. A missing id is generated.
func (s *Store) CreateMediaWithBlobs(ctx context.Context, item *models.MediaItem, data *models.Blob, thumbnail *models.Blob) error {
	if item == nil {
		return validationError("media item is required")
	}
	if data == nil {
		return validationError("data blob is required")
	}

	if strings.TrimSpace(item.ID) == "" {
		id, err := GenerateMediaID(func(id string) (bool, error) {
			return s.mediaIDExists(ctx, id)
		})
		if err != nil {
			return err
		}
		item.ID = id
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		canonical, err := upsertBlobTx(ctx, tx, data)
		if err != nil {
			return err
		}
		item.DataBlobID = canonical.ID

		item.ThumbnailBlobID = ""
		if thumbnail != nil {
			canonicalThumb, err := upsertBlobTx(ctx, tx, thumbnail)
			if err != nil {
				return err
			}
			item.ThumbnailBlobID = canonicalThumb.ID
		}

		if err := validateMedia(item); err != nil {
			return err
		}
		return insertMediaTx(ctx, tx, item)
	})
}

// GetMedia returns one media item, or nil when the id is unknown.
func (s *Store) GetMedia(ctx context.Context, id string) (*models.MediaItem, error) {
	return scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
}

// ListMediaByAlbum returns the album's media in ingestion order.
func (s *Store) ListMediaByAlbum(ctx context.Context, albumID string) ([]models.MediaItem, error) {
	return queryMedia(ctx, s.db, `SELECT `+mediaColumns+` FROM media WHERE album_id = ? ORDER BY created_at ASC, rowid ASC`, albumID)
}

// ListMediaByType returns every media item of one type, newest first.
func (s *Store) ListMediaByType(ctx context.Context, mediaType models.MediaType) ([]models.MediaItem, error) {
	return queryMedia(ctx, s.db, `SELECT `+mediaColumns+` FROM media WHERE type = ? ORDER BY created_at DESC, rowid DESC`, string(mediaType))
}

// ListAllMedia returns every media item, newest first.
func (s *Store) ListAllMedia(ctx context.Context) ([]models.MediaItem, error) {
	return queryMedia(ctx, s.db, `SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, rowid DESC`)
}

// ListRecentMedia returns at most limit media items, newest first.
func (s *Store) ListRecentMedia(ctx context.Context, limit int) ([]models.MediaItem, error) {
	if limit <= 0 {
		return []models.MediaItem{}, nil
	}
	return queryMedia(ctx, s.db, `SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
}

// DeleteMedia removes one media row and returns what was removed, or nil
// when nothing matched.
func (s *Store) DeleteMedia(ctx context.Context, id string) (*models.MediaItem, error) {
	var removed *models.MediaItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
		if err != nil || item == nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id); err != nil {
			return err
		}
		removed = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// deleteMediaByAlbum removes every media row of an album and returns how
// many rows were deleted.
func deleteMediaByAlbum(ctx context.Context, e execer, albumID string) (int, error) {
	res, err := e.ExecContext(ctx, "DELETE FROM media WHERE album_id = ?", albumID)
	if err != nil {
		return 0, classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// IncrementDownloads adds one download in a single statement. Unknown ids
// are a no-op.
func (s *Store) IncrementDownloads(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE media SET downloads = downloads + 1 WHERE id = ?", id)
	return classifyError(err)
}

func countMediaByAlbum(ctx context.Context, q rowQueryer, albumID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM media WHERE album_id = ?", albumID).Scan(&count)
	return count, err
}

// firstPhotoByAlbum returns the earliest ingested photo of an album, or nil.
func firstPhotoByAlbum(ctx context.Context, q rowQueryer, albumID string) (*models.MediaItem, error) {
	return scanMedia(q.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media
		WHERE album_id = ? AND type = ? ORDER BY created_at ASC, rowid ASC LIMIT 1`, albumID, string(models.MediaTypePhoto)))
}

// SearchMedia returns media whose own name, or whose album's name or
// description, contains query as a case-insensitive substring. Each item
// appears once. A blank query matches nothing.
func (s *Store) SearchMedia(ctx context.Context, query string) ([]models.MediaItem, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []models.MediaItem{}, nil
	}
	return queryMedia(ctx, s.db, `
		SELECT DISTINCT `+mediaColumnsM+`
		FROM media m
		JOIN albums a ON a.id = m.album_id
		WHERE instr(`+foldFunc+`(a.name), ?1) > 0
		   OR instr(`+foldFunc+`(a.description), ?1) > 0
		   OR instr(`+foldFunc+`(m.name), ?1) > 0
		ORDER BY m.created_at DESC, m.id DESC`, needle)
}

// MediaTotals aggregates count, bytes, and downloads over all media.
func (s *Store) MediaTotals(ctx context.Context) (models.MediaTotals, error) {
	var totals models.MediaTotals
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size_bytes), 0), COALESCE(SUM(downloads), 0) FROM media",
	).Scan(&totals.Count, &totals.Bytes, &totals.Downloads)
	return totals, err
}

func (s *Store) mediaIDExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM media WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func validateMedia(item *models.MediaItem) error {
	if item == nil {
		return validationError("media item is required")
	}
	if strings.TrimSpace(item.ID) == "" {
		return validationError("media id is required")
	}
	if strings.TrimSpace(item.AlbumID) == "" {
		return validationError("album id is required")
	}
	if !models.IsValidMediaType(item.Type) {
		return validationError("invalid media type: %s", item.Type)
	}
	if item.Size < 0 {
		return validationError("size must be >= 0")
	}
	if strings.TrimSpace(item.DataBlobID) == "" {
		return validationError("data blob is required")
	}
	return nil
}

func insertMediaTx(ctx context.Context, tx *sql.Tx, item *models.MediaItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO media (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.AlbumID,
		item.Name,
		string(item.Type),
		item.MimeType,
		item.Size,
		item.DataBlobID,
		nullIfEmpty(item.ThumbnailBlobID),
		nullIfEmpty(item.Color),
		item.Downloads,
		formatTime(item.CreatedAt),
	)
	return classifyError(err)
}

func queryMedia(ctx context.Context, q queryer, query string, args ...any) ([]models.MediaItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MediaItem{}
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, rows.Err()
}

func scanMedia(row scanner) (*models.MediaItem, error) {
	item := models.MediaItem{}
	var mediaType, createdAt string
	var thumbnailBlobID, color sql.NullString

	err := row.Scan(
		&item.ID,
		&item.AlbumID,
		&item.Name,
		&mediaType,
		&item.MimeType,
		&item.Size,
		&item.DataBlobID,
		&thumbnailBlobID,
		&color,
		&item.Downloads,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	item.Type = models.MediaType(mediaType)
	item.ThumbnailBlobID = thumbnailBlobID.String
	item.Color = color.String
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &item, nil
}
