package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gallery/internal/models"
)

const albumColumns = "id, name, description, cover_blob_id, cover_media_id, cover_color, media_count, views, created_at, updated_at"

// ListAlbums returns all albums, newest first.
func (s *Store) ListAlbums(ctx context.Context) ([]models.Album, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	albums := []models.Album{}
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		if album != nil {
			albums = append(albums, *album)
		}
	}
	return albums, rows.Err()
}

// GetAlbum returns one album, or nil when the id is unknown.
func (s *Store) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	return scanAlbum(s.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
}

// AlbumExists checks whether an album exists by id.
func (s *Store) AlbumExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM albums WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateAlbum inserts a new album with zero counters and no cover.
func (s *Store) CreateAlbum(ctx context.Context, name, description string) (*models.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("album name is required")
	}

	s.albumMu.Lock()
	defer s.albumMu.Unlock()

	id, err := GenerateAlbumID(func(id string) (bool, error) {
		return s.AlbumExists(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	album := &models.Album{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.insertAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// insertAlbum stores a fully formed album row. Callers own id generation and
// hold albumMu.
func (s *Store) insertAlbum(ctx context.Context, album *models.Album) error {
	if album == nil {
		return validationError("album is required")
	}
	if strings.TrimSpace(album.Name) == "" {
		return validationError("album name is required")
	}
	cover := album.Cover
	if cover == nil {
		cover = &models.CoverRef{}
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO albums (`+albumColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			album.ID,
			album.Name,
			album.Description,
			nullIfEmpty(cover.BlobID),
			nullIfEmpty(cover.MediaID),
			nullIfEmpty(cover.Color),
			album.MediaCount,
			album.Views,
			formatTime(album.CreatedAt),
			formatTime(album.UpdatedAt),
		)
		return err
	})
}

// UpdateAlbum merges the non-nil fields of update into the album and bumps
// UpdatedAt. It returns nil without error when the album does not exist.
func (s *Store) UpdateAlbum(ctx context.Context, id string, update models.AlbumUpdate) (*models.Album, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, validationError("album name is required")
	}

	s.albumMu.Lock()
	defer s.albumMu.Unlock()

	var updated *models.Album
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		album, err := scanAlbum(tx.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
		if err != nil || album == nil {
			return err
		}
		if update.Name != nil {
			album.Name = strings.TrimSpace(*update.Name)
		}
		if update.Description != nil {
			album.Description = strings.TrimSpace(*update.Description)
		}
		album.UpdatedAt = nextUpdatedAt(album.UpdatedAt)

		if _, err := tx.ExecContext(ctx,
			"UPDATE albums SET name = ?, description = ?, updated_at = ? WHERE id = ?",
			album.Name, album.Description, formatTime(album.UpdatedAt), album.ID,
		); err != nil {
			return err
		}
		updated = album
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAlbum removes an album and its media rows. Unknown ids are ignored.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	_, err := s.DeleteAlbumCascade(ctx, id)
	return err
}

// DeleteAlbumCascade removes the album row and every media row referencing
// it in one transaction, returning the removed media.
func (s *Store) DeleteAlbumCascade(ctx context.Context, id string) ([]models.MediaItem, error) {
	s.albumMu.Lock()
	defer s.albumMu.Unlock()

	var removed []models.MediaItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		items, err := queryMedia(ctx, tx, `SELECT `+mediaColumns+` FROM media WHERE album_id = ? ORDER BY created_at ASC, rowid ASC`, id)
		if err != nil {
			return err
		}
		if _, err := deleteMediaByAlbum(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM albums WHERE id = ?", id); err != nil {
			return err
		}
		removed = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// IncrementAlbumViews adds one view. Unknown ids are a no-op.
func (s *Store) IncrementAlbumViews(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE albums SET views = views + 1 WHERE id = ?", id)
	return classifyError(err)
}

// RecountAlbum recomputes media_count from the media table and repairs the
// cover in one transaction. A cover is kept while its source media item is
// still a photo in the album; otherwise the earliest photo becomes the cover,
// or the cover is cleared when the album has no photos. It returns nil when
// the album does not exist.
func (s *Store) RecountAlbum(ctx context.Context, id string) (*models.Album, error) {
	s.albumMu.Lock()
	defer s.albumMu.Unlock()

	var result *models.Album
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		album, err := scanAlbum(tx.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
		if err != nil || album == nil {
			return err
		}

		count, err := countMediaByAlbum(ctx, tx, id)
		if err != nil {
			return err
		}
		album.MediaCount = count

		if !coverStillValid(ctx, tx, album) {
			first, err := firstPhotoByAlbum(ctx, tx, id)
			if err != nil {
				return err
			}
			album.Cover = coverFromMedia(first)
		}

		cover := album.Cover
		if cover == nil {
			cover = &models.CoverRef{}
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE albums SET media_count = ?, cover_blob_id = ?, cover_media_id = ?, cover_color = ?
			WHERE id = ?
		`, album.MediaCount, nullIfEmpty(cover.BlobID), nullIfEmpty(cover.MediaID), nullIfEmpty(cover.Color), id); err != nil {
			return err
		}
		result = album
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetAlbumCover points the album cover at one of its photos. It returns nil
// when the album does not exist.
func (s *Store) SetAlbumCover(ctx context.Context, albumID, mediaID string) (*models.Album, error) {
	s.albumMu.Lock()
	defer s.albumMu.Unlock()

	var result *models.Album
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		album, err := scanAlbum(tx.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, albumID))
		if err != nil || album == nil {
			return err
		}
		item, err := scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, mediaID))
		if err != nil {
			return err
		}
		if item == nil || item.AlbumID != albumID {
			return validationError("media %s is not part of album %s", mediaID, albumID)
		}
		if item.Type != models.MediaTypePhoto {
			return validationError("album cover must be a photo")
		}
		album.Cover = coverFromMedia(item)
		if _, err := tx.ExecContext(ctx,
			"UPDATE albums SET cover_blob_id = ?, cover_media_id = ?, cover_color = ? WHERE id = ?",
			album.Cover.BlobID, album.Cover.MediaID, nullIfEmpty(album.Cover.Color), albumID,
		); err != nil {
			return err
		}
		result = album
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func coverStillValid(ctx context.Context, tx *sql.Tx, album *models.Album) bool {
	if album.Cover == nil || album.Cover.MediaID == "" {
		return false
	}
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM media WHERE id = ? AND album_id = ? AND type = ? LIMIT 1",
		album.Cover.MediaID, album.ID, string(models.MediaTypePhoto)).Scan(&exists)
	return err == nil
}

func coverFromMedia(item *models.MediaItem) *models.CoverRef {
	if item == nil {
		return nil
	}
	return &models.CoverRef{
		BlobID:  item.PreviewBlobID(),
		MediaID: item.ID,
		Color:   item.Color,
	}
}

// nextUpdatedAt returns now, nudged forward so successive updates always
// produce strictly increasing timestamps.
func nextUpdatedAt(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func scanAlbum(row scanner) (*models.Album, error) {
	album := models.Album{}
	var coverBlobID, coverMediaID, coverColor sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&album.ID,
		&album.Name,
		&album.Description,
		&coverBlobID,
		&coverMediaID,
		&coverColor,
		&album.MediaCount,
		&album.Views,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if coverBlobID.Valid && coverBlobID.String != "" {
		album.Cover = &models.CoverRef{
			BlobID:  coverBlobID.String,
			MediaID: coverMediaID.String,
			Color:   coverColor.String,
		}
	}

	if album.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if album.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &album, nil
}
