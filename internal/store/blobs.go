package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gallery/internal/models"
)

const blobColumns = "id, sha256, size_bytes, blob_key, created_at"

// UpsertBlob inserts a blob if absent and returns the canonical row by sha256.
func (s *Store) UpsertBlob(ctx context.Context, blob *models.Blob) (*models.Blob, error) {
	var canonical *models.Blob
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		canonical, err = upsertBlobTx(ctx, tx, blob)
		return err
	})
	if err != nil {
		return nil, err
	}
	return canonical, nil
}

// GetBlob returns one blob by id.
func (s *Store) GetBlob(ctx context.Context, id string) (*models.Blob, error) {
	return scanBlob(s.db.QueryRowContext(ctx, `SELECT `+blobColumns+` FROM blobs WHERE id = ?`, id))
}

// GetBlobBySHA256 returns one blob by digest.
func (s *Store) GetBlobBySHA256(ctx context.Context, sha string) (*models.Blob, error) {
	return scanBlob(s.db.QueryRowContext(ctx, `SELECT `+blobColumns+` FROM blobs WHERE sha256 = ?`, strings.ToLower(strings.TrimSpace(sha))))
}

// ListUnreferencedBlobs returns blobs no media item or album cover points at.
func (s *Store) ListUnreferencedBlobs(ctx context.Context, limit int) ([]models.Blob, error) {
	query := `
		SELECT b.id, b.sha256, b.size_bytes, b.blob_key, b.created_at
		FROM blobs b
		WHERE NOT EXISTS (SELECT 1 FROM media m WHERE m.data_blob_id = b.id)
		  AND NOT EXISTS (SELECT 1 FROM media m WHERE m.thumbnail_blob_id = b.id)
		  AND NOT EXISTS (SELECT 1 FROM albums a WHERE a.cover_blob_id = b.id)
		ORDER BY b.created_at ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blobs := []models.Blob{}
	for rows.Next() {
		blob, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		if blob != nil {
			blobs = append(blobs, *blob)
		}
	}
	return blobs, rows.Err()
}

// DeleteBlob deletes one blob row by id.
func (s *Store) DeleteBlob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE id = ?", id)
	return classifyError(err)
}

func upsertBlobTx(ctx context.Context, tx *sql.Tx, blob *models.Blob) (*models.Blob, error) {
	if blob == nil {
		return nil, validationError("blob is required")
	}
	blob.SHA256 = strings.ToLower(strings.TrimSpace(blob.SHA256))
	blob.BlobKey = strings.TrimSpace(blob.BlobKey)
	if blob.SHA256 == "" {
		return nil, validationError("sha256 is required")
	}
	if blob.BlobKey == "" {
		return nil, validationError("blob_key is required")
	}
	if blob.SizeBytes < 0 {
		return nil, validationError("size_bytes must be >= 0")
	}

	if strings.TrimSpace(blob.ID) == "" {
		id, err := GenerateBlobID(func(id string) (bool, error) {
			var exists int
			err := tx.QueryRowContext(ctx, "SELECT 1 FROM blobs WHERE id = ? LIMIT 1", id).Scan(&exists)
			if err == sql.ErrNoRows {
				return false, nil
			}
			return err == nil, err
		})
		if err != nil {
			return nil, err
		}
		blob.ID = id
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO blobs (`+blobColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, blob.ID, blob.SHA256, blob.SizeBytes, blob.BlobKey, formatTime(blob.CreatedAt)); err != nil {
		return nil, classifyError(err)
	}

	canonical, err := scanBlob(tx.QueryRowContext(ctx, `SELECT `+blobColumns+` FROM blobs WHERE sha256 = ?`, blob.SHA256))
	if err != nil {
		return nil, err
	}
	if canonical == nil {
		return nil, validationError("blob not found after upsert")
	}
	return canonical, nil
}

func scanBlob(row scanner) (*models.Blob, error) {
	blob := models.Blob{}
	var createdAt string

	err := row.Scan(&blob.ID, &blob.SHA256, &blob.SizeBytes, &blob.BlobKey, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if blob.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &blob, nil
}
