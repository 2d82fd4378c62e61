package store

import (
	"context"

	"gallery/internal/models"
)

// StoreInfo summarizes the library database.
type StoreInfo struct {
	SchemaVersion int            `json:"schema_version"`
	TotalAlbums   int            `json:"total_albums"`
	TotalMedia    int            `json:"total_media"`
	MediaCounts   map[string]int `json:"media_counts"`
	TotalBlobs    int            `json:"total_blobs"`
	BlobBytes     int64          `json:"blob_bytes"`
}

// StoreInfo returns row counts and the applied schema version.
func (s *Store) StoreInfo(ctx context.Context) (*StoreInfo, error) {
	info := &StoreInfo{MediaCounts: map[string]int{
		string(models.MediaTypePhoto): 0,
		string(models.MediaTypeVideo): 0,
	}}

	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&info.SchemaVersion); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM albums").Scan(&info.TotalAlbums); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM blobs").Scan(&info.TotalBlobs, &info.BlobBytes); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM media GROUP BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var mediaType string
		var count int
		if err := rows.Scan(&mediaType, &count); err != nil {
			return nil, err
		}
		info.MediaCounts[mediaType] = count
		info.TotalMedia += count
	}
	return info, rows.Err()
}

// Vacuum rebuilds the database file to reclaim free pages.
func (s *Store) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}
