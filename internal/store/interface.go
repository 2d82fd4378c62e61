package store

import (
	"context"

	"gallery/internal/models"
)

// AlbumStore is the persistence surface for album records.
type AlbumStore interface {
	ListAlbums(ctx context.Context) ([]models.Album, error)
	GetAlbum(ctx context.Context, id string) (*models.Album, error)
	AlbumExists(ctx context.Context, id string) (bool, error)
	CreateAlbum(ctx context.Context, name, description string) (*models.Album, error)
	UpdateAlbum(ctx context.Context, id string, update models.AlbumUpdate) (*models.Album, error)
	DeleteAlbum(ctx context.Context, id string) error
	DeleteAlbumCascade(ctx context.Context, id string) ([]models.MediaItem, error)
	IncrementAlbumViews(ctx context.Context, id string) error
	RecountAlbum(ctx context.Context, id string) (*models.Album, error)
	SetAlbumCover(ctx context.Context, albumID, mediaID string) (*models.Album, error)
}

// MediaStore is the persistence surface for media records and the blob rows
// they reference.
type MediaStore interface {
	CreateMediaWithBlobs(ctx context.Context, item *models.MediaItem, data *models.Blob, thumbnail *models.Blob) error
	GetMedia(ctx context.Context, id string) (*models.MediaItem, error)
	ListMediaByAlbum(ctx context.Context, albumID string) ([]models.MediaItem, error)
	ListMediaByType(ctx context.Context, mediaType models.MediaType) ([]models.MediaItem, error)
	ListAllMedia(ctx context.Context) ([]models.MediaItem, error)
	ListRecentMedia(ctx context.Context, limit int) ([]models.MediaItem, error)
	DeleteMedia(ctx context.Context, id string) (*models.MediaItem, error)
	IncrementDownloads(ctx context.Context, id string) error
	SearchMedia(ctx context.Context, query string) ([]models.MediaItem, error)
	MediaTotals(ctx context.Context) (models.MediaTotals, error)

	UpsertBlob(ctx context.Context, blob *models.Blob) (*models.Blob, error)
	GetBlob(ctx context.Context, id string) (*models.Blob, error)
	GetBlobBySHA256(ctx context.Context, sha string) (*models.Blob, error)
	ListUnreferencedBlobs(ctx context.Context, limit int) ([]models.Blob, error)
	DeleteBlob(ctx context.Context, id string) error
}

var (
	_ AlbumStore = (*Store)(nil)
	_ MediaStore = (*Store)(nil)
)
