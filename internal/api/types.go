package api

import (
	"time"

	"gallery/internal/models"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AlbumCreateRequest is the payload for creating an album.
type AlbumCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AlbumUpdateRequest is the payload for updating an album. Omitted fields
// are left unchanged.
type AlbumUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AlbumCoverRequest picks the media item whose preview becomes the cover.
type AlbumCoverRequest struct {
	MediaID string `json:"media_id"`
}

// AlbumDetailResponse is an album together with its media.
type AlbumDetailResponse struct {
	models.Album
	Media []models.MediaItem `json:"media"`
}

// UploadResponse reports the outcome of a multipart upload.
type UploadResponse struct {
	AlbumID   string              `json:"album_id"`
	Items     []models.UploadItem `json:"items"`
	Media     []models.MediaItem  `json:"media"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
}

// BlobGCRequest asks for an unreferenced blob sweep.
type BlobGCRequest struct {
	BatchSize int  `json:"batch_size,omitempty"`
	DryRun    bool `json:"dry_run"`
}

// InfoResponse describes the running library.
type InfoResponse struct {
	LibraryPath       string         `json:"library_path,omitempty"`
	SchemaVersion     int            `json:"schema_version"`
	TotalAlbums       int            `json:"total_albums"`
	TotalMedia        int            `json:"total_media"`
	MediaCounts       map[string]int `json:"media_counts"`
	TotalBlobs        int            `json:"total_blobs"`
	BlobBytes         int64          `json:"blob_bytes"`
	MaxUploadBytes    int64          `json:"max_upload_bytes"`
	AllowedMediaTypes []string       `json:"allowed_media_types"`
	ServerTime        time.Time      `json:"server_time"`
}

// SearchResponse wraps search results with the query that produced them.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []models.MediaItem `json:"results"`
}
