package models

import (
	"fmt"
	"mime"
	"strings"
	"time"
)

// MediaType is the closed set of media kinds. It is decided once at ingestion.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

const (
	// DefaultMaxUploadBytes is the per-file ingestion ceiling (50 MiB).
	DefaultMaxUploadBytes int64 = 50 * 1024 * 1024
)

// DefaultAllowedMediaTypes is the MIME allow-list used when none is configured.
var DefaultAllowedMediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"video/mp4",
	"video/quicktime",
	"video/webm",
}

var validMediaTypes = map[MediaType]struct{}{
	MediaTypePhoto: {},
	MediaTypeVideo: {},
}

// MediaItem is one stored photo or video.
type MediaItem struct {
	ID              string    `json:"id"`
	AlbumID         string    `json:"album_id"`
	Name            string    `json:"name"`
	Type            MediaType `json:"type"`
	MimeType        string    `json:"mime_type"`
	Size            int64     `json:"size"`
	DataBlobID      string    `json:"data_blob_id"`
	ThumbnailBlobID string    `json:"thumbnail_blob_id,omitempty"`
	Color           string    `json:"color,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Downloads       int       `json:"downloads"`
}

// HasThumbnail reports whether a derived preview exists.
func (m MediaItem) HasThumbnail() bool {
	return m.ThumbnailBlobID != ""
}

// PreviewBlobID returns the thumbnail blob, or the data blob when no
// thumbnail was derived.
func (m MediaItem) PreviewBlobID() string {
	if m.ThumbnailBlobID != "" {
		return m.ThumbnailBlobID
	}
	return m.DataBlobID
}

func IsValidMediaType(t MediaType) bool {
	_, ok := validMediaTypes[t]
	return ok
}

func ParseMediaType(raw string) (MediaType, error) {
	value := MediaType(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("media type is required")
	}
	if !IsValidMediaType(value) {
		return "", fmt.Errorf("invalid media type: %s", value)
	}
	return value, nil
}

// MediaTypeForMIME classifies a MIME type: video/* is a video, everything
// else is a photo.
func MediaTypeForMIME(mimeType string) MediaType {
	if strings.HasPrefix(NormalizeMIME(mimeType), "video/") {
		return MediaTypeVideo
	}
	return MediaTypePhoto
}

// NormalizeMIME lowercases a MIME type and strips its parameters.
// Unparseable input is returned trimmed and lowercased.
func NormalizeMIME(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return strings.ToLower(parsed)
}
