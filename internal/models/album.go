package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// CoverRef points at the blob representing an album and the media item it
// was derived from.
type CoverRef struct {
	BlobID  string `json:"blob_id"`
	MediaID string `json:"media_id"`
	Color   string `json:"color,omitempty"`
}

// Album is a named collection of media items.
type Album struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Cover       *CoverRef `json:"cover,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	MediaCount  int       `json:"media_count"`
	Views       int       `json:"views"`
}

// AlbumUpdate holds the mutable album fields. Nil fields are left unchanged.
type AlbumUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u AlbumUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil
}

// AlbumSort orders an album listing.
type AlbumSort string

const (
	AlbumSortDate AlbumSort = "date"
	AlbumSortName AlbumSort = "name"
	AlbumSortSize AlbumSort = "size"
)

// ParseAlbumSort accepts date, name or size. An empty value means date.
func ParseAlbumSort(raw string) (AlbumSort, error) {
	switch value := AlbumSort(strings.ToLower(strings.TrimSpace(raw))); value {
	case "":
		return AlbumSortDate, nil
	case AlbumSortDate, AlbumSortName, AlbumSortSize:
		return value, nil
	default:
		return "", fmt.Errorf("invalid album sort: %s (want date, name or size)", value)
	}
}

// SortAlbums orders albums in place: date is newest first, name is
// case-insensitive A to Z, size is most media first. Ties keep their
// incoming order.
func SortAlbums(albums []Album, by AlbumSort) {
	switch by {
	case AlbumSortName:
		slices.SortStableFunc(albums, func(a, b Album) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case AlbumSortSize:
		slices.SortStableFunc(albums, func(a, b Album) int {
			return cmp.Compare(b.MediaCount, a.MediaCount)
		})
	default:
		slices.SortStableFunc(albums, func(a, b Album) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}
