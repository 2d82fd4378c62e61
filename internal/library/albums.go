package library

import (
	"context"
	"errors"
	"strings"

	"gallery/internal/models"
	"gallery/internal/store"
)

// CreateAlbum creates an empty album.
func (l *Library) CreateAlbum(ctx context.Context, name, description string) (models.Album, error) {
	var zero models.Album
	if strings.TrimSpace(name) == "" {
		return zero, invalid(ErrCodeMissingRequired, "album name is required")
	}
	album, err := l.albums.CreateAlbum(ctx, name, description)
	if err != nil {
		return zero, classify(err)
	}
	l.logger.Debug("album created", "album_id", album.ID)
	return *album, nil
}

// ListAlbums returns every album, newest first.
func (l *Library) ListAlbums(ctx context.Context) ([]models.Album, error) {
	albums, err := l.albums.ListAlbums(ctx)
	return albums, classify(err)
}

// ListAlbumsSorted returns every album in the requested order.
func (l *Library) ListAlbumsSorted(ctx context.Context, by models.AlbumSort) ([]models.Album, error) {
	if _, err := models.ParseAlbumSort(string(by)); err != nil {
		return nil, invalid(ErrCodeInvalidArgument, "%v", err)
	}
	albums, err := l.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}
	models.SortAlbums(albums, by)
	return albums, nil
}

// GetAlbum returns one album, or nil when the id is unknown.
func (l *Library) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	album, err := l.albums.GetAlbum(ctx, strings.TrimSpace(id))
	return album, classify(err)
}

// UpdateAlbum merges name and description changes. It returns nil without
// error when the album does not exist.
func (l *Library) UpdateAlbum(ctx context.Context, id string, update models.AlbumUpdate) (*models.Album, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, invalid(ErrCodeMissingRequired, "album name is required")
	}
	album, err := l.albums.UpdateAlbum(ctx, strings.TrimSpace(id), update)
	return album, classify(err)
}

// DeleteAlbum removes the album and all of its media. Deleting an unknown
// album is a no-op. Bytes no longer referenced are swept afterwards; a
// failed sweep is logged and left for the next GC run.
func (l *Library) DeleteAlbum(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	unlock := l.locks.Lock(albumKey(id))
	removed, err := l.albums.DeleteAlbumCascade(ctx, id)
	unlock()
	if err != nil {
		return classify(err)
	}
	l.logger.Debug("album deleted", "album_id", id, "media_removed", len(removed))
	l.sweep(ctx)
	return nil
}

// IncrementAlbumViews records one view. Unknown ids are a no-op.
func (l *Library) IncrementAlbumViews(ctx context.Context, id string) error {
	return classify(l.albums.IncrementAlbumViews(ctx, strings.TrimSpace(id)))
}

// RecountAlbum recomputes the media count and cover of one album. It
// returns nil when the album does not exist.
func (l *Library) RecountAlbum(ctx context.Context, id string) (*models.Album, error) {
	id = strings.TrimSpace(id)
	unlock := l.locks.Lock(albumKey(id))
	defer unlock()
	album, err := l.albums.RecountAlbum(ctx, id)
	return album, classify(err)
}

// SetAlbumCover makes one of the album's photos its cover.
func (l *Library) SetAlbumCover(ctx context.Context, albumID, mediaID string) (models.Album, error) {
	var zero models.Album
	albumID = strings.TrimSpace(albumID)
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return zero, invalid(ErrCodeMissingRequired, "media id is required")
	}

	unlock := l.locks.Lock(albumKey(albumID))
	defer unlock()
	album, err := l.albums.SetAlbumCover(ctx, albumID, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return zero, &Error{Kind: ErrValidation, Code: ErrCodeInvalidCoverPick, Err: err}
		}
		return zero, classify(err)
	}
	if album == nil {
		return zero, notFound(ErrCodeAlbumNotFound, "album not found: %s", albumID)
	}
	return *album, nil
}
