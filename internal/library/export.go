package library

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"gallery/internal/models"
)

const exportManifestName = "album.json"

type exportManifest struct {
	Album      models.Album       `json:"album"`
	Media      []models.MediaItem `json:"media"`
	ExportedAt time.Time          `json:"exported_at"`
}

// ExportAlbum writes a zip archive with every media payload of the album and
// an album.json manifest. Each exported item counts as one download. It
// returns the number of media entries written.
func (l *Library) ExportAlbum(ctx context.Context, albumID string, w io.Writer) (int, error) {
	album, err := l.GetAlbum(ctx, albumID)
	if err != nil {
		return 0, err
	}
	if album == nil {
		return 0, notFound(ErrCodeAlbumNotFound, "album not found: %s", albumID)
	}
	items, err := l.GetAlbumMedia(ctx, album.ID)
	if err != nil {
		return 0, err
	}

	zw := zip.NewWriter(w)
	names := map[string]int{exportManifestName: 1}
	written := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := l.exportItem(ctx, zw, item, uniqueEntryName(names, item.Name)); err != nil {
			return written, fmt.Errorf("export %s: %w", item.ID, err)
		}
		written++
		if err := l.IncrementDownloadCount(ctx, item.ID); err != nil {
			l.logger.Warn("count export download failed", "media_id", item.ID, "error", err)
		}
	}

	manifest, err := json.MarshalIndent(exportManifest{Album: *album, Media: items, ExportedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return written, err
	}
	mw, err := zw.Create(exportManifestName)
	if err != nil {
		return written, err
	}
	if _, err := mw.Write(manifest); err != nil {
		return written, err
	}
	return written, zw.Close()
}

func (l *Library) exportItem(ctx context.Context, zw *zip.Writer, item models.MediaItem, name string) error {
	content, err := l.openBlob(ctx, item.DataBlobID, item.MimeType, item.Name)
	if err != nil {
		return err
	}
	defer content.Reader.Close()

	header := &zip.FileHeader{Name: name, Modified: item.CreatedAt}
	// Photos and videos are already compressed.
	header.Method = zip.Store
	ew, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(ew, content.Reader)
	return err
}

// uniqueEntryName returns name, or "name (n).ext" when name was already used.
func uniqueEntryName(seen map[string]int, name string) string {
	if name == "" {
		name = "untitled"
	}
	key := strings.ToLower(name)
	seen[key]++
	if seen[key] == 1 {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := seen[key]; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		ckey := strings.ToLower(candidate)
		if seen[ckey] == 0 {
			seen[ckey] = 1
			seen[key] = n
			return candidate
		}
	}
}

// ExportFilename builds an ASCII-safe archive name from the album name.
func ExportFilename(albumName string, now time.Time) string {
	slug := make([]rune, 0, len(albumName))
	lastDash := true
	for _, r := range albumName {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug = append(slug, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			slug = append(slug, r+('a'-'A'))
			lastDash = false
		case !lastDash:
			slug = append(slug, '-')
			lastDash = true
		}
	}
	name := string(slug)
	for len(name) > 0 && name[len(name)-1] == '-' {
		name = name[:len(name)-1]
	}
	if name == "" {
		name = "album"
	}
	return name + "-" + now.Format("20060102") + ".zip"
}
