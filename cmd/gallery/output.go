package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gallery/internal/format"
	"gallery/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{Indent: "  "}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeAlbumList(albums []models.Album) error {
	if len(albums) == 0 {
		return writePlain("no albums\n")
	}
	table := format.NewTable("ID", "NAME", "MEDIA", "VIEWS", "UPDATED")
	for _, album := range albums {
		table.Row(album.ID, album.Name, fmt.Sprint(album.MediaCount), fmt.Sprint(album.Views), humanize.Time(album.UpdatedAt))
	}
	_, err := table.WriteTo(os.Stdout)
	return err
}

func writeAlbumDetail(album models.Album, media []models.MediaItem) error {
	lines := []string{
		fmt.Sprintf("id: %s", album.ID),
		fmt.Sprintf("name: %s", album.Name),
		fmt.Sprintf("media_count: %d", album.MediaCount),
		fmt.Sprintf("views: %d", album.Views),
		fmt.Sprintf("created_at: %s", formatTime(album.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(album.UpdatedAt)),
	}
	if album.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", album.Description))
	}
	if album.Cover != nil {
		lines = append(lines, fmt.Sprintf("cover: %s", album.Cover.MediaID))
		if album.Cover.Color != "" {
			lines = append(lines, fmt.Sprintf("cover_color: %s", album.Cover.Color))
		}
	}
	if err := writePlain("%s\n", strings.Join(lines, "\n")); err != nil {
		return err
	}
	if len(media) == 0 {
		return nil
	}
	if err := writePlain("\n"); err != nil {
		return err
	}
	return writeMediaList(media)
}

func writeMediaList(items []models.MediaItem) error {
	if len(items) == 0 {
		return writePlain("no media\n")
	}
	table := format.NewTable("ID", "TYPE", "SIZE", "NAME", "ALBUM")
	for _, item := range items {
		table.Row(item.ID, string(item.Type), formatSize(item.Size), item.Name, item.AlbumID)
	}
	_, err := table.WriteTo(os.Stdout)
	return err
}

func writeMediaDetail(item models.MediaItem) error {
	lines := []string{
		fmt.Sprintf("id: %s", item.ID),
		fmt.Sprintf("album_id: %s", item.AlbumID),
		fmt.Sprintf("name: %s", item.Name),
		fmt.Sprintf("type: %s", item.Type),
		fmt.Sprintf("mime_type: %s", item.MimeType),
		fmt.Sprintf("size: %s", formatSize(item.Size)),
		fmt.Sprintf("downloads: %d", item.Downloads),
		fmt.Sprintf("created_at: %s", formatTime(item.CreatedAt)),
		fmt.Sprintf("thumbnail: %t", item.HasThumbnail()),
	}
	if item.Color != "" {
		lines = append(lines, fmt.Sprintf("color: %s", item.Color))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeUploadItems(items []models.UploadItem) error {
	table := format.NewTable("FILE", "STATUS", "MEDIA", "MESSAGE")
	for _, item := range items {
		table.Row(item.Filename, string(item.Status), item.MediaID, item.Message)
	}
	_, err := table.WriteTo(os.Stdout)
	return err
}

func formatSize(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(n))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
