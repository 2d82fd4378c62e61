package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gallery/internal/library"
	"gallery/internal/models"
)

const sniffLen = 512

// fileUpload describes a local file as an upload. The MIME type comes from
// the extension, or from the leading bytes when the extension is unknown.
func fileUpload(path string) (models.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Upload{}, err
	}
	if info.IsDir() {
		return models.Upload{}, fmt.Errorf("%s is a directory", path)
	}

	mimeType, err := detectFileMIME(path)
	if err != nil {
		return models.Upload{}, err
	}

	return models.Upload{
		Filename: filepath.Base(path),
		MimeType: mimeType,
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func detectFileMIME(path string) (string, error) {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return models.NormalizeMIME(byExt), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return models.NormalizeMIME(http.DetectContentType(head[:n])), nil
}

// uploadFiles queues every path into albumID and runs the queue. Files that
// cannot be described are reported as failed without reaching the library.
func uploadFiles(ctx context.Context, lib *library.Library, albumID string, paths []string, quiet bool) ([]models.UploadItem, error) {
	queue := library.NewUploadQueue(lib, albumID)
	var rejected []models.UploadItem

	for _, path := range paths {
		up, err := fileUpload(path)
		if err != nil {
			rejected = append(rejected, models.UploadItem{
				Filename: filepath.Base(path),
				Size:     -1,
				Status:   models.UploadError,
				Message:  err.Error(),
			})
			continue
		}
		if _, err := queue.Enqueue(up); err != nil {
			return nil, err
		}
	}

	progress := func(p models.UploadProgress) {
		slog.Debug("upload progress", "album_id", albumID, "file", p.Item.Filename, "status", p.Item.Status, "percent", p.Percent())
		if !quiet {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s %s\n", p.Completed, p.Total, p.Item.Status, p.Item.Filename)
		}
	}
	runErr := queue.Run(ctx, progress)
	return append(queue.Items(), rejected...), runErr
}

func countFailed(items []models.UploadItem) int {
	failed := 0
	for _, item := range items {
		if item.Status == models.UploadError {
			failed++
		}
	}
	return failed
}
