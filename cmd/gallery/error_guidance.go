package main

import (
	"context"
	"errors"
	"io/fs"

	"gallery/internal/library"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var libErr *library.Error
	if errors.As(err, &libErr) {
		switch {
		case errors.Is(err, library.ErrNotFound):
			switch libErr.Code {
			case library.ErrCodeAlbumNotFound:
				lines = append(lines, "hint: list album ids with: gallery album list")
			case library.ErrCodeMediaNotFound:
				lines = append(lines, "hint: list media ids with: gallery media list")
			case library.ErrCodeBlobNotFound:
				lines = append(lines, "hint: stored bytes are missing; check the blobs directory under library_path.")
			}
		case errors.Is(err, library.ErrUnsupportedType):
			lines = append(lines, "hint: accepted types come from media.allowed_media_types or GALLERY_ALLOWED_MEDIA_TYPES.")
		case errors.Is(err, library.ErrFileTooLarge):
			lines = append(lines, "hint: raise media.max_upload_bytes or GALLERY_MAX_UPLOAD_BYTES.")
		case errors.Is(err, library.ErrStorageQuota):
			lines = append(lines,
				"hint: the disk holding library_path is full.",
				"hint: reclaim unreferenced bytes with: gallery gc --apply",
			)
		case errors.Is(err, library.ErrDuplicateID):
			lines = append(lines, "hint: an id collision occurred; retry the command.")
		}
		if libErr.Code == library.ErrCodeStoreFailure || libErr.Code == library.ErrCodeInternal {
			lines = append(lines, "hint: rerun with --log-level debug for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: the command was interrupted; completed uploads are kept, rerun to resume.")
		return uniqueLines(lines)
	}

	if errors.Is(err, fs.ErrNotExist) {
		lines = append(lines, "hint: check the path, or set library_path / GALLERY_LIBRARY to an existing library.")
		return uniqueLines(lines)
	}

	if errors.Is(err, fs.ErrPermission) {
		lines = append(lines, "hint: the library directory must be writable by the current user.")
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
