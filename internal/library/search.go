package library

import (
	"context"
	"strings"
	"unicode/utf8"

	"gallery/internal/models"
)

const maxSearchQueryLen = 256

// SearchMedia returns media whose own name, or whose album's name or
// description, contains query case-insensitively. Each item appears at most
// once. A blank query matches nothing.
func (l *Library) SearchMedia(ctx context.Context, query string) ([]models.MediaItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.MediaItem{}, nil
	}
	if utf8.RuneCountInString(query) > maxSearchQueryLen {
		return nil, invalid(ErrCodeInvalidSearch, "search query longer than %d characters", maxSearchQueryLen)
	}
	items, err := l.media.SearchMedia(ctx, query)
	return items, classify(err)
}
