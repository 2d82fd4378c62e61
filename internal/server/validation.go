package server

import (
	"fmt"
	"regexp"
	"strings"

	"gallery/internal/models"
	"gallery/internal/store"
)

var (
	albumIDRegex = regexp.MustCompile(`^` + store.AlbumIDPrefix + `-[0-9a-f]{32}$`)
	mediaIDRegex = regexp.MustCompile(`^` + store.MediaIDPrefix + `-[0-9a-f]{32}$`)
)

func validateAlbumID(id string) bool {
	return albumIDRegex.MatchString(id)
}

func validateMediaID(id string) bool {
	return mediaIDRegex.MatchString(id)
}

func normalizeMediaTypeFilter(value string) (models.MediaType, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	mediaType, err := models.ParseMediaType(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidQuery)
	}
	return mediaType, nil
}

func normalizeAlbumSort(value string) (models.AlbumSort, error) {
	sortBy, err := models.ParseAlbumSort(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidQuery)
	}
	return sortBy, nil
}

func validateAlbumUpdate(update models.AlbumUpdate) error {
	if update.IsEmpty() {
		return badRequestCode(fmt.Errorf("name or description is required"), ErrCodeMissingRequired)
	}
	return nil
}
