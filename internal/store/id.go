package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	AlbumIDPrefix = "al"
	MediaIDPrefix = "md"
	BlobIDPrefix  = "bl"

	idMaxAttempts = 20
)

// GenerateID returns a new id of the form "<prefix>-<uuidv7 hex>". The UUIDv7
// payload starts with a millisecond timestamp, so ids sort roughly by
// creation time. It retries on collisions using the provided exists function.
func GenerateID(prefix string, exists func(string) (bool, error)) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("id prefix is required")
	}

	for i := 0; i < idMaxAttempts; i++ {
		u, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s-%s", prefix, strings.ReplaceAll(u.String(), "-", ""))
		if exists == nil {
			return id, nil
		}
		ok, err := exists(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return id, nil
		}
	}

	return "", fmt.Errorf("unable to generate unique id")
}

// GenerateAlbumID returns a new album id using the al- prefix.
func GenerateAlbumID(exists func(string) (bool, error)) (string, error) {
	return GenerateID(AlbumIDPrefix, exists)
}

// GenerateMediaID returns a new media id using the md- prefix.
func GenerateMediaID(exists func(string) (bool, error)) (string, error) {
	return GenerateID(MediaIDPrefix, exists)
}

// GenerateBlobID returns a new blob id using the bl- prefix.
func GenerateBlobID(exists func(string) (bool, error)) (string, error) {
	return GenerateID(BlobIDPrefix, exists)
}
