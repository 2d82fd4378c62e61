package server

import "gallery/internal/library"

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = library.ErrCodeInvalidArgument
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = library.ErrCodeFileTooLarge
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = library.ErrCodeInvalidID
	ErrCodeUnsupportedType = library.ErrCodeUnsupportedType
	ErrCodeMissingRequired = library.ErrCodeMissingRequired

	// Domain state (2xxx)
	ErrCodeAlbumNotFound = library.ErrCodeAlbumNotFound
	ErrCodeMediaNotFound = library.ErrCodeMediaNotFound
	ErrCodeIDExists      = library.ErrCodeIDExists
	ErrCodeConflict      = 2102

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003
	ErrCodeStorageQuota      = library.ErrCodeStorageQuota

	// Internal/system (4xxx)
	ErrCodeInternal     = library.ErrCodeInternal
	ErrCodeStoreFailure = library.ErrCodeStoreFailure
	ErrCodeExportFailed = 4003
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeMediaNotFound
	case 409:
		return ErrCodeConflict
	case 413:
		return ErrCodeRequestTooLarge
	case 415:
		return ErrCodeUnsupportedType
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 507:
		return ErrCodeStorageQuota
	default:
		return 0
	}
}
