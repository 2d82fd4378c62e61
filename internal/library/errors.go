package library

import (
	"context"
	"errors"
	"fmt"

	"gallery/internal/blobstore"
	"gallery/internal/store"
)

// Error kinds. Every error returned by Library for a rejected request wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrValidation      = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrStorageQuota    = errors.New("storage quota exceeded")
)

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument  = 1000
	ErrCodeFileTooLarge     = 1002
	ErrCodeInvalidID        = 1004
	ErrCodeUnsupportedType  = 1006
	ErrCodeMissingRequired  = 1009
	ErrCodeInvalidSearch    = 1014
	ErrCodeInvalidCoverPick = 1015

	// Domain state (2xxx)
	ErrCodeAlbumNotFound = 2001
	ErrCodeMediaNotFound = 2003
	ErrCodeBlobNotFound  = 2005
	ErrCodeIDExists      = 2101

	// Limits (3xxx)
	ErrCodeStorageQuota = 3004

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

// Error is a classified library failure.
type Error struct {
	Kind error
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, code int, format string, args ...any) error {
	return &Error{Kind: kind, Code: code, Err: fmt.Errorf(format, args...)}
}

func invalid(code int, format string, args ...any) error {
	return newError(ErrValidation, code, format, args...)
}

func notFound(code int, format string, args ...any) error {
	return newError(ErrNotFound, code, format, args...)
}

// ErrorCode returns the numeric code carried by err, or ErrCodeInternal for
// unclassified failures.
func ErrorCode(err error) int {
	var libErr *Error
	if errors.As(err, &libErr) && libErr.Code != 0 {
		return libErr.Code
	}
	return ErrCodeInternal
}

// classify maps store and blob-store failures onto library kinds. Context
// errors and already classified errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var libErr *Error
	if errors.As(err, &libErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrStorageFull), errors.Is(err, blobstore.ErrNoSpace):
		return &Error{Kind: ErrStorageQuota, Code: ErrCodeStorageQuota, Err: err}
	case errors.Is(err, store.ErrDuplicateID):
		return &Error{Kind: ErrDuplicateID, Code: ErrCodeIDExists, Err: err}
	case errors.Is(err, store.ErrValidation):
		return &Error{Kind: ErrValidation, Code: ErrCodeInvalidArgument, Err: err}
	case errors.Is(err, blobstore.ErrNotFound):
		return &Error{Kind: ErrNotFound, Code: ErrCodeBlobNotFound, Err: err}
	}
	return err
}
