package store

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrValidation reports a rejected input such as an empty album name or
	// a media row whose album does not exist.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateID reports an insert whose id is already present.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrStorageFull reports that the database or disk has no space left.
	ErrStorageFull = errors.New("storage full")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classifyError maps driver failures onto the store sentinels. Errors that
// already carry a sentinel are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrDuplicateID) || errors.Is(err, ErrStorageFull) {
		return err
	}
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return fmt.Errorf("%w: %v", ErrStorageFull, err)
	}

	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: referenced record does not exist", ErrValidation)
	}
	switch sqlErr.Code() & 0xff {
	case sqlite3.SQLITE_FULL:
		return fmt.Errorf("%w: %v", ErrStorageFull, err)
	case sqlite3.SQLITE_CONSTRAINT:
		msg := sqlErr.Error()
		switch {
		case strings.Contains(msg, "FOREIGN KEY"):
			return fmt.Errorf("%w: referenced record does not exist", ErrValidation)
		case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
			return fmt.Errorf("%w: %v", ErrDuplicateID, err)
		}
	}
	return err
}
