package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a name is already in use
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when related entities do not belong together
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNothingToUpdate is returned for patches without any field
	ErrNothingToUpdate = errors.New("nothing to update")
)

// detailError carries a client-facing message while matching one of the sentinels above
type detailError struct {
	kind   error
	detail string
}

func (e *detailError) Error() string { return e.detail }
func (e *detailError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) error {
	return &detailError{kind: kind, detail: fmt.Sprintf(format, args...)}
}

// notFound translates a repository miss into ErrNotFound with detail and passes other errors through
func notFound(err error, detail string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "%s", detail)
	}
	return err
}
