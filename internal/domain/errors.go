package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates an entity with the same natural key already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidInput indicates a missing or malformed identifier.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream indicates an external collaborator could not be reached.
	ErrUpstream = errors.New("upstream unavailable")
)

// DuplicateMovieError is returned when a movie with the same external id is
// already in the catalog. Clients match on the "already exists" phrase.
type DuplicateMovieError struct {
	Title      string
	ExternalID string
}

func (e *DuplicateMovieError) Error() string {
	return fmt.Sprintf("movie %q with imdbID %s already exists", e.Title, e.ExternalID)
}

func (e *DuplicateMovieError) Is(target error) bool {
	return target == ErrDuplicate
}

// NotFoundf builds an error that matches ErrNotFound and keeps "not found" in its text.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// InvalidInputf builds an error that matches ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
