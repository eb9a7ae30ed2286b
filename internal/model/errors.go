package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("no such resource")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidQuestion   = errors.New("invalid question index")
	ErrInvalidOption     = errors.New("invalid option")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPersistence       = errors.New("persistence failure")
	// Reserved for optimistic concurrency.
	ErrConflict = errors.New("conflict")
)

type Kind string

const (
	KindNotFound          Kind = "NotFound"
	KindInvalidInput      Kind = "InvalidInput"
	KindInvalidQuestion   Kind = "InvalidQuestion"
	KindInvalidOption     Kind = "InvalidOption"
	KindInvalidTransition Kind = "InvalidTransition"
	KindPersistence       Kind = "PersistenceError"
	KindConflict          Kind = "ConflictError"
	KindInternal          Kind = "Internal"
)

// KindOf maps an error chain onto the kind reported to API callers.
// Order matters: a persistence failure that wraps a not-found is still NotFound.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidQuestion):
		return KindInvalidQuestion
	case errors.Is(err, ErrInvalidOption):
		return KindInvalidOption
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	}
	return KindInternal
}

func errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Classify keeps errors of a known kind and marks everything else, timeouts
// included, as a persistence failure.
func Classify(err error) error {
	if err == nil || KindOf(err) != KindInternal {
		return err
	}
	return errors.Join(ErrPersistence, err)
}
