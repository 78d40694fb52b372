package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCardOutOfRange is returned by a CardSource for an index past the end.
	ErrCardOutOfRange = errors.New("card index out of range")
	// ErrQuotaExceeded is returned when an author is at the submission cap.
	ErrQuotaExceeded = errors.New("community deck quota exceeded")
	// ErrShortNameTaken is returned when a new submission's short name
	// collides with an existing community record.
	ErrShortNameTaken = errors.New("a deck with that short name already exists")
	// ErrDashboardRequired is returned when a new paste submission arrives
	// without a requesting user identity. It redirects, it is not retryable.
	ErrDashboardRequired = errors.New("please use the dashboard to create custom decks")
)

// DeletionStatus is the outcome of a community deck delete.
type DeletionStatus int

const (
	DeletionDeleted DeletionStatus = iota
	DeletionNotFound
	DeletionNotOwner
)

// ParseError reports the first rule violated by a deck submission, with the
// 1-based line number and the source URI. The message is user-facing.
type ParseError struct {
	Message string
	Line    int
	URI     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing deck data at <%s> line %d: %s", e.URI, e.Line, e.Message)
}

// NotFoundError names the first requested deck that no tier could resolve.
type NotFoundError struct {
	DeckName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("deck not found: %s", e.DeckName)
}

// FetchError wraps a failed remote paste download. It is user-facing and
// retryable by the caller.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error downloading deck from <%s>: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func validationError(reason string) error {
	return fmt.Errorf("invalid deck: %s", reason)
}
