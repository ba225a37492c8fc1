package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyLoading is returned by Cursor.BeginLoad when a page request
	// is already in flight.
	ErrAlreadyLoading = errors.New("page load already in progress")

	// ErrEmptyQuery is returned when a search is started without a query.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrStaleCompletion marks a fetch completion that belongs to a request
	// the session no longer waits for. The completion is discarded.
	ErrStaleCompletion = errors.New("stale fetch completion")

	// ErrInvalidPageToken is returned for page tokens that are not positive
	// integers.
	ErrInvalidPageToken = errors.New("invalid page token")

	// ErrClosed is returned when sending to a runner that has stopped.
	ErrClosed = errors.New("session closed")

	// ErrNotFound is returned by the Registry for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)

// FetchError wraps a failed page fetch. The catalog reports no structured
// detail beyond success or failure, so the cause is kept only for logging.
type FetchError struct {
	Query string
	Page  PageToken
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %q page %s: %v", e.Query, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
