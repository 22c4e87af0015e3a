package service

import "errors"

var (
	// ErrTicketNotFound is returned when no ticket has the requested id.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrStoreUnavailable is returned by mutations when the store could not
	// be read; writing would replace the unreadable file with a partial one.
	ErrStoreUnavailable = errors.New("ticket store unavailable")
	// ErrSaveFailed is returned when the store rejected every write attempt.
	ErrSaveFailed = errors.New("ticket store write failed")
)
