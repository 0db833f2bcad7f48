package session

import "errors"

var (
	// ErrNotSignedIn is returned when no session exists for a token.
	ErrNotSignedIn = errors.New("session: not signed in")

	// ErrClosed is returned by a Manager after Shutdown.
	ErrClosed = errors.New("session: manager closed")
)
