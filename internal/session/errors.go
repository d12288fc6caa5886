package session

import "errors"

// ErrSessionClosed is returned when an operation arrives after Stop.
var ErrSessionClosed = errors.New("session closed")
