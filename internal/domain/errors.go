package domain

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
)

// RemoteError is a non-2xx response from the task/auth API.
type RemoteError struct {
	Status  int
	Message string // server-provided message, may be empty
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote: " + http.StatusText(e.Status)
	}
	return "remote: " + e.Message
}

// Unwrap maps the HTTP status onto the sentinel errors so callers can
// use errors.Is regardless of which side of the wire produced the failure.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrDuplicateEmail
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidInput
	}
	return nil
}
