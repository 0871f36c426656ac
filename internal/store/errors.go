package store

import (
	"errors"
	"strings"

	"github.com/msomdec/taskboard/internal/domain"
)

// validationMessage returns the user-facing part of a validation error,
// whether it was raised locally or reported by the server.
func validationMessage(err error) (string, bool) {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return "", false
	}
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return remote.Message, remote.Message != ""
	}
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, domain.ErrInvalidInput.Error()+": "); ok {
		msg = after
	}
	return msg, msg != ""
}

// remoteMessage prefers any server-provided message, then a local
// validation message, then fallback.
func remoteMessage(err error, fallback string) string {
	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if msg, ok := validationMessage(err); ok {
		return msg
	}
	return fallback
}

// taskMessage surfaces validation messages and hides everything else
// behind fallback.
func taskMessage(err error, fallback string) string {
	if msg, ok := validationMessage(err); ok {
		return msg
	}
	return fallback
}
