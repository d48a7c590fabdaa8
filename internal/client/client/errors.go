package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRejected        = errors.New("request rejected")
	ErrServer          = errors.New("server error")
	ErrInvalidResponse = errors.New("invalid response from server")
)

// APIError is a non-2xx answer from the REST API. Message is the server's
// own text when the body carried one.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the message the API attached to err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// IsAuthRejection reports whether err is a 401/403 answer.
func IsAuthRejection(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return ErrUnavailable
	case status >= 500:
		return ErrServer
	default:
		return ErrRejected
	}
}
