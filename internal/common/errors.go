package common

import "errors"

var (
	// ErrNotFound is returned by local repositories for a missing key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a form that failed local validation.
	ErrInvalidInput = errors.New("invalid input")
)
