package devserver

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	// ErrUnauthorized is returned for missing, expired or forged credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
