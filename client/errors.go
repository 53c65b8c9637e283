package client

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
)

// ErrAPIRequest matches every *APIError through errors.Is.
var ErrAPIRequest = errors.New("API request failed")

// ErrNotAuthenticated is returned by operations that need a session
// identity before Authenticate succeeded.
var ErrNotAuthenticated = errors.New("not authenticated")
