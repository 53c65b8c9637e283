package lakehouse

import "errors"

// Errors for input validation. These are returned before any network call.
var (
	// ErrInvalidArgumentType is returned when a query argument is not a string.
	ErrInvalidArgumentType = errors.New("invalid argument type")
	// ErrInvalidQuerySyntax is returned when a query does not match KEY OPERATOR VALUE.
	ErrInvalidQuerySyntax = errors.New("invalid query syntax")
	// ErrInvalidFilterFormat is returned when a filter fails validation.
	ErrInvalidFilterFormat = errors.New("incorrect filter format")
	// ErrInvalidSortKey is returned when records are sorted by a field some record lacks.
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrUnsupportedOutputFormat is returned for an unknown output mode.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
	// ErrInvalidInput is returned when an option value is outside its allowed set.
	ErrInvalidInput = errors.New("invalid input")
)

// Errors for remote calls.
var (
	// ErrRequestTransport is returned when a request fails below the HTTP layer
	// (connection refused, timeout, TLS).
	ErrRequestTransport = errors.New("request failed")
	// ErrResponseParse is returned when a response body is not the expected JSON.
	ErrResponseParse = errors.New("failed to parse API response")
)
