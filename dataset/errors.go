package dataset

import "errors"

var (
	ErrNoTable        = errors.New("no table found")
	ErrMalformedInput = errors.New("malformed dataset")
)
