package endpoint

import "errors"

var (
	// ErrMissingName indicates an endpoint config without a name.
	ErrMissingName = errors.New("endpoint: name is required")

	// ErrInvalidConfig indicates an out-of-range config value.
	ErrInvalidConfig = errors.New("endpoint: invalid config")

	// ErrDuplicateName indicates two configs share a name.
	ErrDuplicateName = errors.New("endpoint: duplicate name")

	// ErrUnknownEndpoint indicates a registry lookup for an unknown name.
	ErrUnknownEndpoint = errors.New("endpoint: unknown endpoint")
)
