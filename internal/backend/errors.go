package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend is returned for names outside AllIDs.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrUnsupported is matched by every *UnsupportedError.
	ErrUnsupported = errors.New("operation not supported")
	// ErrNotFound is returned by Info when the package does not exist.
	ErrNotFound = errors.New("package not found")
	// ErrNoPackages is returned by Install when called with no names.
	ErrNoPackages = errors.New("no packages given")
)

// UnsupportedError reports an operation the backend does not provide.
type UnsupportedError struct {
	Backend ID
	Op      Op
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s is not supported", e.Backend, e.Op)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// ParseError reports tool output that could not be normalized.
type ParseError struct {
	Backend ID
	Op      Op
	Raw     string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse %s output: %v", e.Backend, e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
