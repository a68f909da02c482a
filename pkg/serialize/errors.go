package serialize

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNilRoot is returned when the root object is nil.
	ErrNilRoot = errors.New("root object is nil")
	// ErrRootlessCollection is returned when a collection is serialized
	// without a root name.
	ErrRootlessCollection = errors.New("collections require a root name")
	// ErrRootRequired is returned by formats that cannot express a rootless
	// document, such as XML.
	ErrRootRequired = errors.New("format requires a root name")
	// ErrUnsupportedValue is returned for values the format cannot
	// represent: channels, functions, complex numbers and non-finite floats
	// in JSON.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrCycle is returned when the object graph refers back to itself or
	// nests deeper than the engine allows.
	ErrCycle = errors.New("cycle in object graph")
	// ErrUnknownFormat is returned for an unregistered output format.
	ErrUnknownFormat = errors.New("unknown format")
)

// SerializationError reports the value that made a serialize call fail. No
// partial output is produced.
type SerializationError struct {
	// Path is the dotted path of the failing value; empty for the root.
	Path  string
	Cause error
}

func (e *SerializationError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("serialize %s: %v", path, e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

func fail(path string, cause error) error {
	return &SerializationError{Path: path, Cause: cause}
}
