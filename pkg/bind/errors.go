package bind

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"

	"github.com/aretw0/mold/pkg/message"
)

// KeyCannotInstantiate is the message key of MissingIntermediate.
const KeyCannotInstantiate = "cannot_instantiate"

var (
	// ErrUnknownKey is returned when a key names no field of the graph.
	ErrUnknownKey = errors.New("unknown parameter key")
	// ErrInvalidTarget is returned when the bind target is not a non-nil
	// pointer or map.
	ErrInvalidTarget = errors.New("bind target must be a non-nil pointer or map")
)

// MissingIntermediate reports a path step whose value cannot be created,
// such as a nil interface with methods, a func or a channel.
type MissingIntermediate struct {
	Path string
	Type reflect.Type
}

func (e *MissingIntermediate) Error() string {
	return fmt.Sprintf("cannot instantiate %s at %q", e.Type, e.Path)
}

func (e *MissingIntermediate) MessageKey() string { return KeyCannotInstantiate }

func (e *MissingIntermediate) MessageArgs() []any { return []any{e.Path} }

// FieldError is the failure of one parameter.
type FieldError struct {
	Key string // the parameter key as received
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("parameter %q: %v", e.Key, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Errors collects the failures of one Bind call, in key order.
type Errors struct {
	Fields []*FieldError
}

func (e *Errors) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d binding errors:\n", len(e.Fields))
	for i, fe := range e.Fields {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, fe.Error())
	}
	return b.String()
}

// Get returns the failure of key.
func (e *Errors) Get(key string) (error, bool) {
	for _, fe := range e.Fields {
		if fe.Key == key {
			return fe.Err, true
		}
	}
	return nil, false
}

// Keys returns the failed parameter keys.
func (e *Errors) Keys() []string {
	keys := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		keys[i] = fe.Key
	}
	return keys
}

// Localize renders every failure through b. The category of each message is
// the parameter key.
func (e *Errors) Localize(b message.Bundle, tag language.Tag) []message.Message {
	out := make([]message.Message, len(e.Fields))
	for i, fe := range e.Fields {
		out[i] = message.Message{Category: fe.Key, Text: message.Text(b, tag, fe.Err)}
	}
	return out
}

// FieldErrors returns the failures carried by err, or nil when err is not a
// binding failure.
func FieldErrors(err error) []*FieldError {
	var errs *Errors
	if errors.As(err, &errs) {
		return errs.Fields
	}
	return nil
}
