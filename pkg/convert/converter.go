package convert

import (
	"fmt"
	"reflect"

	"golang.org/x/text/language"
)

// Failure message keys. They are looked up in the message bundle with the
// raw value as the only argument.
const (
	KeyNumber   = "is_not_a_valid_number"
	KeyInteger  = "is_not_a_valid_integer"
	KeyChar     = "is_not_a_valid_character"
	KeyEnum     = "is_not_a_valid_enum_value"
	KeyDate     = "is_not_a_valid_date"
	KeyBoolean  = "is_not_a_valid_boolean"
	KeyTime     = "is_not_a_valid_time"
	KeyDateTime = "is_not_a_valid_datetime"
)

// Converter parses one raw string into a value of the target type.
//
// target is never a pointer type: the registry strips one pointer level and
// wraps the result itself. Implementations report parse failures with
// *InvalidFormat.
type Converter interface {
	Convert(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error)
}

// Func adapts a function to the Converter interface.
type Func func(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error)

func (f Func) Convert(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	return f(raw, target, tag)
}

// InvalidFormat reports a raw value that does not match the grammar of its
// target type.
type InvalidFormat struct {
	Key string // message key, one of the Key* constants
	Raw string // the offending input, unmodified
	Err error  // optional underlying parse error
}

func (e *InvalidFormat) Error() string {
	return fmt.Sprintf("%s: %q", e.Key, e.Raw)
}

func (e *InvalidFormat) Unwrap() error {
	return e.Err
}

// MessageKey returns the message bundle key of the failure.
func (e *InvalidFormat) MessageKey() string {
	return e.Key
}

// MessageArgs returns the positional arguments of the message.
func (e *InvalidFormat) MessageArgs() []any {
	return []any{e.Raw}
}

func invalid(key, raw string, err error) error {
	return &InvalidFormat{Key: key, Raw: raw, Err: err}
}
