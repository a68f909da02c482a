package message

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
)

// Bundle resolves message keys into localized text.
type Bundle interface {
	MessageFor(tag language.Tag, key string, args ...any) string
}

// Message is a rendered message attached to a category, usually the
// parameter key that produced it.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Keyed is implemented by errors that carry a message key and its
// positional arguments.
type Keyed interface {
	MessageKey() string
	MessageArgs() []any
}

// Text renders err through b. Errors that do not carry a message key are
// rendered with their Error text.
func Text(b Bundle, tag language.Tag, err error) string {
	var keyed Keyed
	if b != nil && errors.As(err, &keyed) {
		return b.MessageFor(tag, keyed.MessageKey(), keyed.MessageArgs()...)
	}
	return err.Error()
}
