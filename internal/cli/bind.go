package cli

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/internal/presentation/tui"
	"github.com/aretw0/mold/pkg/bind"
	"github.com/aretw0/mold/pkg/serialize"
)

// ErrBindFailed is returned after binding failures have been reported.
var ErrBindFailed = errors.New("binding failed")

// BindOptions contains the configuration of the bind command.
type BindOptions struct {
	Type      string
	Args      []string // key=value pairs
	Locale    language.Tag
	Include   []string
	Exclude   []string
	Recursive bool
	Version   float64
	Versioned bool
	Format    serialize.Format
	Indented  bool
	Compact   bool
}

// ParseArgs turns key=value arguments into parameters. Repeated keys
// accumulate their values.
func ParseArgs(args []string) (bind.Params, error) {
	params := make(bind.Params, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid argument %q, expected key=value", arg)
		}
		params[key] = append(params[key], value)
	}
	return params, nil
}

// RunBind binds the arguments into a new value of the named type and writes
// it to out. Binding failures are written to errOut, one line per
// parameter.
func RunBind(m *mold.Mold, opts BindOptions, out, errOut io.Writer) error {
	typ, ok := m.Types().Lookup(opts.Type)
	if !ok {
		return errors.Newf("unknown type %q", opts.Type)
	}
	params, err := ParseArgs(opts.Args)
	if err != nil {
		return err
	}

	target := reflect.New(typ)
	if err := m.Bind(opts.Type, target.Interface(), params, opts.Locale); err != nil {
		var errs *bind.Errors
		if !errors.As(err, &errs) {
			return err
		}
		for _, msg := range m.Localize(err, opts.Locale) {
			fmt.Fprintf(errOut, "%s: %s\n", tui.Label(msg.Category), msg.Text)
		}
		return ErrBindFailed
	}

	s := m.From(target.Interface(), opts.Type).
		Include(opts.Include...).
		Exclude(opts.Exclude...)
	if opts.Recursive {
		s.Recursive()
	}
	if opts.Versioned {
		s.Version(opts.Version)
	}
	if opts.Format != "" {
		s.As(opts.Format)
	}
	switch {
	case opts.Indented:
		s.Indented()
	case opts.Compact:
		s.Compact()
	}
	body, err := s.Serialize()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, body)
	return err
}
