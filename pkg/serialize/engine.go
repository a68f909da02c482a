package serialize

import (
	"bytes"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aretw0/mold/pkg/metrics"
	"github.com/aretw0/mold/pkg/typedesc"
)

type writer func(buf *bytes.Buffer, root string, n *node, indented bool) error

var writers = map[Format]writer{
	FormatJSON: writeJSON,
	FormatXML:  writeXML,
	FormatYAML: writeYAML,
}

// Engine serializes object graphs. It is safe for concurrent use; each call
// works on its own state.
type Engine struct {
	types    *typedesc.Registry
	defaults Defaults
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaults sets the environment defaults.
func WithDefaults(d Defaults) Option {
	return func(e *Engine) {
		e.defaults = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records serialize calls.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an Engine reading type metadata from types.
func NewEngine(types *typedesc.Registry, opts ...Option) *Engine {
	e := &Engine{
		types:  types,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.defaults = e.defaults.withFallbacks()
	return e
}

// Defaults returns the environment defaults in effect.
func (e *Engine) Defaults() Defaults {
	return e.defaults
}

// Serialize renders root with opts.
func (e *Engine) Serialize(root any, opts Options) (string, error) {
	return e.run(root, opts.RootName, planFromOptions(opts), opts.layout(), opts.Format)
}

// From starts a fluent session on root. An optional name sets the root name.
func (e *Engine) From(root any, name ...string) *Session {
	s := &Session{engine: e, root: root, rootName: RootAuto, plan: &plan{}}
	if len(name) > 0 {
		s.rootName = name[0]
	}
	return s
}

func (e *Engine) run(root any, rootName string, p *plan, l layout, format Format) (out string, err error) {
	if format == "" {
		format = e.defaults.Format
	}
	indented := l == layoutIndented || (l == layoutDefault && e.defaults.Indented)

	start := time.Now()
	defer func() {
		e.metrics.Serialization(string(format), err != nil, time.Since(start))
		if err != nil {
			e.logger.Debug("serialize failed", "format", string(format), "error", err)
		}
	}()

	write, ok := writers[format]
	if !ok {
		return "", errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	v := reflect.ValueOf(root)
	base := indirect(v)
	if !base.IsValid() {
		return "", fail("", ErrNilRoot)
	}

	collection := base.Kind() == reflect.Slice || base.Kind() == reflect.Array
	name := rootName
	switch {
	case rootName == RootNone:
		if collection {
			return "", fail("", ErrRootlessCollection)
		}
		name = ""
	case rootName == RootAuto && collection:
		name = CollectionRoot
	case rootName == RootAuto:
		name = e.types.Describe(base.Type()).Name
	}

	w := &walker{
		types:    e.types,
		plan:     p,
		format:   format,
		defaults: e.defaults,
		stack:    make(map[visit]bool),
	}
	n, err := w.value(v, "", false)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := write(&buf, name, n, indented); err != nil {
		var serr *SerializationError
		if errors.As(err, &serr) {
			return "", err
		}
		return "", fail("", err)
	}
	return buf.String(), nil
}

// indirect follows pointers and interfaces. It returns the zero Value when
// it meets a nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
