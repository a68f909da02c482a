package mold

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"github.com/aretw0/mold/pkg/bind"
	"github.com/aretw0/mold/pkg/convert"
	"github.com/aretw0/mold/pkg/message"
	"github.com/aretw0/mold/pkg/metrics"
	"github.com/aretw0/mold/pkg/serialize"
	"github.com/aretw0/mold/pkg/typedesc"
)

// Mold is the high-level entry point of the library. It owns the type
// registry, the converter table, the binder, the serializer engine and the
// message catalog, and wires them together.
//
// A Mold is safe for concurrent use once New returns.
type Mold struct {
	types    *typedesc.Registry
	convs    *convert.Registry
	binder   *bind.Binder
	engine   *serialize.Engine
	messages *message.Catalog
	locale   language.Tag
	defaults serialize.Defaults
	logger   *slog.Logger
	registry prometheus.Registerer
	metrics  *metrics.Recorder

	rules      []func(*typedesc.Registry) error
	converters []override
}

type override struct {
	typ  reflect.Type
	conv convert.Converter
}

// Option defines a functional option for configuring a Mold.
type Option func(*Mold)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mold) {
		m.logger = logger
	}
}

// WithLocale sets the locale used when a call passes language.Und.
// Defaults to English.
func WithLocale(tag language.Tag) Option {
	return func(m *Mold) {
		m.locale = tag
	}
}

// WithDefaults sets the serializer environment defaults.
func WithDefaults(d serialize.Defaults) Option {
	return func(m *Mold) {
		m.defaults = d
	}
}

// WithConverter binds conv to typ above the built-in converters.
func WithConverter(typ reflect.Type, conv convert.Converter) Option {
	return func(m *Mold) {
		m.converters = append(m.converters, override{typ: typ, conv: conv})
	}
}

// WithRules registers type names, enums and field rules before the
// registries are frozen. Options run in order.
func WithRules(setup func(*typedesc.Registry) error) Option {
	return func(m *Mold) {
		m.rules = append(m.rules, setup)
	}
}

// WithRuleFile loads a YAML rule file. Type names used in the file must be
// registered by an earlier WithRules.
func WithRuleFile(r io.Reader) Option {
	return WithRules(func(types *typedesc.Registry) error {
		return types.LoadRules(r)
	})
}

// WithMetrics registers the mold instruments with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Mold) {
		m.registry = reg
	}
}

// New creates a Mold. Converter bindings are frozen before it returns.
func New(opts ...Option) (*Mold, error) {
	m := &Mold{
		types:  typedesc.NewRegistry(),
		locale: language.English,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry != nil {
		m.metrics = metrics.New(m.registry)
	}

	for _, setup := range m.rules {
		if err := setup(m.types); err != nil {
			return nil, errors.Wrap(err, "failed to apply type rules")
		}
	}

	m.convs = convert.NewRegistry(m.types, convert.WithLogger(m.logger))
	for _, o := range m.converters {
		if err := m.convs.Override(o.typ, o.conv); err != nil {
			return nil, errors.Wrapf(err, "failed to bind converter for %s", o.typ)
		}
	}
	m.convs.Freeze()

	catalog, err := message.NewCatalog(message.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	m.messages = catalog

	m.binder = bind.New(m.convs, m.types,
		bind.WithLogger(m.logger),
		bind.WithMetrics(m.metrics),
	)
	m.engine = serialize.NewEngine(m.types,
		serialize.WithDefaults(m.defaults),
		serialize.WithLogger(m.logger),
		serialize.WithMetrics(m.metrics),
	)

	m.logger.Debug("mold initialized", "locale", m.locale.String(), "types", len(m.types.Names()))
	return m, nil
}

func (m *Mold) tag(tag language.Tag) language.Tag {
	if tag == language.Und {
		return m.locale
	}
	return tag
}

// Bind binds every parameter under name into target. See bind.Binder.Bind.
func (m *Mold) Bind(name string, target any, params bind.Params, tag language.Tag) error {
	return m.binder.Bind(name, target, params, m.tag(tag))
}

// BindNested converts raw and stores it at key inside graph.
func (m *Mold) BindNested(graph any, key string, raw *string, tag language.Tag) error {
	return m.binder.BindNested(graph, key, raw, m.tag(tag))
}

// Serialize renders root with opts.
func (m *Mold) Serialize(root any, opts serialize.Options) (string, error) {
	return m.engine.Serialize(root, opts)
}

// From starts a serialization session for root.
func (m *Mold) From(root any, name ...string) *serialize.Session {
	return m.engine.From(root, name...)
}

// Localize renders err for display. Binding failures give one message per
// parameter; any other error gives a single message without category.
func (m *Mold) Localize(err error, tag language.Tag) []message.Message {
	if err == nil {
		return nil
	}
	tag = m.tag(tag)
	var errs *bind.Errors
	if errors.As(err, &errs) {
		return errs.Localize(m.messages, tag)
	}
	return []message.Message{{Text: message.Text(m.messages, tag, err)}}
}

// Defaults returns the serializer defaults in effect.
func (m *Mold) Defaults() serialize.Defaults {
	return m.engine.Defaults()
}

// Messages returns the message catalog. Overrides may be added at any time.
func (m *Mold) Messages() *message.Catalog {
	return m.messages
}

// Types returns the type registry.
func (m *Mold) Types() *typedesc.Registry {
	return m.types
}

// Converters returns the frozen converter table.
func (m *Mold) Converters() *convert.Registry {
	return m.convs
}

// Locale returns the default locale.
func (m *Mold) Locale() language.Tag {
	return m.locale
}
