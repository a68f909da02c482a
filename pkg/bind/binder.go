package bind

import (
	"io"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/text/language"

	"github.com/aretw0/mold/pkg/convert"
	"github.com/aretw0/mold/pkg/metrics"
	"github.com/aretw0/mold/pkg/typedesc"
)

// Params is a flat request parameter map. Keys are dotted paths; a key may
// carry several values, which bind to slice fields.
type Params map[string][]string

// Binder writes converted parameters into object graphs.
type Binder struct {
	convs   *convert.Registry
	types   *typedesc.Registry
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger. Ignored parameters are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithMetrics records conversions and bind calls.
func WithMetrics(m *metrics.Recorder) Option {
	return func(b *Binder) {
		b.metrics = m
	}
}

// New creates a Binder.
func New(convs *convert.Registry, types *typedesc.Registry, opts ...Option) *Binder {
	b := &Binder{
		convs:  convs,
		types:  types,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind binds every parameter under name into target, which must be a
// non-nil pointer or map. An empty name stands for the lowercased type name
// of target, so client.id binds the ID field of a *Client.
//
// Keys are processed in sorted order. A failing parameter does not stop its
// siblings; all failures are returned together as *Errors. Keys outside name,
// malformed keys and keys naming no field are ignored.
func (b *Binder) Bind(name string, target any, params Params, tag language.Tag) error {
	root, err := rootOf(target)
	if err != nil {
		return err
	}
	if name == "" {
		name = typedesc.SimpleName(root.Type())
	}
	prefix := name + "."

	keys := lo.Filter(lo.Keys(map[string][]string(params)), func(k string, _ int) bool {
		return strings.HasPrefix(k, prefix)
	})
	slices.Sort(keys)
	if skipped := len(params) - len(keys); skipped > 0 {
		b.logger.Debug("parameters outside root ignored", "root", name, "count", skipped)
	}

	var failures []*FieldError
	for _, k := range keys {
		key, err := ParseKey(strings.TrimPrefix(k, prefix))
		if err == nil {
			err = b.bind(root, key, params[k], tag)
		}
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrUnknownKey), errors.Is(err, convert.ErrNoConverter):
			b.logger.Debug("parameter ignored", "key", k, "error", err)
		default:
			failures = append(failures, &FieldError{Key: k, Err: err})
		}
	}

	b.metrics.Binding(name, len(failures) > 0)
	if len(failures) > 0 {
		return &Errors{Fields: failures}
	}
	return nil
}

// BindNested converts raw and stores it at key, relative to graph.
// Intermediate pointers, maps and slices are created as needed. A nil raw
// value stores the zero value of the leaf.
func (b *Binder) BindNested(graph any, key string, raw *string, tag language.Tag) error {
	root, err := rootOf(graph)
	if err != nil {
		return err
	}
	k, err := ParseKey(key)
	if err != nil {
		return err
	}
	var values []string
	if raw != nil {
		values = []string{*raw}
	}
	return b.bind(root, k, values, tag)
}

func rootOf(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if !v.IsNil() {
			return v, nil
		}
	}
	return reflect.Value{}, errors.Wrapf(ErrInvalidTarget, "%T", target)
}

func (b *Binder) bind(root reflect.Value, key Key, values []string, tag language.Tag) error {
	return b.step(root, key, 0, values, tag)
}

// step resolves segment i of key on v, the value reached by the previous
// segments.
func (b *Binder) step(v reflect.Value, key Key, i int, values []string, tag language.Tag) error {
	path := ""
	if i > 0 {
		path = key.upTo(i - 1)
	}
	v, err := settle(v, path)
	if err != nil {
		return err
	}

	seg := key.Segments[i]
	switch v.Kind() {
	case reflect.Struct:
		f, ok := b.types.Describe(v.Type()).Field(seg.Name)
		if !ok {
			return errors.Wrapf(ErrUnknownKey, "%s", key.upTo(i))
		}
		fv, err := fieldByIndex(v, f.Index, key.upTo(i))
		if err != nil {
			return err
		}
		return b.slot(fv, key, i, values, tag)

	case reflect.Map:
		mt := v.Type()
		if mt.Key().Kind() != reflect.String {
			return errors.Wrapf(ErrUnknownKey, "%s", key.upTo(i))
		}
		if v.IsNil() {
			if !v.CanSet() {
				return &MissingIntermediate{Path: path, Type: mt}
			}
			v.Set(reflect.MakeMap(mt))
		}
		mk := reflect.ValueOf(seg.Name).Convert(mt.Key())
		// map entries are not addressable: update a copy and store it back
		elem := reflect.New(mt.Elem()).Elem()
		if cur := v.MapIndex(mk); cur.IsValid() {
			elem.Set(cur)
		}
		if err := b.slot(elem, key, i, values, tag); err != nil {
			return err
		}
		v.SetMapIndex(mk, elem)
		return nil
	}
	return errors.Wrapf(ErrUnknownKey, "%s", key.upTo(i))
}

// slot continues from the value named by segment i.
func (b *Binder) slot(fv reflect.Value, key Key, i int, values []string, tag language.Tag) error {
	if key.Segments[i].Indexed {
		var err error
		if fv, err = element(fv, key, i); err != nil {
			return err
		}
	}
	if i == len(key.Segments)-1 {
		return b.assign(fv, key.String(), values, tag)
	}
	return b.step(fv, key, i+1, values, tag)
}

func (b *Binder) assign(fv reflect.Value, path string, values []string, tag language.Tag) error {
	t := fv.Type()
	switch {
	case b.convs.Supports(t):
		var raw *string
		if len(values) > 0 {
			raw = &values[0]
		}
		v, err := b.convs.Convert(raw, t, tag)
		b.record(t, err)
		if err != nil {
			return err
		}
		fv.Set(v)

	case t.Kind() == reflect.Slice && b.convs.Supports(t.Elem()):
		if lo.EveryBy(values, isBlank) {
			fv.Set(reflect.Zero(t))
			return nil
		}
		out := reflect.MakeSlice(t, 0, len(values))
		for _, raw := range values {
			v, err := b.convs.ConvertString(raw, t.Elem(), tag)
			b.record(t.Elem(), err)
			if err != nil {
				return err
			}
			out = reflect.Append(out, v)
		}
		fv.Set(out)

	case t.Kind() == reflect.Interface && t.NumMethod() == 0:
		switch {
		case lo.EveryBy(values, isBlank):
			fv.Set(reflect.Zero(t))
		case len(values) == 1:
			fv.Set(reflect.ValueOf(values[0]))
		default:
			fv.Set(reflect.ValueOf(slices.Clone(values)))
		}

	default:
		return errors.Wrapf(convert.ErrNoConverter, "%s (%s)", path, t)
	}
	return nil
}

func (b *Binder) record(t reflect.Type, err error) {
	if b.metrics == nil {
		return
	}
	key := ""
	if err != nil {
		key = "error"
		var inv *convert.InvalidFormat
		if errors.As(err, &inv) {
			key = inv.Key
		}
	}
	b.metrics.Conversion(b.types.KindOf(t).String(), key)
}

// settle dereferences pointers and interfaces down to a struct or map,
// allocating nil pointers on the way. A nil empty interface becomes a
// map[string]any.
func settle(v reflect.Value, path string) (reflect.Value, error) {
	for {
		switch v.Kind() {
		case reflect.Pointer:
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, &MissingIntermediate{Path: path, Type: v.Type()}
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		case reflect.Interface:
			if v.IsNil() {
				if v.Type().NumMethod() != 0 || !v.CanSet() {
					return reflect.Value{}, &MissingIntermediate{Path: path, Type: v.Type()}
				}
				v.Set(reflect.ValueOf(map[string]any{}))
			}
			inner := v.Elem()
			if inner.Kind() != reflect.Pointer && inner.Kind() != reflect.Map {
				return reflect.Value{}, &MissingIntermediate{Path: path, Type: inner.Type()}
			}
			v = inner
		case reflect.Func, reflect.Chan, reflect.UnsafePointer:
			return reflect.Value{}, &MissingIntermediate{Path: path, Type: v.Type()}
		default:
			return v, nil
		}
	}
}

// fieldByIndex is reflect.Value.FieldByIndex, allocating nil embedded
// pointers.
func fieldByIndex(v reflect.Value, index []int, path string) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, &MissingIntermediate{Path: path, Type: v.Type()}
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, nil
}

// element returns the slice or array element addressed by segment i,
// growing slices to fit.
func element(fv reflect.Value, key Key, i int) (reflect.Value, error) {
	path := key.upTo(i)
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			if !fv.CanSet() {
				return reflect.Value{}, &MissingIntermediate{Path: path, Type: fv.Type()}
			}
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}

	idx := key.Segments[i].Index
	switch fv.Kind() {
	case reflect.Slice:
		if idx >= fv.Len() {
			if !fv.CanSet() {
				return reflect.Value{}, &MissingIntermediate{Path: path, Type: fv.Type()}
			}
			grown := reflect.MakeSlice(fv.Type(), idx+1, idx+1)
			reflect.Copy(grown, fv)
			fv.Set(grown)
		}
		return fv.Index(idx), nil
	case reflect.Array:
		if idx < fv.Len() {
			return fv.Index(idx), nil
		}
	}
	return reflect.Value{}, errors.Wrapf(ErrUnknownKey, "%s", path)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
