package convert

import (
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"

	"github.com/aretw0/mold/pkg/typedesc"
)

// Priorities of the binding table. Higher wins.
const (
	PriorityBuiltin  = 0
	PriorityDefault  = 50
	PriorityOverride = 100
)

var (
	// ErrFrozen is returned by Register after Freeze.
	ErrFrozen = errors.New("converter registry is frozen")
	// ErrNoConverter is returned when no converter is bound to a type.
	ErrNoConverter = errors.New("no converter bound to type")
)

type binding struct {
	conv     Converter
	priority int
	seq      int
}

// Registry binds converters to concrete types. Each type keeps a list of
// candidates; the one with the highest priority is active, the most recent
// winning ties. A converter bound to a type never serves any other type.
type Registry struct {
	mu     sync.RWMutex
	frozen atomic.Bool
	seq    int
	table  map[reflect.Type][]binding
	active map[reflect.Type]Converter
	types  *typedesc.Registry
	enum   Converter
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for binding decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry returns a registry holding the built-in converters. Enums are
// resolved through types.
func NewRegistry(types *typedesc.Registry, opts ...Option) *Registry {
	r := &Registry{
		table:  make(map[reflect.Type][]binding),
		active: make(map[reflect.Type]Converter),
		types:  types,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.enum = EnumOf(types)
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	for _, v := range []any{int(0), int8(0), int16(0), int32(0), int64(0), uint(0), uint8(0), uint16(0), uint32(0), uint64(0)} {
		r.mustRegister(reflect.TypeOf(v), Integer, PriorityBuiltin)
	}
	r.mustRegister(reflect.TypeOf(float32(0)), Number, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(float64(0)), Number, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(&big.Int{}), BigInteger, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(&big.Float{}), BigNumber, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(false), Boolean, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(""), String, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(typedesc.Char(0)), Character, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(typedesc.Date{}), DateOnly, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(typedesc.TimeOfDay{}), TimeOnly, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(time.Time{}), DateTime, PriorityBuiltin)
	r.mustRegister(reflect.TypeOf(time.Duration(0)), Duration, PriorityBuiltin)
}

func (r *Registry) mustRegister(t reflect.Type, c Converter, priority int) {
	if err := r.Register(t, c, priority); err != nil {
		panic(err)
	}
}

// Register binds c to t with the given priority.
func (r *Registry) Register(t reflect.Type, c Converter, priority int) error {
	if t == nil || c == nil {
		return errors.New("convert: type and converter are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return errors.Wrapf(ErrFrozen, "register %s", t)
	}

	r.seq++
	r.table[t] = append(r.table[t], binding{conv: c, priority: priority, seq: r.seq})
	best := slices.MaxFunc(r.table[t], func(a, b binding) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})
	r.active[t] = best.conv
	r.logger.Debug("converter bound", "type", t.String(), "priority", best.priority, "candidates", len(r.table[t]))
	return nil
}

// Override binds c to t above every built-in and default binding.
func (r *Registry) Override(t reflect.Type, c Converter) error {
	return r.Register(t, c, PriorityOverride)
}

// Freeze seals the table. Lookups after Freeze take no lock.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Resolve returns the active converter of t. Declared enums resolve to the
// enum converter unless a converter is bound to the type itself.
func (r *Registry) Resolve(t reflect.Type) (Converter, bool) {
	c, ok := r.lookup(t)
	if ok {
		return c, true
	}
	if _, ok := r.types.EnumFor(t); ok {
		return r.enum, true
	}
	return nil, false
}

func (r *Registry) lookup(t reflect.Type) (Converter, bool) {
	if r.frozen.Load() {
		// the table never changes once frozen
		c, ok := r.active[t]
		return c, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.active[t]
	return c, ok
}

// Convert turns raw into a value of target. A nil or blank raw value yields
// the zero value of target: the type's zero for primitives and nil for
// pointers, slices, maps and interfaces.
func (r *Registry) Convert(raw *string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	if raw == nil || isBlank(*raw) {
		return reflect.Zero(target), nil
	}
	return r.ConvertString(*raw, target, tag)
}

// ConvertString converts a present raw value.
func (r *Registry) ConvertString(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	if isBlank(raw) {
		return reflect.Zero(target), nil
	}
	if c, ok := r.Resolve(target); ok {
		return r.call(c, raw, target, tag)
	}
	if target.Kind() == reflect.Pointer {
		c, ok := r.Resolve(target.Elem())
		if !ok {
			return reflect.Value{}, errors.Wrapf(ErrNoConverter, "%s", target)
		}
		v, err := r.call(c, raw, target.Elem(), tag)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(v)
		return ptr, nil
	}
	return reflect.Value{}, errors.Wrapf(ErrNoConverter, "%s", target)
}

func (r *Registry) call(c Converter, raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	v, err := c.Convert(raw, target, tag)
	if err != nil {
		var inv *InvalidFormat
		if !errors.As(err, &inv) {
			err = &InvalidFormat{Key: keyFor(r.types.KindOf(target)), Raw: raw, Err: err}
		}
		return reflect.Value{}, err
	}
	if !v.IsValid() || !v.Type().AssignableTo(target) {
		if v.IsValid() && v.Type().ConvertibleTo(target) {
			return v.Convert(target), nil
		}
		return reflect.Value{}, errors.Newf("convert: converter for %s returned %s", target, v.Type())
	}
	return v, nil
}

// Supports reports whether target can be converted.
func (r *Registry) Supports(target reflect.Type) bool {
	if _, ok := r.Resolve(target); ok {
		return true
	}
	if target.Kind() == reflect.Pointer {
		_, ok := r.Resolve(target.Elem())
		return ok
	}
	return false
}

// To converts raw into a T.
func To[T any](r *Registry, raw string, tag language.Tag) (T, error) {
	var zero T
	v, err := r.ConvertString(raw, reflect.TypeOf(&zero).Elem(), tag)
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

func keyFor(k typedesc.Kind) string {
	switch k {
	case typedesc.KindInt, typedesc.KindUint, typedesc.KindBigInt:
		return KeyInteger
	case typedesc.KindChar:
		return KeyChar
	case typedesc.KindEnum:
		return KeyEnum
	case typedesc.KindDate:
		return KeyDate
	case typedesc.KindBool:
		return KeyBoolean
	case typedesc.KindTime, typedesc.KindDuration:
		return KeyTime
	case typedesc.KindDateTime:
		return KeyDateTime
	}
	return KeyNumber
}
