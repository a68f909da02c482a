package typedesc

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// EnumDesc is the set of names a declared enum type accepts. Integer enums
// map names to their ordinal position; string enums map names to themselves.
type EnumDesc struct {
	Type  reflect.Type
	Names []string
	index map[string]int
}

// Enum declares the type of v as an enum with the given names, in ordinal
// order. v must have an integer or string underlying type.
func (r *Registry) Enum(v any, names ...string) error {
	return r.EnumOf(reflect.TypeOf(v), names...)
}

// EnumOf is Enum for a reflect.Type.
func (r *Registry) EnumOf(t reflect.Type, names ...string) error {
	switch t.Kind() {
	case reflect.String, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return errors.Newf("enum %s: underlying kind %s is not integer or string", t, t.Kind())
	}
	if len(names) == 0 {
		return errors.Newf("enum %s: no names", t)
	}

	desc := &EnumDesc{Type: t, Names: append([]string(nil), names...), index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := desc.index[n]; dup {
			return errors.Newf("enum %s: duplicate name %q", t, n)
		}
		desc.index[n] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[t] = desc
	r.invalidate(t)
	return nil
}

// EnumFor returns the enum declared for t.
func (r *Registry) EnumFor(t reflect.Type) (*EnumDesc, bool) {
	return r.enum(t)
}

func (r *Registry) enum(t reflect.Type) (*EnumDesc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.enums[t]
	return desc, ok
}

// Parse returns the enum value named name. An exact match wins over a
// case-insensitive one.
func (e *EnumDesc) Parse(name string) (reflect.Value, bool) {
	i, ok := e.index[name]
	if !ok {
		for n, j := range e.index {
			if strings.EqualFold(n, name) {
				i, ok = j, true
				break
			}
		}
	}
	if !ok {
		return reflect.Value{}, false
	}

	v := reflect.New(e.Type).Elem()
	switch e.Type.Kind() {
	case reflect.String:
		v.SetString(e.Names[i])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(i))
	default:
		v.SetInt(int64(i))
	}
	return v, true
}

// NameOf returns the name of an enum value.
func (e *EnumDesc) NameOf(v reflect.Value) (string, bool) {
	var i int
	switch v.Kind() {
	case reflect.String:
		s := v.String()
		_, ok := e.index[s]
		return s, ok
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i = int(v.Uint())
	default:
		i = int(v.Int())
	}
	if i < 0 || i >= len(e.Names) {
		return "", false
	}
	return e.Names[i], true
}
