package typedesc

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrUnknownType is returned when a rule file references a type name that was
// never registered with Name.
var ErrUnknownType = errors.New("unknown type")

// Visibility is the type-level serialization state of a field.
type Visibility int

const (
	// Visible fields follow the include/exclude rules of each call.
	Visible Visibility = iota
	// SkipAlways fields are never serialized.
	SkipAlways
)

// Field is one serializable field of a struct type.
type Field struct {
	// Name is the external name used in parameter keys and serialized output.
	Name string
	// GoName is the Go identifier of the field.
	GoName     string
	Index      []int
	Target     Target
	Visibility Visibility
	// Since is the minimum version that emits the field. It is only
	// meaningful when HasSince is set.
	Since    float64
	HasSince bool
}

// Type is the cached description of a struct type.
type Type struct {
	GoType reflect.Type
	// Name is the lowercased simple name of the type, used as the default root
	// name when serializing.
	Name   string
	Fields []Field
	byName map[string]int
}

// Field returns the field with the given external name. Go names are matched
// as a fallback, case-insensitively.
func (t *Type) Field(name string) (Field, bool) {
	if i, ok := t.byName[name]; ok {
		return t.Fields[i], true
	}
	for _, f := range t.Fields {
		if strings.EqualFold(f.GoName, name) || strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Registry holds type descriptions and the rules applied to them.
type Registry struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*Type
	rules map[reflect.Type]*Rules
	enums map[reflect.Type]*EnumDesc
	names map[string]reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[reflect.Type]*Type),
		rules: make(map[reflect.Type]*Rules),
		enums: make(map[reflect.Type]*EnumDesc),
		names: make(map[string]reflect.Type),
	}
}

// Name registers a symbolic name for the type of v, used by rule files.
func (r *Registry) Name(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = indirectType(reflect.TypeOf(v))
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.names[name]
	return t, ok
}

// Names returns every registered symbolic name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	return out
}

// Describe returns the description of a struct type. Pointer types are
// dereferenced. Non-struct types get a description with no fields.
func (r *Registry) Describe(t reflect.Type) *Type {
	t = indirectType(t)

	r.mu.RLock()
	desc, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return desc
	}

	desc = r.build(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[t]; ok {
		return cached
	}
	r.cache[t] = desc
	return desc
}

// DescribeValue is Describe for the dynamic type of v.
func (r *Registry) DescribeValue(v any) *Type {
	return r.Describe(reflect.TypeOf(v))
}

func (r *Registry) build(t reflect.Type) *Type {
	desc := &Type{
		GoType: t,
		Name:   SimpleName(t),
		byName: make(map[string]int),
	}
	if t.Kind() != reflect.Struct || r.KindOf(t) != KindStruct {
		return desc
	}

	r.mu.RLock()
	var rules *Rules
	if src, ok := r.rules[t]; ok {
		rules = src.clone()
	}
	r.mu.RUnlock()

	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && indirectType(sf.Type).Kind() == reflect.Struct {
			// promoted fields are listed on their own
			continue
		}
		name, skip := fieldName(sf)
		f := Field{
			Name:   name,
			GoName: sf.Name,
			Index:  sf.Index,
			Target: r.Target(sf.Type),
		}
		if skip {
			f.Visibility = SkipAlways
		}
		if rules != nil {
			rules.apply(&f)
		}
		if _, dup := desc.byName[f.Name]; dup {
			continue
		}
		desc.byName[f.Name] = len(desc.Fields)
		desc.Fields = append(desc.Fields, f)
	}
	return desc
}

func (r *Registry) invalidate(t reflect.Type) {
	delete(r.cache, t)
	// Targets of other cached types may embed the old classification.
	for k, d := range r.cache {
		for _, f := range d.Fields {
			if indirectType(f.Target.Base) == t || (f.Target.Elem != nil && indirectType(f.Target.Elem.Type) == t) {
				delete(r.cache, k)
				break
			}
		}
	}
}

// fieldName derives the external name from the json tag, falling back to
// the lowerCamel form of the Go name. A "-" tag marks the field SkipAlways.
func fieldName(sf reflect.StructField) (string, bool) {
	if tag, ok := sf.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return lowerCamel(sf.Name), true
		}
		if name != "" {
			return name, false
		}
	}
	return lowerCamel(sf.Name), false
}

// lowerCamel lowercases the leading upper-case run of an identifier, keeping
// the last capital of a run that starts a new word: ID -> id, URLPath -> urlPath.
func lowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(runes):
		for i := 0; i < n; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	default:
		for i := 0; i < n-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

// SimpleName is the lowercased name of a type without package qualifier.
// Unnamed types use their kind.
func SimpleName(t reflect.Type) string {
	t = indirectType(t)
	if t == nil {
		return ""
	}
	name := t.Name()
	if name == "" {
		name = t.Kind().String()
	}
	if i := strings.IndexByte(name, '['); i > 0 {
		// generic instantiation: Page[pkg.Client] -> page
		name = name[:i]
	}
	return strings.ToLower(name)
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// IsIdentifier reports whether s is a valid parameter or field segment.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}
	for _, c := range s {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return true
}
