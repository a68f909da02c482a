package typedesc

import (
	"reflect"
	"strings"
)

// Rules are the explicit per-type serialization rules of one struct type.
type Rules struct {
	registry *Registry
	typ      reflect.Type
	skip     map[string]bool
	since    map[string]float64
	rename   map[string]string
}

// For returns the rule builder of v's type, creating it on first use.
func (r *Registry) For(v any) *Rules {
	return r.RulesOf(reflect.TypeOf(v))
}

// RulesOf returns the rule builder of t.
func (r *Registry) RulesOf(t reflect.Type) *Rules {
	t = indirectType(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if rules, ok := r.rules[t]; ok {
		return rules
	}
	rules := &Rules{
		registry: r,
		typ:      t,
		skip:     make(map[string]bool),
		since:    make(map[string]float64),
		rename:   make(map[string]string),
	}
	r.rules[t] = rules
	return rules
}

// Skip marks fields as never serialized. Fields are named by their external
// or Go name.
func (b *Rules) Skip(fields ...string) *Rules {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	for _, f := range fields {
		b.skip[strings.ToLower(f)] = true
	}
	b.registry.invalidate(b.typ)
	return b
}

// Since sets the minimum version that emits field.
func (b *Rules) Since(field string, version float64) *Rules {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.since[strings.ToLower(field)] = version
	b.registry.invalidate(b.typ)
	return b
}

// Rename changes the external name of a field.
func (b *Rules) Rename(field, name string) *Rules {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.rename[strings.ToLower(field)] = name
	b.registry.invalidate(b.typ)
	return b
}

// clone copies the rule maps. The caller holds the registry lock.
func (b *Rules) clone() *Rules {
	c := &Rules{
		typ:    b.typ,
		skip:   make(map[string]bool, len(b.skip)),
		since:  make(map[string]float64, len(b.since)),
		rename: make(map[string]string, len(b.rename)),
	}
	for k, v := range b.skip {
		c.skip[k] = v
	}
	for k, v := range b.since {
		c.since[k] = v
	}
	for k, v := range b.rename {
		c.rename[k] = v
	}
	return c
}

func (b *Rules) apply(f *Field) {
	keys := []string{strings.ToLower(f.GoName), strings.ToLower(f.Name)}
	for _, k := range keys {
		if name, ok := b.rename[k]; ok {
			f.Name = name
			break
		}
	}
	keys = append(keys, strings.ToLower(f.Name))
	for _, k := range keys {
		if b.skip[k] {
			f.Visibility = SkipAlways
		}
		if v, ok := b.since[k]; ok {
			f.Since = v
			f.HasSince = true
		}
	}
}
