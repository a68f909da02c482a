package serialize

import (
	"encoding"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/aretw0/mold/pkg/typedesc"
)

// maxDepth bounds the nesting of the object graph.
const maxDepth = 128

type nodeKind int

const (
	nullNode nodeKind = iota
	stringNode
	numberNode
	boolNode
	objectNode
	listNode
)

// node is the format-independent form of a serialized value. Writers only
// see nodes, so a failure while walking the graph never leaves partial
// output behind.
type node struct {
	kind nodeKind
	text string
	// typeName names list elements in formats that need element names.
	typeName string
	members  []member
	items    []*node
}

type member struct {
	name  string
	value *node
}

type visit struct {
	typ reflect.Type
	ptr uintptr
}

type walker struct {
	types    *typedesc.Registry
	plan     *plan
	format   Format
	defaults Defaults
	stack    map[visit]bool
	depth    int
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// value converts v, found at path, into a node.
func (w *walker) value(v reflect.Value, path string, inherited bool) (*node, error) {
	if !v.IsValid() {
		return &node{kind: nullNode}, nil
	}
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > maxDepth {
		return nil, fail(path, errors.Wrapf(ErrCycle, "nesting deeper than %d", maxDepth))
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return &node{kind: nullNode}, nil
		}
		if v.Kind() == reflect.Pointer {
			key := visit{typ: v.Type(), ptr: v.Pointer()}
			if w.stack[key] {
				return nil, fail(path, ErrCycle)
			}
			w.stack[key] = true
			defer delete(w.stack, key)
		}
		return w.value(v.Elem(), path, inherited)
	}

	kind := w.types.KindOf(v.Type())
	if kind.Primitive() {
		return w.scalar(v, kind, path)
	}
	switch kind {
	case typedesc.KindStruct:
		return w.object(v, path)
	case typedesc.KindSlice:
		return w.list(v, path, inherited)
	case typedesc.KindMap:
		return w.mapping(v, path, inherited)
	}
	return nil, fail(path, errors.Wrapf(ErrUnsupportedValue, "%s", v.Type()))
}

func (w *walker) object(v reflect.Value, path string) (*node, error) {
	desc := w.types.Describe(v.Type())
	n := &node{kind: objectNode, typeName: desc.Name}
	for _, f := range desc.Fields {
		fp := join(path, f.Name)
		emit, explicit := w.plan.field(f, fp)
		if !emit {
			continue
		}
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil || omitted(fv) {
			// nil embedded pointer or nil field
			continue
		}
		child, err := w.value(fv, fp, explicit)
		if err != nil {
			return nil, err
		}
		n.members = append(n.members, member{name: f.Name, value: child})
	}
	return n, nil
}

func (w *walker) list(v reflect.Value, path string, inherited bool) (*node, error) {
	if v.Kind() == reflect.Slice && v.Len() > 0 {
		key := visit{typ: v.Type(), ptr: v.Pointer()}
		if w.stack[key] {
			return nil, fail(path, ErrCycle)
		}
		w.stack[key] = true
		defer delete(w.stack, key)
	}
	n := &node{kind: listNode, typeName: typedesc.SimpleName(v.Type().Elem()), items: make([]*node, 0, v.Len())}
	for i := 0; i < v.Len(); i++ {
		item, err := w.value(v.Index(i), path, inherited)
		if err != nil {
			return nil, err
		}
		if item.typeName == "" {
			item.typeName = n.typeName
		}
		n.items = append(n.items, item)
	}
	return n, nil
}

func (w *walker) mapping(v reflect.Value, path string, inherited bool) (*node, error) {
	key := visit{typ: v.Type(), ptr: v.Pointer()}
	if w.stack[key] {
		return nil, fail(path, ErrCycle)
	}
	w.stack[key] = true
	defer delete(w.stack, key)

	type entry struct {
		name  string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		name, err := w.mapKey(iter.Key(), path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: name, value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	n := &node{kind: objectNode, typeName: typedesc.SimpleName(v.Type())}
	for _, e := range entries {
		ep := join(path, e.name)
		primitive := w.types.Target(e.value.Type()).Kind.Primitive()
		if e.value.Kind() == reflect.Interface && !e.value.IsNil() {
			primitive = w.types.KindOf(e.value.Elem().Type()).Primitive()
		}
		emit, explicit := w.plan.entry(ep, primitive, inherited)
		if !emit || omitted(e.value) {
			continue
		}
		child, err := w.value(e.value, ep, explicit)
		if err != nil {
			return nil, err
		}
		n.members = append(n.members, member{name: e.name, value: child})
	}
	return n, nil
}

func (w *walker) mapKey(k reflect.Value, path string) (string, error) {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", fail(path, err)
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.String:
		if !utf8.ValidString(k.String()) {
			return "", fail(path, errors.Wrap(ErrUnsupportedValue, "map key is not valid UTF-8"))
		}
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fail(path, errors.Wrapf(ErrUnsupportedValue, "map key %s", k.Type()))
}

func (w *walker) scalar(v reflect.Value, kind typedesc.Kind, path string) (*node, error) {
	switch kind {
	case typedesc.KindString:
		return checkedText(v.String(), path)
	case typedesc.KindBool:
		return &node{kind: boolNode, text: strconv.FormatBool(v.Bool())}, nil
	case typedesc.KindInt:
		return number(strconv.FormatInt(v.Int(), 10)), nil
	case typedesc.KindUint:
		return number(strconv.FormatUint(v.Uint(), 10)), nil
	case typedesc.KindFloat:
		return w.float(v.Float(), v.Type().Bits(), path)
	case typedesc.KindBigInt:
		n, _ := addressable(v).Interface().(*big.Int)
		return number(n.String()), nil
	case typedesc.KindBigFloat:
		f, _ := addressable(v).Interface().(*big.Float)
		if f.IsInf() {
			if w.format == FormatJSON {
				return nil, fail(path, errors.Wrap(ErrUnsupportedValue, "infinite number"))
			}
			return number(f.String()), nil
		}
		return number(f.Text('g', -1)), nil
	case typedesc.KindChar:
		r := rune(v.Int())
		if !utf8.ValidRune(r) {
			return nil, fail(path, errors.Wrapf(ErrUnsupportedValue, "invalid rune %#x", v.Int()))
		}
		return text(string(r)), nil
	case typedesc.KindEnum:
		return w.enum(v, path)
	case typedesc.KindDate:
		d, _ := v.Interface().(typedesc.Date)
		return text(d.Format(time.DateOnly)), nil
	case typedesc.KindTime:
		t, _ := v.Interface().(typedesc.TimeOfDay)
		return text(t.String()), nil
	case typedesc.KindDateTime:
		t, _ := v.Interface().(time.Time)
		return text(t.Format(w.defaults.DateLayout)), nil
	case typedesc.KindDuration:
		d, _ := v.Interface().(time.Duration)
		return text(d.String()), nil
	case typedesc.KindText:
		tm, ok := addressable(v).Interface().(encoding.TextMarshaler)
		if !ok {
			return nil, fail(path, errors.Wrapf(ErrUnsupportedValue, "%s", v.Type()))
		}
		b, err := tm.MarshalText()
		if err != nil {
			return nil, fail(path, err)
		}
		return checkedText(string(b), path)
	}
	return nil, fail(path, errors.Wrapf(ErrUnsupportedValue, "%s", v.Type()))
}

func (w *walker) enum(v reflect.Value, path string) (*node, error) {
	desc, ok := w.types.EnumFor(v.Type())
	if ok {
		if name, ok := desc.NameOf(v); ok {
			return text(name), nil
		}
	}
	// values outside the declared names keep their underlying form
	switch v.Kind() {
	case reflect.String:
		return checkedText(v.String(), path)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return number(strconv.FormatUint(v.Uint(), 10)), nil
	}
	return number(strconv.FormatInt(v.Int(), 10)), nil
}

func (w *walker) float(f float64, bits int, path string) (*node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		switch w.format {
		case FormatJSON:
			return nil, fail(path, errors.Wrapf(ErrUnsupportedValue, "%v", f))
		case FormatYAML:
			switch {
			case math.IsNaN(f):
				return number(".nan"), nil
			case f > 0:
				return number(".inf"), nil
			}
			return number("-.inf"), nil
		}
		return number(strconv.FormatFloat(f, 'g', -1, bits)), nil
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return number(strconv.FormatFloat(f, format, -1, bits)), nil
}

// checkedText rejects strings that are not valid UTF-8; no output format
// can carry them unchanged.
func checkedText(s, path string) (*node, error) {
	if !utf8.ValidString(s) {
		return nil, fail(path, errors.Wrap(ErrUnsupportedValue, "invalid UTF-8"))
	}
	return text(s), nil
}

func text(s string) *node {
	return &node{kind: stringNode, text: s}
}

func number(s string) *node {
	return &node{kind: numberNode, text: s}
}

// omitted reports whether a field value is left out of the output: nil
// pointers, interfaces, maps and slices.
func omitted(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// addressable returns a pointer to v, copying v when it is not addressable.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}
