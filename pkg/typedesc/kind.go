package typedesc

import (
	"encoding"
	"math/big"
	"reflect"
	"time"
)

// Kind classifies a Go type the way binding and serialization see it.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt
	KindUint
	KindFloat
	KindBigInt
	KindBigFloat
	KindChar
	KindEnum
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindText
	KindStruct
	KindSlice
	KindMap
	KindInterface
	KindUnsupported
)

var kindNames = map[Kind]string{
	KindInvalid:     "invalid",
	KindString:      "string",
	KindBool:        "bool",
	KindInt:         "int",
	KindUint:        "uint",
	KindFloat:       "float",
	KindBigInt:      "bigint",
	KindBigFloat:    "bigfloat",
	KindChar:        "char",
	KindEnum:        "enum",
	KindDate:        "date",
	KindTime:        "time",
	KindDateTime:    "datetime",
	KindDuration:    "duration",
	KindText:        "text",
	KindStruct:      "struct",
	KindSlice:       "slice",
	KindMap:         "map",
	KindInterface:   "interface",
	KindUnsupported: "unsupported",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Primitive reports whether values of this kind serialize as a single scalar
// (string, number, boolean, enum or date).
func (k Kind) Primitive() bool {
	switch k {
	case KindString, KindBool, KindInt, KindUint, KindFloat, KindBigInt, KindBigFloat,
		KindChar, KindEnum, KindDate, KindTime, KindDateTime, KindDuration, KindText:
		return true
	}
	return false
}

// Numeric reports whether the kind is rendered as a number.
func (k Kind) Numeric() bool {
	switch k {
	case KindInt, KindUint, KindFloat, KindBigInt, KindBigFloat:
		return true
	}
	return false
}

var (
	typeTime      = reflect.TypeOf(time.Time{})
	typeDuration  = reflect.TypeOf(time.Duration(0))
	typeDate      = reflect.TypeOf(Date{})
	typeTimeOfDay = reflect.TypeOf(TimeOfDay{})
	typeChar      = reflect.TypeOf(Char(0))
	typeBigInt    = reflect.TypeOf(big.Int{})
	typeBigFloat  = reflect.TypeOf(big.Float{})
	typeMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Target is the semantic description of a conversion or serialization target.
type Target struct {
	// Type is the declared type, e.g. *int64.
	Type reflect.Type
	// Base is Type with one level of pointer removed.
	Base reflect.Type
	Kind Kind
	// Primitive is true for non-pointer scalar targets. Absent input yields
	// their zero value.
	Primitive bool
	// Nullable is true for pointers, interfaces, slices and maps. Absent
	// input yields nil.
	Nullable bool
	// Elem describes the element of slices, arrays and maps.
	Elem *Target
}

// maxElemDepth bounds the element chain of recursive container types.
const maxElemDepth = 8

// Target describes t.
func (r *Registry) Target(t reflect.Type) Target {
	return r.target(t, 0)
}

func (r *Registry) target(t reflect.Type, depth int) Target {
	tg := Target{Type: t, Base: t}
	if t.Kind() == reflect.Pointer {
		tg.Base = t.Elem()
		tg.Nullable = true
	}
	tg.Kind = r.KindOf(tg.Base)

	switch tg.Base.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if (tg.Kind == KindSlice || tg.Kind == KindMap) && depth < maxElemDepth {
			elem := r.target(tg.Base.Elem(), depth+1)
			tg.Elem = &elem
		}
	}
	switch t.Kind() {
	case reflect.Interface, reflect.Slice, reflect.Map:
		tg.Nullable = true
	}
	tg.Primitive = !tg.Nullable && tg.Kind.Primitive()
	return tg
}

// KindOf classifies t. Pointers are not dereferenced.
func (r *Registry) KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindInvalid
	}
	switch t {
	case typeTime:
		return KindDateTime
	case typeDate:
		return KindDate
	case typeTimeOfDay:
		return KindTime
	case typeDuration:
		return KindDuration
	case typeChar:
		return KindChar
	case typeBigInt:
		return KindBigInt
	case typeBigFloat:
		return KindBigFloat
	}
	if _, ok := r.enum(t); ok {
		return KindEnum
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Struct:
		if t.Implements(typeMarshaler) || reflect.PointerTo(t).Implements(typeMarshaler) {
			return KindText
		}
		return KindStruct
	case reflect.Slice, reflect.Array:
		return KindSlice
	case reflect.Map:
		return KindMap
	case reflect.Interface:
		return KindInterface
	case reflect.Pointer:
		return r.KindOf(t.Elem())
	}
	return KindUnsupported
}
