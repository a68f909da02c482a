package typedesc

import (
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPISchema describes the serialized shape of t. Skipped fields are left
// out. When versioned is set, fields whose Since is above version are left out
// too; otherwise thresholds are reported in the x-since extension.
func (r *Registry) OpenAPISchema(t reflect.Type, version float64, versioned bool) *openapi3.Schema {
	g := schemaGen{r: r, version: version, versioned: versioned, visiting: make(map[reflect.Type]bool)}
	return g.schema(r.Target(t))
}

type schemaGen struct {
	r         *Registry
	version   float64
	versioned bool
	visiting  map[reflect.Type]bool
}

func (g schemaGen) schema(tg Target) *openapi3.Schema {
	var s *openapi3.Schema
	switch tg.Kind {
	case KindString, KindText:
		s = openapi3.NewStringSchema()
	case KindChar:
		s = openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(1)
	case KindBool:
		s = openapi3.NewBoolSchema()
	case KindInt, KindUint:
		s = openapi3.NewInt64Schema()
	case KindBigInt:
		s = openapi3.NewIntegerSchema()
	case KindFloat, KindBigFloat:
		s = openapi3.NewFloat64Schema()
	case KindDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	case KindTime:
		s = openapi3.NewStringSchema().WithFormat("time")
	case KindDateTime:
		s = openapi3.NewDateTimeSchema()
	case KindDuration:
		s = openapi3.NewStringSchema().WithFormat("duration")
	case KindEnum:
		s = openapi3.NewStringSchema()
		if desc, ok := g.r.EnumFor(tg.Base); ok {
			values := make([]any, len(desc.Names))
			for i, n := range desc.Names {
				values[i] = n
			}
			s = s.WithEnum(values...)
		}
	case KindSlice:
		s = openapi3.NewArraySchema()
		if tg.Elem != nil {
			s = s.WithItems(g.schema(*tg.Elem))
		}
	case KindMap:
		s = openapi3.NewObjectSchema()
		if tg.Elem != nil {
			s = s.WithAdditionalProperties(g.schema(*tg.Elem))
		}
	case KindStruct:
		s = g.object(tg.Base)
	default:
		s = openapi3.NewSchema()
	}
	if tg.Nullable {
		s.Nullable = true
	}
	return s
}

func (g schemaGen) object(t reflect.Type) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	if g.visiting[t] {
		return s
	}
	g.visiting[t] = true
	defer delete(g.visiting, t)

	desc := g.r.Describe(t)
	s.Title = desc.Name
	for _, f := range desc.Fields {
		if f.Visibility == SkipAlways {
			continue
		}
		if f.HasSince && g.versioned && f.Since > g.version {
			continue
		}
		prop := g.schema(f.Target)
		if f.HasSince && !g.versioned {
			if prop.Extensions == nil {
				prop.Extensions = make(map[string]any)
			}
			prop.Extensions["x-since"] = f.Since
		}
		s.WithProperty(f.Name, prop)
	}
	return s
}
