package typedesc

import (
	"io"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// RuleFile is the YAML form of per-type rules.
type RuleFile struct {
	Types map[string]TypeRuleSpec `mapstructure:"types"`
	Enums map[string][]string     `mapstructure:"enums"`
}

// TypeRuleSpec holds the rules of one named type.
type TypeRuleSpec struct {
	Skip   []string           `mapstructure:"skip"`
	Since  map[string]float64 `mapstructure:"since"`
	Rename map[string]string  `mapstructure:"rename"`
}

// LoadRules reads a YAML rule file and applies it. Type names must have been
// registered with Name.
func (r *Registry) LoadRules(in io.Reader) error {
	var raw map[string]any
	if err := yaml.NewDecoder(in).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "failed to parse rule file")
	}

	var file RuleFile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &file,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return errors.Wrap(err, "invalid rule file")
	}
	return r.ApplyRules(file)
}

// ApplyRules applies an already decoded rule file.
func (r *Registry) ApplyRules(file RuleFile) error {
	for name, names := range file.Enums {
		t, ok := r.Lookup(name)
		if !ok {
			return errors.Wrapf(ErrUnknownType, "enum %q", name)
		}
		if err := r.EnumOf(t, names...); err != nil {
			return err
		}
	}

	for name, spec := range file.Types {
		t, ok := r.Lookup(name)
		if !ok {
			return errors.Wrapf(ErrUnknownType, "type %q", name)
		}
		if t.Kind() != reflect.Struct {
			return errors.Newf("type %q: rules apply to struct types only, got %s", name, t.Kind())
		}
		rules := r.RulesOf(t)
		rules.Skip(spec.Skip...)
		for field, v := range spec.Since {
			rules.Since(field, v)
		}
		for field, to := range spec.Rename {
			rules.Rename(field, to)
		}
	}
	return nil
}
