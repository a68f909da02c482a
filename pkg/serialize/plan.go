package serialize

import (
	"strings"

	"github.com/aretw0/mold/pkg/typedesc"
)

type verdict int

const (
	unmatched verdict = iota
	included
	excluded
)

type rule struct {
	path    string
	include bool
	all     bool
}

// plan is the resolved visibility state of one serialize call.
type plan struct {
	rules     []rule
	recursive bool
	version   float64
	versioned bool
}

// verdict returns the outcome of the last rule matching path. An include of
// a.b also matches a, so the parent is traversed. ExcludeAll matches the
// fields of the root object.
func (p *plan) verdict(path string) verdict {
	v := unmatched
	for _, r := range p.rules {
		switch {
		case r.all:
			if !strings.Contains(path, ".") {
				v = excluded
			}
		case r.path == path:
			if r.include {
				v = included
			} else {
				v = excluded
			}
		case r.include && strings.HasPrefix(r.path, path+"."):
			v = included
		}
	}
	return v
}

// since reports whether the version threshold of f lets it through.
func (p *plan) since(f typedesc.Field) bool {
	return !p.versioned || !f.HasSince || f.Since <= p.version
}

// field decides whether f, found at path, is emitted. It also reports
// whether the field was explicitly included.
func (p *plan) field(f typedesc.Field, path string) (emit, explicit bool) {
	if f.Visibility == typedesc.SkipAlways || !p.since(f) {
		return false, false
	}
	return p.entry(path, f.Target.Kind.Primitive(), false)
}

// entry applies the include/exclude rules to a value at path. inherited is
// set for map entries whose map was explicitly included.
func (p *plan) entry(path string, primitive, inherited bool) (emit, explicit bool) {
	switch p.verdict(path) {
	case excluded:
		return false, false
	case included:
		return true, true
	}
	return primitive || inherited || p.recursive, false
}

func planFromOptions(opts Options) *plan {
	p := &plan{
		recursive: opts.Recursive,
		version:   opts.Version,
		versioned: opts.Versioned,
	}
	if opts.ExcludeAll {
		p.rules = append(p.rules, rule{all: true})
	}
	for _, path := range opts.Include {
		p.rules = append(p.rules, rule{path: path, include: true})
	}
	for _, path := range opts.Exclude {
		p.rules = append(p.rules, rule{path: path})
	}
	return p
}
