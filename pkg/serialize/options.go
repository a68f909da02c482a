package serialize

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Format is an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXML, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// Root name modes. Any other value of Options.RootName is used literally.
const (
	// RootAuto names the root after the lowercased type name, or "list"
	// for collections.
	RootAuto = ""
	// RootNone omits the root wrapper. Only single objects may be rootless.
	RootNone = "-"
)

// CollectionRoot is the automatic root name of collections.
const CollectionRoot = "list"

// Options configures one Serialize call.
//
// Rules apply in a fixed order: ExcludeAll, then Include, then Exclude, so
// an exclusion wins over an inclusion of the same path. Use a Session when
// the order matters.
type Options struct {
	RootName   string
	Include    []string
	Exclude    []string
	ExcludeAll bool
	Recursive  bool
	// Version is the active version. Fields with a since threshold above it
	// are left out. Ignored unless Versioned is set.
	Version   float64
	Versioned bool
	// Indented and Compact override the engine default for this call.
	// Indented wins when both are set. Format falls back to the engine
	// default when empty.
	Indented bool
	Compact  bool
	Format   Format
}

// layout is the pretty printing choice of one call.
type layout int

const (
	layoutDefault layout = iota
	layoutIndented
	layoutCompact
)

func (o Options) layout() layout {
	switch {
	case o.Indented:
		return layoutIndented
	case o.Compact:
		return layoutCompact
	}
	return layoutDefault
}

// Defaults are the environment-level settings of an Engine.
type Defaults struct {
	// Indented applies to calls that ask for neither indented nor compact
	// output.
	Indented bool
	// DateLayout formats time.Time values. Defaults to RFC 3339.
	DateLayout string
	Format     Format
}

func (d Defaults) withFallbacks() Defaults {
	if d.DateLayout == "" {
		d.DateLayout = time.RFC3339
	}
	if d.Format == "" {
		d.Format = FormatJSON
	}
	return d
}
