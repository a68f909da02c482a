package bind

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/aretw0/mold/pkg/typedesc"
)

// MaxIndex is the largest slice index a key may address.
const MaxIndex = 1024

// ErrInvalidKey is returned for keys that are not dotted identifier paths.
var ErrInvalidKey = errors.New("invalid parameter key")

// Segment is one step of a parameter key: a field or map key, optionally
// followed by a slice index.
type Segment struct {
	Name    string
	Index   int
	Indexed bool
}

func (s Segment) String() string {
	if s.Indexed {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Key is a parsed parameter key such as client.phones[1].number.
type Key struct {
	Segments []Segment
}

// ParseKey parses a dotted parameter key.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, errors.Wrap(ErrInvalidKey, "empty key")
	}
	parts := strings.Split(s, ".")
	k := Key{Segments: make([]Segment, 0, len(parts))}
	for _, p := range parts {
		seg, err := parseSegment(p)
		if err != nil {
			return Key{}, errors.Wrapf(err, "key %q", s)
		}
		k.Segments = append(k.Segments, seg)
	}
	return k, nil
}

func parseSegment(p string) (Segment, error) {
	name, rest, indexed := strings.Cut(p, "[")
	if !typedesc.IsIdentifier(name) {
		return Segment{}, errors.Wrapf(ErrInvalidKey, "segment %q", p)
	}
	if !indexed {
		return Segment{Name: name}, nil
	}
	digits, ok := strings.CutSuffix(rest, "]")
	if !ok || digits == "" || strings.ContainsAny(digits, "[]+-") {
		return Segment{}, errors.Wrapf(ErrInvalidKey, "segment %q", p)
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i > MaxIndex {
		return Segment{}, errors.Wrapf(ErrInvalidKey, "index of segment %q", p)
	}
	return Segment{Name: name, Index: i, Indexed: true}, nil
}

func (k Key) String() string {
	parts := make([]string, len(k.Segments))
	for i, s := range k.Segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// upTo returns the key formed by the first n+1 segments.
func (k Key) upTo(n int) string {
	return Key{Segments: k.Segments[:n+1]}.String()
}
