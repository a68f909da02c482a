package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/pkg/typedesc"
)

// DescribeMarkdown renders the metadata of a registered type as a markdown
// table. With no name every registered type is listed.
func DescribeMarkdown(m *mold.Mold, name string) (string, error) {
	types := m.Types()
	if name == "" {
		names := types.Names()
		slices.Sort(names)
		var b strings.Builder
		b.WriteString("# Types\n\n")
		for _, n := range names {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		return b.String(), nil
	}

	typ, ok := types.Lookup(name)
	if !ok {
		return "", errors.Newf("unknown type %q", name)
	}
	desc := types.Describe(typ)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", desc.Name)
	b.WriteString("| field | go name | kind | visibility | since |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range desc.Fields {
		visibility := "visible"
		if f.Visibility == typedesc.SkipAlways {
			visibility = "never"
		}
		since := ""
		if f.HasSince {
			since = fmt.Sprintf("%g", f.Since)
		}
		kind := f.Target.Kind.String()
		if enum, ok := types.EnumFor(f.Target.Base); ok {
			kind += " (" + strings.Join(enum.Names, ", ") + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", f.Name, f.GoName, kind, visibility, since)
	}
	return b.String(), nil
}
