package serialize

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// writeXML renders objects as elements named after their fields. List items
// are named after their element type.
func writeXML(buf *bytes.Buffer, root string, n *node, indented bool) error {
	if root == "" {
		return fail("", ErrRootRequired)
	}
	enc := xml.NewEncoder(buf)
	if indented {
		enc.Indent("", "  ")
	}
	if err := writeXMLNode(enc, root, n, ""); err != nil {
		return err
	}
	return enc.Flush()
}

func writeXMLNode(enc *xml.Encoder, name string, n *node, path string) error {
	if !xmlName(name) {
		return fail(path, errors.Wrapf(ErrUnsupportedValue, "%q is not an XML element name", name))
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch n.kind {
	case stringNode, numberNode, boolNode:
		if i := strings.IndexFunc(n.text, notXMLChar); i >= 0 {
			r, _ := utf8.DecodeRuneInString(n.text[i:])
			return fail(path, errors.Wrapf(ErrUnsupportedValue, "character %U is not allowed in XML", r))
		}
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	case objectNode:
		for _, m := range n.members {
			if err := writeXMLNode(enc, m.name, m.value, join(path, m.name)); err != nil {
				return err
			}
		}
	case listNode:
		for _, item := range n.items {
			itemName := item.typeName
			if !xmlName(itemName) {
				itemName = "item"
			}
			if err := writeXMLNode(enc, itemName, item, path); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(start.End())
}

func xmlName(s string) bool {
	for i, c := range s {
		switch {
		case unicode.IsLetter(c), c == '_':
		case i > 0 && (unicode.IsDigit(c) || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

// notXMLChar reports runes outside the Char production of XML 1.0.
func notXMLChar(r rune) bool {
	switch {
	case r == 0x09, r == 0x0A, r == 0x0D:
		return false
	case r >= 0x20 && r <= 0xD7FF:
		return false
	case r >= 0xE000 && r <= 0xFFFD:
		return false
	case r >= 0x10000 && r <= 0x10FFFF:
		return false
	}
	return true
}
