package serialize

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// writeYAML renders block style when indented and flow style otherwise.
func writeYAML(buf *bytes.Buffer, root string, n *node, indented bool) error {
	doc := yamlNode(n)
	if root != "" {
		doc = &yaml.Node{
			Kind:    yaml.MappingNode,
			Tag:     "!!map",
			Content: []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: root}, doc},
		}
	}
	if !indented {
		doc.Style = yaml.FlowStyle
	}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func yamlNode(n *node) *yaml.Node {
	switch n.kind {
	case stringNode:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.text}
	case numberNode:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: numberTag(n.text), Value: n.text}
	case boolNode:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: n.text}
	case objectNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range n.members {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.name},
				yamlNode(m.value))
		}
		return out
	case listNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			out.Content = append(out.Content, yamlNode(item))
		}
		return out
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func numberTag(s string) string {
	for _, c := range s {
		if c < '0' || c > '9' {
			if c != '-' {
				return "!!float"
			}
		}
	}
	return "!!int"
}
