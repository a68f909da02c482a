package serialize

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var (
	jsonCompact  = jsoniter.Config{EscapeHTML: false}.Froze()
	jsonIndented = jsoniter.Config{EscapeHTML: false, IndentionStep: 2}.Froze()
)

func writeJSON(buf *bytes.Buffer, root string, n *node, indented bool) error {
	cfg := jsonCompact
	if indented {
		cfg = jsonIndented
	}
	stream := jsoniter.NewStream(cfg, buf, 512)
	if root != "" {
		stream.WriteObjectStart()
		stream.WriteObjectField(root)
		writeJSONNode(stream, n)
		stream.WriteObjectEnd()
	} else {
		writeJSONNode(stream, n)
	}
	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}

func writeJSONNode(stream *jsoniter.Stream, n *node) {
	switch n.kind {
	case nullNode:
		stream.WriteNil()
	case stringNode:
		stream.WriteString(n.text)
	case numberNode:
		stream.WriteRaw(n.text)
	case boolNode:
		stream.WriteBool(n.text == "true")
	case objectNode:
		if len(n.members) == 0 {
			stream.WriteEmptyObject()
			return
		}
		stream.WriteObjectStart()
		for i, m := range n.members {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(m.name)
			writeJSONNode(stream, m.value)
		}
		stream.WriteObjectEnd()
	case listNode:
		if len(n.items) == 0 {
			stream.WriteEmptyArray()
			return
		}
		stream.WriteArrayStart()
		for i, item := range n.items {
			if i > 0 {
				stream.WriteMore()
			}
			writeJSONNode(stream, item)
		}
		stream.WriteArrayEnd()
	}
}
