package express

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kevin07696/express-gateway/pkg/encoding"
)

// Field is one named element of a request tree.
// Value is a string, a Node, a []Node (repeated element) or nil (empty element).
type Field struct {
	Name  string
	Value any
}

// Node is an ordered list of elements. Order is preserved on the wire
// because the vendor schema validates element sequence.
type Node []Field

// F builds a Field
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Get returns the value of the first field with the given name
func (n Node) Get(name string) (any, bool) {
	for _, f := range n {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// EncodeXML serializes body as a UTF-8 XML document whose single root element
// is root in the default namespace ns
func EncodeXML(root, ns string, body Node) ([]byte, error) {
	if root == "" {
		return nil, errors.New("root element name is required")
	}

	buf := encoding.GetBuffer()
	defer encoding.PutBuffer(buf)

	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)

	start := xml.StartElement{Name: xml.Name{Space: ns, Local: root}}
	if err := enc.EncodeToken(start); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", root, err)
	}
	if err := encodeNode(enc, body); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", root, err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", root, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %s: %w", root, err)
	}

	return encoding.CopyBytes(buf), nil
}

func encodeNode(enc *xml.Encoder, n Node) error {
	for _, f := range n {
		if repeated, ok := f.Value.([]Node); ok {
			for _, child := range repeated {
				if err := encodeField(enc, f.Name, child); err != nil {
					return err
				}
			}
			continue
		}
		if err := encodeField(enc, f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(enc *xml.Encoder, name string, value any) error {
	if name == "" {
		return errors.New("element name is required")
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
	case string:
		if v != "" {
			if err := enc.EncodeToken(xml.CharData(v)); err != nil {
				return err
			}
		}
	case Node:
		if err := encodeNode(enc, v); err != nil {
			return err
		}
	default:
		if err := enc.EncodeToken(xml.CharData(fmt.Sprint(v))); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

// DecodeXML parses an XML document into a nested map of the root element's
// children. Leaves decode to strings (present-but-empty elements to ""),
// branches to map[string]any, and repeated names to []any.
// Namespaces and attributes are ignored.
func DecodeXML(body []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	type frame struct {
		children map[string]any
		text     strings.Builder
		branch   bool
	}

	var (
		stack []*frame
		names []string
		root  map[string]any
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, errors.New("failed to decode XML: multiple root elements")
			}
			if len(stack) > 0 {
				stack[len(stack)-1].branch = true
			}
			stack = append(stack, &frame{children: make(map[string]any)})
			names = append(names, t.Name.Local)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			top := stack[len(stack)-1]
			name := names[len(names)-1]
			stack = stack[:len(stack)-1]
			names = names[:len(names)-1]

			if len(stack) == 0 {
				root = top.children
				continue
			}

			var value any = strings.TrimSpace(top.text.String())
			if top.branch {
				value = top.children
			}
			addChild(stack[len(stack)-1].children, name, value)
		}
	}

	if root == nil {
		return nil, errors.New("failed to decode XML: no root element")
	}
	return root, nil
}

func addChild(children map[string]any, name string, value any) {
	existing, ok := children[name]
	if !ok {
		children[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		children[name] = append(list, value)
		return
	}
	children[name] = []any{existing, value}
}

// DecodeJSON parses a JSON object body into a map
func DecodeJSON(body []byte) (map[string]any, error) {
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if out == nil {
		return nil, errors.New("failed to decode JSON: not an object")
	}
	return out, nil
}

// looksLikeJSON reports whether body is a JSON object rather than XML
func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

// lookup walks a decoded tree by element names. When an element repeats,
// the first occurrence is followed.
func lookup(tree map[string]any, path ...string) any {
	var current any = tree
	for _, name := range path {
		m, ok := first(current).(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[name]
		if !ok {
			return nil
		}
	}
	return current
}

// lookupString returns the leaf at path, or "" when absent or not a leaf
func lookupString(tree map[string]any, path ...string) string {
	switch v := first(lookup(tree, path...)).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return ""
}

// lookupMap returns the branch at path, or nil
func lookupMap(tree map[string]any, path ...string) map[string]any {
	m, _ := first(lookup(tree, path...)).(map[string]any)
	return m
}

// lookupItems returns every branch at path, normalizing a single item to a one-element list
func lookupItems(tree map[string]any, path ...string) []map[string]any {
	switch v := lookup(tree, path...).(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		items := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	}
	return nil
}

func first(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}
