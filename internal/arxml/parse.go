package arxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Parse reads an ARXML document into a node arena. Only element structure,
// attributes and character data are retained; comments and processing
// instructions are dropped.
func Parse(r io.Reader, file string) (*Document, error) {
	d := NewDocument(file)
	dec := xml.NewDecoder(r)

	var stack []NodeID
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := InvalidNode
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			if parent == InvalidNode && d.Root != InvalidNode {
				return nil, fmt.Errorf("parse %s: multiple root elements", file)
			}
			id := d.CreateElement(parent, StripNamespace(t.Name.Local))
			node := d.Node(id)
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{
					Name:  a.Name.Local,
					Space: a.Name.Space,
					Value: a.Value,
				})
			}
			stack = append(stack, id)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			cur := d.Node(stack[len(stack)-1])
			if len(cur.Children) == 0 {
				cur.Text += text
			} else {
				// Text after a child element is that child's tail.
				d.Node(cur.Children[len(cur.Children)-1]).Tail += text
			}
		}
	}

	if d.Root == InvalidNode {
		return nil, fmt.Errorf("parse %s: empty document", file)
	}
	return d, nil
}

// ParseString parses in-memory ARXML content.
func ParseString(content, file string) (*Document, error) {
	return Parse(strings.NewReader(content), file)
}
