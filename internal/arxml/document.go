// Package arxml holds the parsed-document model the index is built over: a
// flat node arena addressed by NodeID handles, plus raw-node accessors and
// mutation helpers for ARXML-specific structure (SHORT-NAME children,
// reference elements, UUID attributes).
package arxml

import (
	"strings"
)

// NodeID is an opaque handle into a Document's node arena. Records in the
// element index refer to nodes by ID, never by pointer, so index identity
// does not depend on XML-library object identity.
type NodeID int32

// InvalidNode is the zero target for lookups that found nothing.
const InvalidNode NodeID = -1

type Attr struct {
	Name  string // local name
	Space string // namespace prefix or URL, empty for plain attributes
	Value string
}

type Node struct {
	Tag      string // tag name with namespace stripped
	Attrs    []Attr
	Text     string // text before the first child
	Tail     string // text following this element inside its parent
	Parent   NodeID
	Children []NodeID
}

// Document owns the node arena for one parsed ARXML file.
type Document struct {
	File  string
	Root  NodeID
	nodes []Node
}

func NewDocument(file string) *Document {
	return &Document{File: file, Root: InvalidNode}
}

// Node returns the node for id, or nil for an invalid handle.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return &d.nodes[id]
}

// Len returns the number of nodes in the arena, removed nodes included.
func (d *Document) Len() int {
	return len(d.nodes)
}

// CreateElement appends a new element with the given tag under parent and
// returns its handle. A parent of InvalidNode creates the document root.
func (d *Document) CreateElement(parent NodeID, tag string) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{Tag: tag, Parent: parent})
	if parent == InvalidNode {
		d.Root = id
	} else if p := d.Node(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// SetText sets the element's text content.
func (d *Document) SetText(id NodeID, text string) bool {
	n := d.Node(id)
	if n == nil {
		return false
	}
	n.Text = text
	return true
}

// Attr returns the value of the named plain attribute, or "".
func (d *Document) Attr(id NodeID, name string) string {
	n := d.Node(id)
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Space == "" && a.Name == name {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets or replaces a plain attribute.
func (d *Document) SetAttr(id NodeID, name, value string) bool {
	n := d.Node(id)
	if n == nil {
		return false
	}
	for i := range n.Attrs {
		if n.Attrs[i].Space == "" && n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return true
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return true
}

// RemoveChild detaches child from parent. The node stays in the arena (IDs
// are stable) but is no longer reachable from the root.
func (d *Document) RemoveChild(parent, child NodeID) bool {
	p := d.Node(parent)
	if p == nil {
		return false
	}
	for i, c := range p.Children {
		if c == child {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			if n := d.Node(child); n != nil {
				n.Parent = InvalidNode
			}
			return true
		}
	}
	return false
}

// StripNamespace removes a namespace qualifier from a tag name. Both the
// encoding/xml "{uri}local" form and prefixed "ns:local" names are handled.
func StripNamespace(tag string) string {
	if i := strings.LastIndex(tag, "}"); i >= 0 {
		return tag[i+1:]
	}
	if i := strings.LastIndex(tag, ":"); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// FindChildByTag returns the first direct child with the given tag.
func (d *Document) FindChildByTag(id NodeID, tag string) NodeID {
	n := d.Node(id)
	if n == nil {
		return InvalidNode
	}
	for _, c := range n.Children {
		if d.nodes[c].Tag == tag {
			return c
		}
	}
	return InvalidNode
}

// FindChildrenByTag returns all direct children with the given tag.
func (d *Document) FindChildrenByTag(id NodeID, tag string) []NodeID {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for _, c := range n.Children {
		if d.nodes[c].Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// ShortName returns the text of the element's SHORT-NAME child, or "".
func (d *Document) ShortName(id NodeID) string {
	sn := d.FindChildByTag(id, "SHORT-NAME")
	if sn == InvalidNode {
		return ""
	}
	return strings.TrimSpace(d.nodes[sn].Text)
}

// SetShortName sets the SHORT-NAME child's text, creating the child first
// when missing.
func (d *Document) SetShortName(id NodeID, name string) bool {
	if d.Node(id) == nil {
		return false
	}
	sn := d.FindChildByTag(id, "SHORT-NAME")
	if sn == InvalidNode {
		sn = d.CreateElement(id, "SHORT-NAME")
	}
	return d.SetText(sn, name)
}

// LongName returns the display text under the element's LONG-NAME child.
// ARXML nests it in language-tagged L-4 elements; plain text is accepted too.
func (d *Document) LongName(id NodeID) string {
	ln := d.FindChildByTag(id, "LONG-NAME")
	if ln == InvalidNode {
		return ""
	}
	if text := strings.TrimSpace(d.nodes[ln].Text); text != "" {
		return text
	}
	for _, c := range d.nodes[ln].Children {
		if text := strings.TrimSpace(d.nodes[c].Text); text != "" {
			return text
		}
	}
	return ""
}

// UUID returns the element's UUID attribute, or "".
func (d *Document) UUID(id NodeID) string {
	return d.Attr(id, "UUID")
}

// IsReferenceTag reports whether a (namespace-stripped) tag marks a
// cross-reference carrier.
func IsReferenceTag(tag string) bool {
	return tag == "REF" || strings.HasSuffix(tag, "-REF") || strings.HasSuffix(tag, "-TREF")
}

// IsReference reports whether the node is a cross-reference carrier.
func (d *Document) IsReference(id NodeID) bool {
	n := d.Node(id)
	return n != nil && IsReferenceTag(n.Tag)
}

// RefValue returns the reference element's raw value and its DEST attribute.
func (d *Document) RefValue(id NodeID) (value, dest string) {
	n := d.Node(id)
	if n == nil {
		return "", ""
	}
	return strings.TrimSpace(n.Text), d.Attr(id, "DEST")
}

// CreateReference appends a REF child carrying value and the DEST attribute.
func (d *Document) CreateReference(parent NodeID, value, dest string) NodeID {
	ref := d.CreateElement(parent, "REF")
	d.SetText(ref, value)
	d.SetAttr(ref, "DEST", dest)
	return ref
}

// ReferenceCarriers collects the reference elements owned by the element at
// id: id itself when it is a reference, plus every reference element in its
// subtree that has no closer named ancestor. Traversal stops at named
// children, which own their subtrees' carriers themselves.
func (d *Document) ReferenceCarriers(id NodeID) []NodeID {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	var carriers []NodeID
	if IsReferenceTag(n.Tag) {
		carriers = append(carriers, id)
	}
	var walk func(NodeID)
	walk = func(cur NodeID) {
		for _, c := range d.nodes[cur].Children {
			if d.ShortName(c) != "" {
				continue
			}
			if IsReferenceTag(d.nodes[c].Tag) {
				carriers = append(carriers, c)
				continue
			}
			walk(c)
		}
	}
	walk(id)
	return carriers
}
