package index

import (
	"strings"

	"github.com/google/uuid"

	"github.com/arxml-community/arxml-dev-tools/internal/arpath"
	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
)

// IndexDocument walks a parsed document and indexes every element carrying a
// SHORT-NAME child. Unnamed structural wrappers are not indexed; their
// descendants inherit the nearest named ancestor's path. Returns the number
// of records added.
func (ix *Index) IndexDocument(doc *arxml.Document) int {
	if doc == nil || doc.Root == arxml.InvalidNode {
		return 0
	}
	count := 0
	var walk func(node arxml.NodeID, parentPath string)
	walk = func(node arxml.NodeID, parentPath string) {
		current := parentPath
		if name := doc.ShortName(node); name != "" {
			current = arpath.Build(append(arpath.Parse(parentPath), name))
			ix.AddElement(doc, node, current)
			count++
		}
		for _, child := range doc.Node(node).Children {
			walk(child, current)
		}
	}
	walk(doc.Root, "")
	return count
}

// CreateElement creates a named element under parentPath, stamps a fresh
// UUID attribute unless the caller supplied one, and indexes it. Returns the
// new element's path.
func (ix *Index) CreateElement(parentPath, elementType, shortName string, attrs map[string]string) (string, bool) {
	parent := ix.byPath[parentPath]
	if parent == nil {
		return "", false
	}
	doc := parent.Doc
	node := doc.CreateElement(parent.Node, elementType)
	doc.SetShortName(node, shortName)
	for name, value := range attrs {
		doc.SetAttr(node, name, value)
	}
	if doc.UUID(node) == "" {
		doc.SetAttr(node, "UUID", uuid.NewString())
	}

	path := arpath.Build(append(arpath.Parse(parentPath), shortName))
	ix.AddElement(doc, node, path)
	return path, true
}

// DeleteElement detaches the element's node from its document and removes
// the record and all descendant records. Deletion always cascades.
func (ix *Index) DeleteElement(path string) bool {
	rec := ix.byPath[path]
	if rec == nil {
		return false
	}
	if n := rec.Doc.Node(rec.Node); n != nil && n.Parent != arxml.InvalidNode {
		rec.Doc.RemoveChild(n.Parent, rec.Node)
	}
	return ix.RemoveSubtree(path)
}

// RenameElement changes the element's SHORT-NAME and recomputes the paths of
// the element and every descendant record.
func (ix *Index) RenameElement(path, newName string) (string, bool) {
	rec := ix.byPath[path]
	if rec == nil || !arpath.ValidSegment(newName) {
		return "", false
	}

	rec.Doc.SetShortName(rec.Node, newName)
	newPath := arpath.Build(append(arpath.Parse(rec.ParentPath), newName))
	if newPath == path {
		ix.UpdateElement(path, rec.Doc, rec.Node)
		return path, true
	}

	subtree := append([]*Record{rec}, ix.Descendants(path)...)
	// Children first so parent adjacency lists shrink cleanly.
	for i := len(subtree) - 1; i >= 0; i-- {
		ix.RemoveElement(subtree[i].Path)
	}
	for _, r := range subtree {
		ix.AddElement(r.Doc, r.Node, newPath+strings.TrimPrefix(r.Path, path))
	}
	return newPath, true
}

// SetElementText updates the element's own text content and reindexes it.
func (ix *Index) SetElementText(path, text string) bool {
	rec := ix.byPath[path]
	if rec == nil {
		return false
	}
	rec.Doc.SetText(rec.Node, text)
	return ix.UpdateElement(path, rec.Doc, rec.Node)
}

// SetElementAttribute updates an attribute on the element's node. The record
// is reindexed only when the attribute is an indexed field.
func (ix *Index) SetElementAttribute(path, name, value string) bool {
	rec := ix.byPath[path]
	if rec == nil {
		return false
	}
	rec.Doc.SetAttr(rec.Node, name, value)
	if name == "UUID" {
		return ix.UpdateElement(path, rec.Doc, rec.Node)
	}
	ix.generation++
	return true
}
