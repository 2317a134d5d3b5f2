// Package index is the authoritative store of indexed ARXML elements. It
// maps AUTOSAR paths and UUIDs to element records and maintains the secondary
// indexes (short name, type, file, parent-child) the resolver and validator
// query. Lookups never fail loudly: unknown keys yield nil or empty results.
package index

import (
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/arpath"
	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
)

// Record describes one indexed element. The document node is referenced by
// arena handle; the record never owns node lifetime.
type Record struct {
	Doc        *arxml.Document
	Node       arxml.NodeID
	Path       string
	ShortName  string
	UUID       string
	ParentPath string
	Type       string
	File       string
	IsRef      bool
	RefDest    string
}

// Index holds all element records and their secondary indexes. Not safe for
// concurrent writers; callers serialize mutation per the single-writer
// discipline.
type Index struct {
	byPath      map[string]*Record
	byUUID      map[string]*Record
	byShortName map[string][]*Record
	byType      map[string][]*Record
	byFile      map[string][]*Record
	children    map[string][]*Record

	// generation increments on every mutation; the validator compares it
	// against the value captured when its cache was filled.
	generation uint64
}

func New() *Index {
	return &Index{
		byPath:      make(map[string]*Record),
		byUUID:      make(map[string]*Record),
		byShortName: make(map[string][]*Record),
		byType:      make(map[string][]*Record),
		byFile:      make(map[string][]*Record),
		children:    make(map[string][]*Record),
	}
}

// Generation returns the mutation counter.
func (ix *Index) Generation() uint64 {
	return ix.generation
}

// AddElement indexes the element at the given path. An existing record at the
// same path is silently replaced; that is the update mechanism.
func (ix *Index) AddElement(doc *arxml.Document, node arxml.NodeID, path string) *Record {
	if old := ix.byPath[path]; old != nil {
		ix.removeRecord(old)
	}

	n := doc.Node(node)
	rec := &Record{
		Doc:        doc,
		Node:       node,
		Path:       path,
		ShortName:  doc.ShortName(node),
		UUID:       doc.UUID(node),
		ParentPath: arpath.ParentOf(path),
		File:       doc.File,
	}
	if n != nil {
		rec.Type = n.Tag
		rec.IsRef = arxml.IsReferenceTag(n.Tag)
		if rec.IsRef {
			_, rec.RefDest = doc.RefValue(node)
		}
	}

	ix.byPath[path] = rec
	if rec.UUID != "" {
		ix.byUUID[rec.UUID] = rec
	}
	if rec.ShortName != "" {
		ix.byShortName[rec.ShortName] = append(ix.byShortName[rec.ShortName], rec)
	}
	if rec.Type != "" {
		ix.byType[rec.Type] = append(ix.byType[rec.Type], rec)
	}
	ix.byFile[rec.File] = append(ix.byFile[rec.File], rec)
	ix.children[rec.ParentPath] = append(ix.children[rec.ParentPath], rec)

	ix.generation++
	return rec
}

// RemoveElement drops the record at path from every index. It does not touch
// descendant records; RemoveSubtree is the cascading form.
func (ix *Index) RemoveElement(path string) bool {
	rec := ix.byPath[path]
	if rec == nil {
		return false
	}
	ix.removeRecord(rec)
	ix.generation++
	return true
}

// RemoveSubtree removes the record at path and every descendant record,
// children first.
func (ix *Index) RemoveSubtree(path string) bool {
	if ix.byPath[path] == nil {
		return false
	}
	for _, child := range append([]*Record(nil), ix.children[path]...) {
		ix.RemoveSubtree(child.Path)
	}
	return ix.RemoveElement(path)
}

func (ix *Index) removeRecord(rec *Record) {
	if rec.UUID != "" && ix.byUUID[rec.UUID] == rec {
		delete(ix.byUUID, rec.UUID)
	}
	if rec.ShortName != "" {
		ix.byShortName[rec.ShortName] = dropRecord(ix.byShortName, rec.ShortName, rec)
	}
	if rec.Type != "" {
		ix.byType[rec.Type] = dropRecord(ix.byType, rec.Type, rec)
	}
	ix.byFile[rec.File] = dropRecord(ix.byFile, rec.File, rec)
	ix.children[rec.ParentPath] = dropRecord(ix.children, rec.ParentPath, rec)
	delete(ix.byPath, rec.Path)
}

func dropRecord(m map[string][]*Record, key string, rec *Record) []*Record {
	list := m[key]
	for i, r := range list {
		if r == rec {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(m, key)
		return nil
	}
	m[key] = list
	return list
}

// UpdateElement reindexes the element at path after its raw node changed.
func (ix *Index) UpdateElement(path string, doc *arxml.Document, node arxml.NodeID) bool {
	if ix.byPath[path] == nil {
		return false
	}
	ix.RemoveElement(path)
	ix.AddElement(doc, node, path)
	return true
}

// ByPath returns the record at the given path, or nil.
func (ix *Index) ByPath(path string) *Record {
	return ix.byPath[path]
}

// ByUUID returns the record with the given UUID, or nil.
func (ix *Index) ByUUID(uuid string) *Record {
	return ix.byUUID[uuid]
}

// ByShortName returns all records with the given short name.
func (ix *Index) ByShortName(name string) []*Record {
	return ix.byShortName[name]
}

// ByType returns all records with the given element type.
func (ix *Index) ByType(elementType string) []*Record {
	return ix.byType[elementType]
}

// ByFile returns all records originating from the given file.
func (ix *Index) ByFile(file string) []*Record {
	return ix.byFile[file]
}

// Children returns the direct children of the element at path.
func (ix *Index) Children(path string) []*Record {
	return ix.children[path]
}

// Descendants returns every record below path, depth-first.
func (ix *Index) Descendants(path string) []*Record {
	var out []*Record
	for _, child := range ix.children[path] {
		out = append(out, child)
		out = append(out, ix.Descendants(child.Path)...)
	}
	return out
}

// All returns every indexed record.
func (ix *Index) All() []*Record {
	out := make([]*Record, 0, len(ix.byPath))
	for _, rec := range ix.byPath {
		out = append(out, rec)
	}
	return out
}

// Paths returns every indexed path.
func (ix *Index) Paths() []string {
	out := make([]string, 0, len(ix.byPath))
	for path := range ix.byPath {
		out = append(out, path)
	}
	return out
}

// SearchByName matches query as a substring of short names or long names.
func (ix *Index) SearchByName(query string, caseSensitive bool) []*Record {
	if !caseSensitive {
		query = strings.ToLower(query)
	}
	var out []*Record
	for _, rec := range ix.byPath {
		short := rec.ShortName
		long := rec.Doc.LongName(rec.Node)
		if !caseSensitive {
			short = strings.ToLower(short)
			long = strings.ToLower(long)
		}
		if strings.Contains(short, query) || (long != "" && strings.Contains(long, query)) {
			out = append(out, rec)
		}
	}
	return out
}

// Find returns the records matching the predicate.
func (ix *Index) Find(pred func(*Record) bool) []*Record {
	var out []*Record
	for _, rec := range ix.byPath {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Clear drops all records.
func (ix *Index) Clear() {
	ix.byPath = make(map[string]*Record)
	ix.byUUID = make(map[string]*Record)
	ix.byShortName = make(map[string][]*Record)
	ix.byType = make(map[string][]*Record)
	ix.byFile = make(map[string][]*Record)
	ix.children = make(map[string][]*Record)
	ix.generation++
}

// Statistics summarizes the index contents.
type Statistics struct {
	TotalElements    int
	ElementsWithUUID int
	UniqueShortNames int
	UniqueTypes      int
	Files            int
	ReferenceEdges   int
}

func (ix *Index) Statistics() Statistics {
	edges := 0
	for _, rec := range ix.byPath {
		edges += len(rec.Doc.ReferenceCarriers(rec.Node))
	}
	return Statistics{
		TotalElements:    len(ix.byPath),
		ElementsWithUUID: len(ix.byUUID),
		UniqueShortNames: len(ix.byShortName),
		UniqueTypes:      len(ix.byType),
		Files:            len(ix.byFile),
		ReferenceEdges:   edges,
	}
}
