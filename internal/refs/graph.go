package refs

import (
	"sort"

	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
)

// FindCycles detects circular reference chains among resolved references.
// Each cycle is reported once, as the path sequence from its first element
// back to itself. Sources are scanned in sorted order so the report is
// deterministic regardless of insertion order.
func (r *Resolver) FindCycles() [][]string {
	sources := make([]string, 0, len(r.bySource))
	for src := range r.bySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	var cycles [][]string

	var visit func(path string)
	visit = func(path string) {
		visited[path] = true
		onStack[path] = true
		stack = append(stack, path)

		for _, ref := range r.bySource[path] {
			if !ref.Resolved {
				continue
			}
			next := ref.TargetPath
			if onStack[next] {
				// Cut the cycle out of the current chain and close it.
				for i, p := range stack {
					if p == next {
						cycle := append([]string(nil), stack[i:]...)
						cycles = append(cycles, append(cycle, next))
						break
					}
				}
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[path] = false
	}

	for _, src := range sources {
		if !visited[src] {
			visit(src)
		}
	}
	return cycles
}

// ImpactOf returns the paths of every element that directly or transitively
// references target. Each element appears once even when multiple chains
// reach it, and cycles terminate instead of recursing forever.
func (r *Resolver) ImpactOf(target string) []string {
	visited := make(map[string]bool)
	var out []string

	var visit func(path string)
	visit = func(path string) {
		for _, ref := range r.byTarget[path] {
			if visited[ref.SourcePath] {
				continue
			}
			visited[ref.SourcePath] = true
			out = append(out, ref.SourcePath)
			visit(ref.SourcePath)
		}
	}
	visit(target)

	sort.Strings(out)
	return out
}

// UpdateReference rewrites the raw value of the reference identified by
// (sourcePath, oldValue) in the underlying document, then re-derives the
// source element's records.
func (r *Resolver) UpdateReference(sourcePath, oldValue, newValue string) bool {
	key := refKey(sourcePath, oldValue)
	ref := r.byKey[key]
	if ref == nil {
		return false
	}
	ref.Doc.SetText(ref.Node, newValue)
	r.ProcessElement(r.index.ByPath(sourcePath))
	return true
}

// CreateReference adds a new path-style reference element under sourcePath
// pointing at targetPath, and derives its record. The dest attribute names
// the expected target category.
func (r *Resolver) CreateReference(sourcePath, targetPath, dest string) *Reference {
	rec := r.index.ByPath(sourcePath)
	if rec == nil {
		return nil
	}
	rec.Doc.CreateReference(rec.Node, targetPath, dest)
	r.ProcessElement(rec)
	return r.byKey[refKey(sourcePath, targetPath)]
}

// RemoveReference deletes the reference element carrying (sourcePath, value)
// from its document and drops its record.
func (r *Resolver) RemoveReference(sourcePath, value string) bool {
	ref := r.byKey[refKey(sourcePath, value)]
	if ref == nil {
		return false
	}
	if n := ref.Doc.Node(ref.Node); n != nil && n.Parent != arxml.InvalidNode {
		ref.Doc.RemoveChild(n.Parent, ref.Node)
	}
	r.ProcessElement(r.index.ByPath(sourcePath))
	return true
}
