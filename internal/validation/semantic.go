package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
	"github.com/arxml-community/arxml-dev-tools/internal/index"
)

// semanticAll runs the coordinator-owned checks that need a whole-model view:
// sibling short-name uniqueness, reference cycles, package completeness and
// UUID presence.
func (v *Validator) semanticAll() []Finding {
	records := v.index.All()
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	var out []Finding
	out = append(out, v.checkUniqueness(records)...)
	out = append(out, v.checkCycles()...)

	for _, rec := range records {
		out = append(out, v.checkPackageStructure(rec)...)
		out = append(out, v.checkUUIDPresence(rec)...)
	}
	return out
}

// semanticElement runs the per-element subset used for incremental
// re-validation.
func (v *Validator) semanticElement(rec *index.Record) []Finding {
	var out []Finding
	out = append(out, v.checkElementUniqueness(rec)...)
	out = append(out, v.checkPackageStructure(rec)...)
	out = append(out, v.checkUUIDPresence(rec)...)
	return out
}

// checkUniqueness flags duplicate short names among same-type siblings.
// Duplicate siblings collide in the path index (the later one wins the path
// slot), so this check walks the document trees rather than the index. Every
// member of a duplicate group gets its own finding.
func (v *Validator) checkUniqueness(records []*index.Record) []Finding {
	docs := make(map[*arxml.Document]bool)
	for _, rec := range records {
		docs[rec.Doc] = true
	}
	sorted := make([]*arxml.Document, 0, len(docs))
	for doc := range docs {
		sorted = append(sorted, doc)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	var out []Finding
	for _, doc := range sorted {
		if doc.Root == arxml.InvalidNode {
			continue
		}
		rootPath := ""
		if name := doc.ShortName(doc.Root); name != "" {
			rootPath = "/" + name
		}
		out = append(out, v.checkGroupUniqueness(doc, doc.Root, rootPath)...)
	}
	return out
}

// checkGroupUniqueness examines one sibling group: the named elements whose
// nearest named ancestor is owner. Duplicates within the group are flagged,
// then each member becomes the owner of its own group.
func (v *Validator) checkGroupUniqueness(doc *arxml.Document, owner arxml.NodeID, ownerPath string) []Finding {
	members := namedDescendants(doc, owner)

	type groupKey struct {
		elementType string
		shortName   string
	}
	groups := make(map[groupKey][]arxml.NodeID)
	for _, id := range members {
		key := groupKey{doc.Node(id).Tag, doc.ShortName(id)}
		groups[key] = append(groups[key], id)
	}

	var out []Finding
	for _, id := range members {
		name := doc.ShortName(id)
		path := ownerPath + "/" + name
		if len(groups[groupKey{doc.Node(id).Tag, name}]) > 1 {
			out = append(out, Finding{
				Path:     path,
				Message:  fmt.Sprintf("duplicate SHORT-NAME %q in %s", name, doc.Node(id).Tag),
				Severity: SeverityError,
				RuleID:   "UNI001",
			})
		}
		out = append(out, v.checkGroupUniqueness(doc, id, path)...)
	}
	return out
}

// checkElementUniqueness is the single-element form: one finding when any
// same-type sibling in the document carries the same short name.
func (v *Validator) checkElementUniqueness(rec *index.Record) []Finding {
	if rec.ShortName == "" {
		return nil
	}
	owner := rec.Doc.Root
	if parent := v.index.ByPath(rec.ParentPath); parent != nil && parent.Doc == rec.Doc {
		owner = parent.Node
	}
	if owner == arxml.InvalidNode {
		return nil
	}

	count := 0
	for _, id := range namedDescendants(rec.Doc, owner) {
		if rec.Doc.Node(id).Tag == rec.Type && rec.Doc.ShortName(id) == rec.ShortName {
			count++
		}
	}
	if count < 2 {
		return nil
	}
	return []Finding{{
		Path:     rec.Path,
		Message:  fmt.Sprintf("duplicate SHORT-NAME %q in %s", rec.ShortName, rec.Type),
		Severity: SeverityError,
		RuleID:   "UNI001",
	}}
}

// namedDescendants collects the named elements whose nearest named ancestor
// is owner, in document order.
func namedDescendants(doc *arxml.Document, owner arxml.NodeID) []arxml.NodeID {
	var out []arxml.NodeID
	var walk func(arxml.NodeID)
	walk = func(cur arxml.NodeID) {
		for _, c := range doc.Node(cur).Children {
			if doc.ShortName(c) != "" {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(owner)
	return out
}

func (v *Validator) checkCycles() []Finding {
	var out []Finding
	for _, cycle := range v.resolver.FindCycles() {
		out = append(out, Finding{
			Path:     cycle[0],
			Message:  fmt.Sprintf("circular reference detected: %s", strings.Join(cycle, " -> ")),
			Severity: SeverityError,
			RuleID:   "REF003",
		})
	}
	return out
}

func (v *Validator) checkPackageStructure(rec *index.Record) []Finding {
	if rec.Type != "AR-PACKAGE" {
		return nil
	}
	if rec.Doc.FindChildByTag(rec.Node, "ELEMENTS") != arxml.InvalidNode {
		return nil
	}
	return []Finding{{
		Path:     rec.Path,
		Message:  "AR-PACKAGE missing ELEMENTS container",
		Severity: SeverityWarning,
		RuleID:   "PKG001",
	}}
}

// checkUUIDPresence flags named elements without a UUID attribute and attaches
// a fix that stamps a fresh one.
func (v *Validator) checkUUIDPresence(rec *index.Record) []Finding {
	if rec.UUID != "" || rec.ShortName == "" {
		return nil
	}
	path := rec.Path
	ix := v.index
	return []Finding{{
		Path:     path,
		Message:  "element has no UUID attribute",
		Severity: SeverityInfo,
		RuleID:   "UID001",
		Fix: func() error {
			if !ix.SetElementAttribute(path, "UUID", uuid.NewString()) {
				return fmt.Errorf("element %s no longer indexed", path)
			}
			return nil
		},
	}}
}
