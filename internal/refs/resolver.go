// Package refs derives and maintains the cross-reference graph over the
// element index: classification, resolution, validity checking, reverse
// lookup, cycle detection and impact analysis. Resolution failures are data
// on the reference record, never errors.
package refs

import (
	"fmt"
	"sort"

	"github.com/arxml-community/arxml-dev-tools/internal/arpath"
	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
	"github.com/arxml-community/arxml-dev-tools/internal/index"
)

// Kind classifies a cross-reference by its carrier tag and resolution mode.
type Kind int

const (
	KindPath Kind = iota
	KindUUID
	KindDefinition
	KindValue
	KindECUC
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindUUID:
		return "uuid"
	case KindDefinition:
		return "definition"
	case KindValue:
		return "value"
	case KindECUC:
		return "ecuc"
	}
	return "unknown"
}

// Reference is one resolved or attempted cross-reference edge. SourcePath is
// the nearest named ancestor of the carrier element; TargetPath holds the
// resolved path, or the raw reference value when resolution failed.
type Reference struct {
	SourcePath string
	TargetPath string
	RawValue   string
	Kind       Kind
	Dest       string
	Doc        *arxml.Document
	Node       arxml.NodeID
	Resolved   bool
	Valid      bool
	Detail     string
}

// Target types acceptable per reference kind.
var (
	definitionTargets = map[string]bool{
		"AR-PACKAGE": true, "ELEMENT": true, "CONTAINER": true, "PARAMETER": true,
		"ECUC-MODULE-DEF": true, "ECUC-PARAM-CONF-CONTAINER-DEF": true,
	}
	valueTargets = map[string]bool{
		"VALUE": true, "ECUC-TEXTUAL-PARAM-VALUE": true,
		"ECUC-NUMERICAL-PARAM-VALUE": true, "ECUC-BOOLEAN-PARAM-VALUE": true,
	}
)

// Resolver keeps one Reference per (sourcePath, rawValue) pair, consistent
// with the element index it was built over.
type Resolver struct {
	index    *index.Index
	byKey    map[string]*Reference
	bySource map[string][]*Reference
	byTarget map[string][]*Reference
}

func NewResolver(ix *index.Index) *Resolver {
	r := &Resolver{index: ix}
	r.reset()
	return r
}

func (r *Resolver) reset() {
	r.byKey = make(map[string]*Reference)
	r.bySource = make(map[string][]*Reference)
	r.byTarget = make(map[string][]*Reference)
}

func refKey(sourcePath, raw string) string {
	return sourcePath + "\x00" + raw
}

// ReanalyzeAll rebuilds every reference record from scratch by scanning all
// indexed elements. This is the ground truth after a bulk load.
func (r *Resolver) ReanalyzeAll() {
	r.reset()
	for _, rec := range r.index.All() {
		r.processRecord(rec)
	}
}

// ProcessElement re-derives the references owned by one indexed element,
// replacing its previous records.
func (r *Resolver) ProcessElement(rec *index.Record) []*Reference {
	if rec == nil {
		return nil
	}
	r.dropSource(rec.Path)
	return r.processRecord(rec)
}

func (r *Resolver) dropSource(sourcePath string) {
	for _, ref := range r.bySource[sourcePath] {
		delete(r.byKey, refKey(ref.SourcePath, ref.RawValue))
		r.byTarget[ref.TargetPath] = dropRef(r.byTarget, ref.TargetPath, ref)
	}
	delete(r.bySource, sourcePath)
}

func dropRef(m map[string][]*Reference, key string, ref *Reference) []*Reference {
	list := m[key]
	for i, x := range list {
		if x == ref {
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

func (r *Resolver) processRecord(rec *index.Record) []*Reference {
	var out []*Reference
	for _, carrier := range rec.Doc.ReferenceCarriers(rec.Node) {
		if ref := r.processCarrier(rec, carrier); ref != nil {
			out = append(out, ref)
		}
	}
	return out
}

func (r *Resolver) processCarrier(rec *index.Record, carrier arxml.NodeID) *Reference {
	raw, dest := rec.Doc.RefValue(carrier)
	if raw == "" {
		return nil
	}

	tag := rec.Doc.Node(carrier).Tag
	ref := &Reference{
		SourcePath: rec.Path,
		RawValue:   raw,
		Kind:       classify(tag, dest),
		Dest:       dest,
		Doc:        rec.Doc,
		Node:       carrier,
	}

	target := r.resolve(raw, dest, rec.Path)
	if target != nil {
		ref.Resolved = true
		ref.TargetPath = target.Path
		ref.Valid = compatible(ref.Kind, target.Type)
		if !ref.Valid {
			ref.Detail = fmt.Sprintf("reference type mismatch: %s -> %s", tag, target.Type)
		}
	} else {
		ref.TargetPath = raw
		ref.Detail = fmt.Sprintf("reference target not found: %s", raw)
	}

	key := refKey(ref.SourcePath, ref.RawValue)
	if old := r.byKey[key]; old != nil {
		r.byTarget[old.TargetPath] = dropRef(r.byTarget, old.TargetPath, old)
		r.bySource[old.SourcePath] = dropRef(r.bySource, old.SourcePath, old)
	}
	r.byKey[key] = ref
	r.bySource[ref.SourcePath] = append(r.bySource[ref.SourcePath], ref)
	r.byTarget[ref.TargetPath] = append(r.byTarget[ref.TargetPath], ref)
	return ref
}

// classify maps a carrier tag and DEST mode to a reference kind. The literal
// mode "DEST" selects path-style resolution; anything else is treated as a
// UUID-style identifier.
func classify(tag, dest string) Kind {
	switch {
	case tag == "DEFINITION-REF":
		return KindDefinition
	case tag == "VALUE-REF":
		return KindValue
	case containsECUC(tag):
		return KindECUC
	case dest == "DEST":
		return KindPath
	default:
		return KindUUID
	}
}

func containsECUC(tag string) bool {
	for i := 0; i+4 <= len(tag); i++ {
		if tag[i:i+4] == "ECUC" {
			return true
		}
	}
	return false
}

func (r *Resolver) resolve(raw, dest, sourcePath string) *index.Record {
	if dest == "DEST" {
		target := raw
		if len(raw) == 0 || raw[0] != '/' {
			target = arpath.ResolveReference(raw, sourcePath)
		}
		return r.index.ByPath(target)
	}
	return r.index.ByUUID(raw)
}

func compatible(kind Kind, targetType string) bool {
	switch kind {
	case KindDefinition:
		return definitionTargets[targetType]
	case KindValue:
		return valueTargets[targetType]
	case KindECUC:
		return containsECUC(targetType)
	default:
		return true
	}
}

// ReferencesFrom returns the references owned by the element at path.
func (r *Resolver) ReferencesFrom(path string) []*Reference {
	return r.bySource[path]
}

// ReferencesTo returns the references whose resolved target is path.
func (r *Resolver) ReferencesTo(path string) []*Reference {
	return r.byTarget[path]
}

// All returns every reference record, ordered by source path.
func (r *Resolver) All() []*Reference {
	return r.collect(func(*Reference) bool { return true })
}

// Unresolved returns the references whose target was not found.
func (r *Resolver) Unresolved() []*Reference {
	return r.collect(func(ref *Reference) bool { return !ref.Resolved })
}

// Invalid returns the references that failed resolution or type checking.
func (r *Resolver) Invalid() []*Reference {
	return r.collect(func(ref *Reference) bool { return !ref.Valid })
}

func (r *Resolver) collect(pred func(*Reference) bool) []*Reference {
	var out []*Reference
	for _, ref := range r.byKey {
		if pred(ref) {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourcePath != out[j].SourcePath {
			return out[i].SourcePath < out[j].SourcePath
		}
		return out[i].RawValue < out[j].RawValue
	})
	return out
}

// Statistics summarizes the reference graph.
type Statistics struct {
	Total      int
	Resolved   int
	Unresolved int
	Valid      int
	Invalid    int
}

func (r *Resolver) Statistics() Statistics {
	s := Statistics{Total: len(r.byKey)}
	for _, ref := range r.byKey {
		if ref.Resolved {
			s.Resolved++
		}
		if ref.Valid {
			s.Valid++
		}
	}
	s.Unresolved = s.Total - s.Resolved
	s.Invalid = s.Total - s.Valid
	return s
}
