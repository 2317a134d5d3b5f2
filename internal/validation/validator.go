// Package validation coordinates schema conformance, semantic checks and the
// rule engine into one validation pass, caches the result, and applies quick
// fixes. The cache goes stale on any index mutation (tracked through the
// index generation counter) or by wall-clock age, whichever trips first.
package validation

import (
	"fmt"
	"time"

	"github.com/arxml-community/arxml-dev-tools/internal/index"
	"github.com/arxml-community/arxml-dev-tools/internal/refs"
	"github.com/arxml-community/arxml-dev-tools/internal/rules"
)

type Severity = rules.Severity

const (
	SeverityInfo    = rules.SeverityInfo
	SeverityWarning = rules.SeverityWarning
	SeverityError   = rules.SeverityError
)

type Finding = rules.Finding

// SchemaChecker is the structural-conformance layer. The validator treats its
// findings as opaque results to merge.
type SchemaChecker interface {
	Check(ix *index.Index) []Finding
}

type Validator struct {
	index    *index.Index
	resolver *refs.Resolver
	engine   *rules.Engine
	schema   SchemaChecker

	cache      []Finding
	cacheValid bool
	cacheGen   uint64
	cacheTime  time.Time
}

// New builds a validator. schema may be nil when no conformance layer is
// configured.
func New(ix *index.Index, resolver *refs.Resolver, engine *rules.Engine, schema SchemaChecker) *Validator {
	return &Validator{index: ix, resolver: resolver, engine: engine, schema: schema}
}

// ValidateAll runs the full pass: schema conformance, semantic checks, then
// registered rules. Results are cached; a cached result is returned as long
// as the index has not mutated since it was computed, unless force is set.
func (v *Validator) ValidateAll(force bool) []Finding {
	if !force && v.cacheValid && v.cacheGen == v.index.Generation() {
		return append([]Finding(nil), v.cache...)
	}

	v.resolver.ReanalyzeAll()

	var out []Finding
	if v.schema != nil {
		out = append(out, v.schema.Check(v.index)...)
	}
	out = append(out, v.semanticAll()...)
	out = append(out, v.engine.EvaluateAll(v.ruleContext())...)

	v.cache = out
	v.cacheValid = true
	v.cacheGen = v.index.Generation()
	v.cacheTime = time.Now()
	return append([]Finding(nil), out...)
}

// ValidateElement runs the per-element rules and semantic checks for one
// element. Results are not cached.
func (v *Validator) ValidateElement(path string) []Finding {
	rec := v.index.ByPath(path)
	if rec == nil {
		return nil
	}
	v.resolver.ProcessElement(rec)

	out := v.semanticElement(rec)
	return append(out, v.engine.EvaluateElement(v.ruleContext(), path)...)
}

// ValidateFile filters a full pass down to findings on elements from one file.
func (v *Validator) ValidateFile(file string) []Finding {
	var out []Finding
	for _, f := range v.ValidateAll(false) {
		rec := v.index.ByPath(f.Path)
		if rec != nil && rec.File == file {
			out = append(out, f)
		}
	}
	return out
}

// ErrorsByLevel returns the cached findings with the given severity, running
// a pass first when the cache is stale.
func (v *Validator) ErrorsByLevel(severity Severity) []Finding {
	var out []Finding
	for _, f := range v.ValidateAll(false) {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// ErrorsByPath returns the cached findings attached to one element path.
func (v *Validator) ErrorsByPath(path string) []Finding {
	var out []Finding
	for _, f := range v.ValidateAll(false) {
		if f.Path == path {
			out = append(out, f)
		}
	}
	return out
}

// Summary counts findings by severity.
type Summary struct {
	Errors   int
	Warnings int
	Infos    int
}

func (v *Validator) ErrorSummary() Summary {
	var s Summary
	for _, f := range v.ValidateAll(false) {
		switch f.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// ApplyQuickFix invokes the finding's fix closure. On success the cache is
// invalidated so the next pass recomputes; a fix that fails or panics leaves
// the cache untouched and is reported through the returned message.
func (v *Validator) ApplyQuickFix(f Finding) (ok bool, msg string) {
	if f.Fix == nil {
		return false, "no fix available"
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			msg = fmt.Sprintf("fix for %s failed: %v", f.Path, r)
		}
	}()
	if err := f.Fix(); err != nil {
		return false, fmt.Sprintf("fix for %s failed: %v", f.Path, err)
	}
	v.ClearCache()
	return true, ""
}

// ClearCache forces the next ValidateAll to recompute.
func (v *Validator) ClearCache() {
	v.cache = nil
	v.cacheValid = false
}

// IsCacheValid reports whether a cached result exists, matches the current
// index generation, and is younger than maxAge.
func (v *Validator) IsCacheValid(maxAge time.Duration) bool {
	return v.cacheValid &&
		v.cacheGen == v.index.Generation() &&
		time.Since(v.cacheTime) <= maxAge
}

func (v *Validator) ruleContext() *rules.Context {
	return &rules.Context{Index: v.index, Resolver: v.resolver}
}
