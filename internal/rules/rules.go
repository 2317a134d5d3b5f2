// Package rules is the registry and execution engine for named validation
// rules. The engine ships empty; callers register the baseline set from
// Defaults plus any project-specific rules. Evaluation order is registration
// order, and a failing rule is contained to a single finding instead of
// aborting the pass.
package rules

import (
	"fmt"
	"sort"

	"github.com/arxml-community/arxml-dev-tools/internal/index"
	"github.com/arxml-community/arxml-dev-tools/internal/refs"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "info"
}

// Finding is one validation result. Fix, when set, mutates the model to
// resolve the issue; callers must re-validate after applying it.
type Finding struct {
	Path     string
	Message  string
	Severity Severity
	RuleID   string
	Line     int
	Column   int
	Fix      func() error
}

// Context carries the read surface rules evaluate against.
type Context struct {
	Index    *index.Index
	Resolver *refs.Resolver
}

// Rule is a declarative validation rule. Exactly one of Check (per-element)
// or CheckAll (whole-model) is set.
type Rule struct {
	ID       string
	Name     string
	Category string
	Severity Severity
	Enabled  bool
	Check    func(ctx *Context, rec *index.Record) []Finding
	CheckAll func(ctx *Context) []Finding
}

// Engine executes registered rules in registration order.
type Engine struct {
	order []*Rule
	byID  map[string]*Rule
}

func NewEngine() *Engine {
	return &Engine{byID: make(map[string]*Rule)}
}

// Register adds a rule. Re-registering an existing ID replaces the rule in
// its original position.
func (e *Engine) Register(r *Rule) {
	if old := e.byID[r.ID]; old != nil {
		for i, x := range e.order {
			if x == old {
				e.order[i] = r
				break
			}
		}
	} else {
		e.order = append(e.order, r)
	}
	e.byID[r.ID] = r
}

// Unregister removes the rule with the given ID.
func (e *Engine) Unregister(id string) bool {
	r := e.byID[id]
	if r == nil {
		return false
	}
	delete(e.byID, id)
	for i, x := range e.order {
		if x == r {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// SetEnabled toggles a rule without unregistering it.
func (e *Engine) SetEnabled(id string, enabled bool) bool {
	r := e.byID[id]
	if r == nil {
		return false
	}
	r.Enabled = enabled
	return true
}

// Rule returns the registered rule with the given ID, or nil.
func (e *Engine) Rule(id string) *Rule {
	return e.byID[id]
}

// Rules returns all registered rules in registration order.
func (e *Engine) Rules() []*Rule {
	return append([]*Rule(nil), e.order...)
}

// RulesByCategory returns the registered rules in the given category.
func (e *Engine) RulesByCategory(category string) []*Rule {
	var out []*Rule
	for _, r := range e.order {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// EvaluateAll runs every enabled rule over the whole model. Per-element rules
// visit elements in path order so results are stable run to run.
func (e *Engine) EvaluateAll(ctx *Context) []Finding {
	records := ctx.Index.All()
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	var out []Finding
	for _, r := range e.order {
		if !r.Enabled {
			continue
		}
		out = append(out, e.run(r, ctx, records)...)
	}
	return out
}

// EvaluateElement runs every enabled per-element rule against one element.
func (e *Engine) EvaluateElement(ctx *Context, path string) []Finding {
	rec := ctx.Index.ByPath(path)
	if rec == nil {
		return nil
	}
	var out []Finding
	for _, r := range e.order {
		if !r.Enabled || r.Check == nil {
			continue
		}
		out = append(out, e.run(r, ctx, []*index.Record{rec})...)
	}
	return out
}

// run executes one rule, converting a panic into a single error finding so
// one broken rule cannot blank out the rest of the pass.
func (e *Engine) run(r *Rule, ctx *Context, records []*index.Record) (out []Finding) {
	defer func() {
		if v := recover(); v != nil {
			out = []Finding{{
				Message:  fmt.Sprintf("rule %s (%s) failed: %v", r.ID, r.Name, v),
				Severity: SeverityError,
				RuleID:   r.ID,
			}}
		}
	}()

	if r.CheckAll != nil {
		out = r.CheckAll(ctx)
	} else {
		for _, rec := range records {
			out = append(out, r.Check(ctx, rec)...)
		}
	}
	// Stamp the rule's identity and declared severity so registry-level
	// overrides apply without each check knowing about them.
	for i := range out {
		out[i].RuleID = r.ID
		out[i].Severity = r.Severity
	}
	return out
}
