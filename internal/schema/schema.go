// Package schema is the structural-conformance layer: a CUE description of
// the shapes indexed elements must satisfy, with system and project overlays
// unified on top of the embedded default.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/arxml-community/arxml-dev-tools/internal/index"
	"github.com/arxml-community/arxml-dev-tools/internal/rules"
)

//go:embed arxml.cue
var defaultSchemaCUE string

type Schema struct {
	Context *cue.Context
	Value   cue.Value
	Release string
}

// Default returns the built-in embedded schema.
func Default() *Schema {
	ctx := cuecontext.New()
	v := ctx.CompileString(defaultSchemaCUE, cue.Filename("arxml.cue"))
	if v.Err() != nil {
		panic(fmt.Sprintf("failed to compile default embedded schema: %v", v.Err()))
	}
	return &Schema{Context: ctx, Value: v, Release: "AUTOSAR_00050"}
}

// Merge unifies an overlay schema file into s. Overlays can tighten existing
// definitions and add new element types; a file that fails to compile is
// rejected without touching s.
func (s *Schema) Merge(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	v := s.Context.CompileString(string(content), cue.Filename(path))
	if v.Err() != nil {
		return fmt.Errorf("failed to parse schema %s: %v", path, v.Err())
	}
	merged := s.Value.Unify(v)
	if merged.Err() != nil {
		return fmt.Errorf("schema %s conflicts with base schema: %v", path, merged.Err())
	}
	s.Value = merged
	return nil
}

// LoadFullSchema layers the default schema with the system, user and project
// overlays. Missing overlay files are skipped silently; broken ones are too,
// since schema loading must never block validation.
func LoadFullSchema(projectRoot string) *Schema {
	s := Default()

	sysPaths := []string{
		"/usr/share/axt/arxml_schema.cue",
	}
	if home, err := os.UserHomeDir(); err == nil {
		sysPaths = append(sysPaths, filepath.Join(home, ".local/share/axt/arxml_schema.cue"))
	}
	for _, path := range sysPaths {
		_ = s.Merge(path)
	}

	if projectRoot != "" {
		_ = s.Merge(filepath.Join(projectRoot, ".arxml_schema.cue"))
	}
	return s
}

// Checker validates indexed elements against a schema. It satisfies the
// validator's conformance interface.
type Checker struct {
	schema *Schema
}

func NewChecker(s *Schema) *Checker {
	return &Checker{schema: s}
}

// Check validates every indexed element whose type the schema describes.
// Element types without a schema entry are skipped.
func (c *Checker) Check(ix *index.Index) []rules.Finding {
	records := ix.All()
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	var out []rules.Finding
	for _, rec := range records {
		out = append(out, c.checkRecord(rec)...)
	}
	return out
}

func (c *Checker) checkRecord(rec *index.Record) []rules.Finding {
	defPath := cue.ParsePath(fmt.Sprintf("#Elements.%q", rec.Type))
	def := c.schema.Value.LookupPath(defPath)
	if def.Err() != nil {
		return nil
	}

	data := map[string]interface{}{
		"path":        rec.Path,
		"shortName":   rec.ShortName,
		"elementType": rec.Type,
	}
	if rec.UUID != "" {
		data["uuid"] = rec.UUID
	}
	if rec.File != "" {
		data["file"] = rec.File
	}

	res := def.Unify(c.schema.Context.Encode(data))
	err := res.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var out []rules.Finding
	for _, e := range errors.Errors(err) {
		out = append(out, rules.Finding{
			Path:     rec.Path,
			Message:  fmt.Sprintf("schema validation error: %v", e),
			Severity: rules.SeverityError,
			RuleID:   "SCHEMA",
		})
	}
	return out
}
