package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/arpath"
	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
	"github.com/arxml-community/arxml-dev-tools/internal/index"
)

var attributeNamePattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)

// Child tags that must be present per element type.
var requiredChildren = map[string][]string{
	"AR-PACKAGE":                      {"SHORT-NAME"},
	"ELEMENT":                         {"SHORT-NAME"},
	"CONTAINER":                       {"SHORT-NAME"},
	"PARAMETER":                       {"SHORT-NAME"},
	"ECUC-VALUE-COLLECTION":           {"SHORT-NAME"},
	"ECUC-PARAM-CONF-CONTAINER-VALUE": {"SHORT-NAME"},
}

// Allowed child tags per parent tag. Intentionally incomplete, which is why
// hierarchy violations are warnings rather than errors.
var allowedChildren = map[string][]string{
	"AUTOSAR":     {"AR-PACKAGES"},
	"AR-PACKAGES": {"AR-PACKAGE"},
	"AR-PACKAGE":  {"SHORT-NAME", "LONG-NAME", "ELEMENTS"},
	"ELEMENTS":    {"ELEMENT"},
	"ELEMENT":     {"SHORT-NAME", "LONG-NAME", "REF", "DEST"},
	"CONTAINER":   {"SHORT-NAME", "LONG-NAME", "PARAMETERS", "REFERENCES"},
	"PARAMETER":   {"SHORT-NAME", "LONG-NAME", "VALUE"},
	"REF":         {},
	"DEST":        {},
}

// Tags legitimately left without text or children.
var emptyAllowed = map[string]bool{
	"REF": true, "DEST": true, "LONG-NAME": true,
}

var ecucValueTypes = map[string]bool{
	"ECUC-TEXTUAL-PARAM-VALUE":     true,
	"ECUC-NUMERICAL-PARAM-VALUE":   true,
	"ECUC-BOOLEAN-PARAM-VALUE":     true,
	"ECUC-ENUMERATION-PARAM-VALUE": true,
}

// Defaults returns the baseline rule set. The engine ships empty; callers
// register these explicitly so projects can substitute their own set.
func Defaults() []*Rule {
	return []*Rule{
		{
			ID: "NAM001", Name: "Short Name Format", Category: "Naming",
			Severity: SeverityError, Enabled: true, Check: checkShortNameFormat,
		},
		{
			ID: "NAM002", Name: "Attribute Naming", Category: "Naming",
			Severity: SeverityWarning, Enabled: true, Check: checkAttributeNaming,
		},
		{
			ID: "STR001", Name: "Required Children", Category: "Structure",
			Severity: SeverityError, Enabled: true, Check: checkRequiredChildren,
		},
		{
			ID: "STR002", Name: "Element Hierarchy", Category: "Structure",
			Severity: SeverityWarning, Enabled: true, Check: checkHierarchy,
		},
		{
			ID: "REF001", Name: "Reference Resolution", Category: "References",
			Severity: SeverityError, Enabled: true, CheckAll: checkReferenceResolution,
		},
		{
			ID: "REF002", Name: "Reference Types", Category: "References",
			Severity: SeverityWarning, Enabled: true, CheckAll: checkReferenceTypes,
		},
		{
			ID: "CONT001", Name: "Empty Elements", Category: "Content",
			Severity: SeverityInfo, Enabled: true, Check: checkEmptyElements,
		},
		{
			ID: "CONT002", Name: "Text Content", Category: "Content",
			Severity: SeverityInfo, Enabled: true, Check: checkTextContent,
		},
		{
			ID: "ECUC001", Name: "ECUC Definition References", Category: "ECUC",
			Severity: SeverityError, Enabled: true, Check: checkEcucDefinitions,
		},
		{
			ID: "ECUC002", Name: "ECUC Value Types", Category: "ECUC",
			Severity: SeverityWarning, Enabled: true, Check: checkEcucValueTypes,
		},
	}
}

// ownedNodes returns the element's node plus every descendant that has no
// closer named ancestor, matching how reference carriers are attributed.
func ownedNodes(doc *arxml.Document, id arxml.NodeID) []arxml.NodeID {
	out := []arxml.NodeID{id}
	var walk func(arxml.NodeID)
	walk = func(cur arxml.NodeID) {
		for _, c := range doc.Node(cur).Children {
			if doc.ShortName(c) != "" {
				continue
			}
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

func checkShortNameFormat(ctx *Context, rec *index.Record) []Finding {
	if rec.ShortName == "" || arpath.ValidSegment(rec.ShortName) {
		return nil
	}
	return []Finding{{
		Path:     rec.Path,
		Message:  fmt.Sprintf("invalid SHORT-NAME format: %q (must start with a letter and contain only letters, digits, underscores)", rec.ShortName),
		Severity: SeverityError,
		RuleID:   "NAM001",
	}}
}

func checkAttributeNaming(ctx *Context, rec *index.Record) []Finding {
	var out []Finding
	for _, id := range ownedNodes(rec.Doc, rec.Node) {
		for _, a := range rec.Doc.Node(id).Attrs {
			if a.Space != "" || strings.HasPrefix(a.Name, "xmlns") {
				continue
			}
			if !attributeNamePattern.MatchString(a.Name) {
				out = append(out, Finding{
					Path:     rec.Path,
					Message:  fmt.Sprintf("invalid attribute name format: %q (should be lowerCamelCase)", a.Name),
					Severity: SeverityWarning,
					RuleID:   "NAM002",
				})
			}
		}
	}
	return out
}

func checkRequiredChildren(ctx *Context, rec *index.Record) []Finding {
	required, ok := requiredChildren[rec.Type]
	if !ok {
		return nil
	}
	for _, tag := range required {
		if rec.Doc.FindChildByTag(rec.Node, tag) == arxml.InvalidNode {
			return []Finding{{
				Path:     rec.Path,
				Message:  fmt.Sprintf("missing required child element: %s", tag),
				Severity: SeverityError,
				RuleID:   "STR001",
			}}
		}
	}
	return nil
}

func checkHierarchy(ctx *Context, rec *index.Record) []Finding {
	n := rec.Doc.Node(rec.Node)
	if n == nil || n.Parent == arxml.InvalidNode {
		return nil
	}
	parentTag := rec.Doc.Node(n.Parent).Tag
	allowed, ok := allowedChildren[parentTag]
	if !ok {
		return nil
	}
	for _, tag := range allowed {
		if tag == rec.Type {
			return nil
		}
	}
	return []Finding{{
		Path:     rec.Path,
		Message:  fmt.Sprintf("invalid parent-child relationship: %s -> %s", parentTag, rec.Type),
		Severity: SeverityWarning,
		RuleID:   "STR002",
	}}
}

func checkReferenceResolution(ctx *Context) []Finding {
	var out []Finding
	for _, ref := range ctx.Resolver.Unresolved() {
		msg := fmt.Sprintf("unresolved reference: %s", ref.RawValue)
		if ref.Dest != "DEST" {
			msg = fmt.Sprintf("unresolved UUID reference: %s", ref.RawValue)
		}
		out = append(out, Finding{
			Path:     ref.SourcePath,
			Message:  msg,
			Severity: SeverityError,
			RuleID:   "REF001",
		})
	}
	return out
}

func checkReferenceTypes(ctx *Context) []Finding {
	var out []Finding
	for _, ref := range ctx.Resolver.Invalid() {
		if !ref.Resolved {
			continue
		}
		out = append(out, Finding{
			Path:     ref.SourcePath,
			Message:  ref.Detail,
			Severity: SeverityWarning,
			RuleID:   "REF002",
		})
	}
	return out
}

func checkEmptyElements(ctx *Context, rec *index.Record) []Finding {
	var out []Finding
	for _, id := range ownedNodes(rec.Doc, rec.Node) {
		n := rec.Doc.Node(id)
		if strings.TrimSpace(n.Text) != "" || len(n.Children) > 0 || emptyAllowed[n.Tag] {
			continue
		}
		out = append(out, Finding{
			Path:     rec.Path,
			Message:  fmt.Sprintf("element %s is empty", n.Tag),
			Severity: SeverityInfo,
			RuleID:   "CONT001",
		})
	}
	return out
}

func checkTextContent(ctx *Context, rec *index.Record) []Finding {
	var out []Finding
	doc := rec.Doc
	for _, id := range ownedNodes(doc, rec.Node) {
		node := id
		text := doc.Node(node).Text
		if text == "" {
			continue
		}
		if text != strings.TrimSpace(text) {
			out = append(out, Finding{
				Path:     rec.Path,
				Message:  "text content has leading or trailing whitespace",
				Severity: SeverityInfo,
				RuleID:   "CONT002",
				Fix: func() error {
					doc.SetText(node, strings.TrimSpace(doc.Node(node).Text))
					return nil
				},
			})
		}
		if strings.Contains(text, "  ") {
			out = append(out, Finding{
				Path:     rec.Path,
				Message:  "text content contains repeated whitespace",
				Severity: SeverityInfo,
				RuleID:   "CONT002",
			})
		}
	}
	return out
}

func checkEcucDefinitions(ctx *Context, rec *index.Record) []Finding {
	if !strings.Contains(rec.Type, "ECUC") {
		return nil
	}
	var out []Finding
	found := false
	for _, id := range ownedNodes(rec.Doc, rec.Node) {
		if rec.Doc.Node(id).Tag != "DEFINITION-REF" {
			continue
		}
		found = true
		value, _ := rec.Doc.RefValue(id)
		if value != "" && ctx.Index.ByPath(value) == nil {
			out = append(out, Finding{
				Path:     rec.Path,
				Message:  fmt.Sprintf("ECUC DEFINITION-REF not found: %s", value),
				Severity: SeverityError,
				RuleID:   "ECUC001",
			})
		}
	}
	if !found {
		out = append(out, Finding{
			Path:     rec.Path,
			Message:  "ECUC element missing DEFINITION-REF",
			Severity: SeverityError,
			RuleID:   "ECUC001",
		})
	}
	return out
}

func checkEcucValueTypes(ctx *Context, rec *index.Record) []Finding {
	if !ecucValueTypes[rec.Type] {
		return nil
	}
	var valueText string
	for _, id := range ownedNodes(rec.Doc, rec.Node) {
		if rec.Doc.Node(id).Tag == "VALUE" {
			valueText = strings.TrimSpace(rec.Doc.Node(id).Text)
			break
		}
	}
	if valueText == "" {
		return nil
	}

	switch rec.Type {
	case "ECUC-NUMERICAL-PARAM-VALUE":
		if _, err := strconv.ParseFloat(valueText, 64); err != nil {
			return []Finding{{
				Path:     rec.Path,
				Message:  fmt.Sprintf("ECUC numerical value is not a valid number: %s", valueText),
				Severity: SeverityWarning,
				RuleID:   "ECUC002",
			}}
		}
	case "ECUC-BOOLEAN-PARAM-VALUE":
		if v := strings.ToLower(valueText); v != "true" && v != "false" {
			return []Finding{{
				Path:     rec.Path,
				Message:  fmt.Sprintf("ECUC boolean value must be 'true' or 'false': %s", valueText),
				Severity: SeverityWarning,
				RuleID:   "ECUC002",
			}}
		}
	}
	return nil
}
