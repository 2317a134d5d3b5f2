package report

import (
	"path/filepath"
	"testing"

	"github.com/arxml-community/arxml-dev-tools/internal/rules"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "findings.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListRuns(t *testing.T) {
	s := openStore(t)

	findings := []rules.Finding{
		{Path: "/Pkg/A", RuleID: "REF001", Severity: rules.SeverityError, Message: "unresolved reference: /Pkg/Nope"},
		{Path: "/Pkg/B", RuleID: "STR002", Severity: rules.SeverityWarning, Message: "invalid parent-child relationship"},
		{Path: "/Pkg/C", RuleID: "UID001", Severity: rules.SeverityInfo, Message: "element has no UUID attribute"},
	}
	first, err := s.RecordRun(10, findings)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	second, err := s.RecordRun(10, nil)
	if err != nil {
		t.Fatalf("second RecordRun failed: %v", err)
	}
	if second <= first {
		t.Errorf("run IDs should grow: %d then %d", first, second)
	}

	runs, err := s.Runs(10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Runs = %d entries, want 2", len(runs))
	}
	if runs[0].ID != second {
		t.Error("runs should list newest first")
	}
	got := runs[1]
	if got.Elements != 10 || got.Errors != 1 || got.Warnings != 1 || got.Infos != 1 {
		t.Errorf("stored counters = %+v", got)
	}
	if got.StartedAt.IsZero() {
		t.Error("StartedAt should round-trip")
	}
}

func TestFindingsRoundTrip(t *testing.T) {
	s := openStore(t)

	runID, err := s.RecordRun(3, []rules.Finding{
		{Path: "/Pkg/B", RuleID: "STR002", Severity: rules.SeverityWarning, Message: "w"},
		{Path: "/Pkg/A", RuleID: "REF001", Severity: rules.SeverityError, Message: "e"},
	})
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	stored, err := s.Findings(runID)
	if err != nil {
		t.Fatalf("Findings failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Findings = %d entries, want 2", len(stored))
	}
	if stored[0].Path != "/Pkg/A" || stored[0].Severity != rules.SeverityError {
		t.Errorf("first stored finding = %+v, want the error on /Pkg/A", stored[0])
	}
	if stored[1].Severity != rules.SeverityWarning {
		t.Errorf("second stored finding = %+v", stored[1])
	}

	if empty, err := s.Findings(runID + 99); err != nil || len(empty) != 0 {
		t.Errorf("unknown run should yield no findings: %v, %v", empty, err)
	}
}
