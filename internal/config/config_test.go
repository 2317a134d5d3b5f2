package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arxml-community/arxml-dev-tools/internal/rules"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `schema_release = "AUTOSAR_00049"
report_db = "custom.db"
cache_max_age_seconds = 60
disabled_rules = ["CONT001", "CONT002"]

[severities]
NAM002 = "error"
STR002 = "info"
`)

	cfg := Load(dir)
	if cfg.SchemaRelease != "AUTOSAR_00049" {
		t.Errorf("SchemaRelease = %q", cfg.SchemaRelease)
	}
	if cfg.ReportDB != "custom.db" {
		t.Errorf("ReportDB = %q", cfg.ReportDB)
	}
	if cfg.CacheMaxAge() != time.Minute {
		t.Errorf("CacheMaxAge = %v, want 1m", cfg.CacheMaxAge())
	}
	if len(cfg.DisabledRules) != 2 {
		t.Errorf("DisabledRules = %v", cfg.DisabledRules)
	}
	if cfg.Severities["NAM002"] != "error" {
		t.Errorf("Severities = %v", cfg.Severities)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.SchemaRelease != "AUTOSAR_00050" || cfg.ReportDB != "findings.db" {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
	if cfg.CacheMaxAge() != 5*time.Minute {
		t.Errorf("default CacheMaxAge = %v", cfg.CacheMaxAge())
	}
}

func TestLoadBrokenFile(t *testing.T) {
	dir := writeConfig(t, "schema_release = [not toml")
	cfg := Load(dir)
	if cfg.SchemaRelease != "AUTOSAR_00050" {
		t.Errorf("broken file should yield defaults, got %+v", cfg)
	}
}

func TestApply(t *testing.T) {
	engine := rules.NewEngine()
	for _, r := range rules.Defaults() {
		engine.Register(r)
	}

	cfg := Default()
	cfg.DisabledRules = []string{"CONT001", "NOPE999"}
	cfg.Severities = map[string]string{
		"NAM002":  "error",
		"STR001":  "bogus",
		"NOPE999": "error",
	}
	cfg.Apply(engine)

	if engine.Rule("CONT001").Enabled {
		t.Error("CONT001 should be disabled")
	}
	if got := engine.Rule("NAM002").Severity; got != rules.SeverityError {
		t.Errorf("NAM002 severity = %v, want error", got)
	}
	if got := engine.Rule("STR001").Severity; got != rules.SeverityError {
		t.Errorf("unknown severity string must leave STR001 at its default, got %v", got)
	}
}
