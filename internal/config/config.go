// Package config loads the project's .axt.toml. Configuration never blocks a
// run: a missing or broken file falls back to defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/rules"
)

const FileName = ".axt.toml"

type Config struct {
	SchemaRelease string `toml:"schema_release"`
	ReportDB      string `toml:"report_db"`

	// CacheMaxAgeSeconds bounds how long a validation result may be reused
	// even without index mutations.
	CacheMaxAgeSeconds int `toml:"cache_max_age_seconds"`

	DisabledRules []string          `toml:"disabled_rules"`
	Severities    map[string]string `toml:"severities"`
}

func Default() *Config {
	return &Config{
		SchemaRelease:      "AUTOSAR_00050",
		ReportDB:           "findings.db",
		CacheMaxAgeSeconds: 300,
	}
}

// Load reads projectRoot/.axt.toml over the defaults.
func Load(projectRoot string) *Config {
	cfg := Default()

	path := filepath.Join(projectRoot, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(content, cfg); err != nil {
		logger.Printf("ignoring %s: %v\n", path, err)
		return Default()
	}
	return cfg
}

func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeSeconds) * time.Second
}

// Apply disables configured rules and rewrites rule severities on the engine.
// Unknown rule IDs are ignored so a config file can cover optional rules.
func (c *Config) Apply(engine *rules.Engine) {
	for _, id := range c.DisabledRules {
		engine.SetEnabled(id, false)
	}
	for id, severity := range c.Severities {
		r := engine.Rule(id)
		if r == nil {
			continue
		}
		switch severity {
		case "error":
			r.Severity = rules.SeverityError
		case "warning":
			r.Severity = rules.SeverityWarning
		case "info":
			r.Severity = rules.SeverityInfo
		default:
			logger.Printf("ignoring unknown severity %q for rule %s\n", severity, id)
		}
	}
}
