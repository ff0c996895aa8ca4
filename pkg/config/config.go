// Package config loads run configuration from an optional YAML file with
// environment-variable overrides, in that order of precedence: defaults,
// then file, then environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"clientreport/pkg/engine"
)

// Config is the full run configuration.
type Config struct {
	// ReferencePeriod anchors every staleness computation in the run,
	// "YYYY-MM". Empty means the current calendar month.
	ReferencePeriod string `yaml:"reference_period"`

	// StaleAfterMonths is the elapsed-months bound beyond which a client
	// needs reassignment.
	StaleAfterMonths int `yaml:"stale_after_months"`

	FuzzyMatching  bool    `yaml:"fuzzy_matching"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// OrphanPolicy: "always_flag" or "same_rule".
	OrphanPolicy string `yaml:"orphan_policy"`

	OutputPath string `yaml:"output_path"`
}

// Load reads configuration from path (skipped when the file does not exist
// and path is the default), then applies environment overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	envOverride(&cfg.ReferencePeriod, "CLIENTREPORT_REFERENCE_PERIOD")
	envOverrideInt(&cfg.StaleAfterMonths, "CLIENTREPORT_STALE_AFTER_MONTHS")
	envOverrideBool(&cfg.FuzzyMatching, "CLIENTREPORT_FUZZY_MATCHING")
	envOverrideFloat(&cfg.FuzzyThreshold, "CLIENTREPORT_FUZZY_THRESHOLD")
	envOverride(&cfg.OrphanPolicy, "CLIENTREPORT_ORPHAN_POLICY")
	envOverride(&cfg.OutputPath, "CLIENTREPORT_OUTPUT_PATH")

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.StaleAfterMonths == 0 {
		c.StaleAfterMonths = engine.DefaultStaleAfterMonths
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = engine.DefaultFuzzyThreshold
	}
	if c.OrphanPolicy == "" {
		c.OrphanPolicy = string(engine.OrphanAlwaysFlag)
	}
	if c.OutputPath == "" {
		c.OutputPath = "client_activity_report.xlsx"
	}
}

// EngineConfig resolves the reference period and builds the engine
// configuration. now supplies the fallback anchor when no period is
// configured, so callers can pin the clock in tests.
func (c Config) EngineConfig(now time.Time) (engine.Config, error) {
	refYear, refMonth := now.Year(), int(now.Month())
	if c.ReferencePeriod != "" {
		var err error
		refYear, refMonth, err = ParsePeriod(c.ReferencePeriod)
		if err != nil {
			return engine.Config{}, err
		}
	}

	ec := engine.Config{
		RefYear:          refYear,
		RefMonth:         refMonth,
		StaleAfterMonths: c.StaleAfterMonths,
		Fuzzy:            c.FuzzyMatching,
		FuzzyThreshold:   c.FuzzyThreshold,
		OrphanPolicy:     engine.OrphanPolicy(c.OrphanPolicy),
	}
	return ec, ec.Validate()
}

// ParsePeriod reads a "YYYY-MM" period string.
func ParsePeriod(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period %q (want YYYY-MM)", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid period year %q", parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid period month %q", parts[1])
	}
	return year, month, nil
}

func envOverride(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func envOverrideInt(target *int, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			*target = n
		}
	}
}

func envOverrideFloat(target *float64, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			*target = f
		}
	}
}

func envOverrideBool(target *bool, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			*target = b
		}
	}
}
