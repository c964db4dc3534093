// =============================================================================
// distiviz - Configuration Module
// =============================================================================
//
// This module loads the application configuration. A single file holds the
// cache, ingestion and output settings plus optional per-dataset field
// transformations.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults
//   2. config.yaml / config.yml / config.toml (format chosen by extension)
//   3. .env file in the working directory, if present
//   4. DISTIVIZ_* environment variables
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given. A missing file at
// this path is not an error.
const DefaultConfigPath = "./config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir is where exported CSV files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// InputArchiveDir receives ingested workbooks when archiving is requested.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" toml:"input_archive_dir"`

	// AliasesDir holds extra header alias packs (*.yaml). Optional.
	// Default: "./aliases"
	AliasesDir string `yaml:"aliases_dir" toml:"aliases_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines exported file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {dataset}   - Dataset name (apps, dregs, ...)
	// Default: "{dataset}_{timestamp}.csv"
	OutputNameFormat string `yaml:"output_name_format" toml:"output_name_format"`

	Cache  CacheConfig  `yaml:"cache" toml:"cache"`
	Ingest IngestConfig `yaml:"ingest" toml:"ingest"`

	// Transforms lists field transformations per dataset, applied after the
	// rows are shaped. Keys are dataset names ("apps", "dregs", ...).
	Transforms map[string][]TransformationRule `yaml:"transforms" toml:"transforms"`
}

// CacheConfig controls where parsed datasets are kept between runs.
type CacheConfig struct {
	// Dir is the base directory for all cache files.
	// Default: "./.distiviz"
	Dir string `yaml:"dir" toml:"dir"`

	// DurablePath is the SQLite database file.
	// Default: "<dir>/datasets.db"
	DurablePath string `yaml:"durable_path" toml:"durable_path"`

	// LegacyDir is the simple key-value directory used by older releases and
	// as the fallback store.
	// Default: "<dir>/legacy"
	LegacyDir string `yaml:"legacy_dir" toml:"legacy_dir"`

	// LegacyPrefix namespaces keys in the simple store.
	// Default: "distiviz:"
	LegacyPrefix string `yaml:"legacy_prefix" toml:"legacy_prefix"`

	// LegacyQuotaBytes caps the total size of the simple store.
	// Default: 5 MiB
	LegacyQuotaBytes int64 `yaml:"legacy_quota_bytes" toml:"legacy_quota_bytes"`

	// Disabled keeps everything in memory for the lifetime of the process.
	Disabled bool `yaml:"disabled" toml:"disabled"`
}

// IngestConfig tunes sheet lookup, header detection and row filtering.
type IngestConfig struct {
	// HeaderScanRows bounds how many leading rows are searched for a header.
	// Default: 50
	HeaderScanRows int `yaml:"header_scan_rows" toml:"header_scan_rows"`

	// StrongHeaderScore stops the header search early once a row recognises
	// at least this many fields.
	// Default: 6
	StrongHeaderScore int `yaml:"strong_header_score" toml:"strong_header_score"`

	// AppsSheet is the sheet holding the distributor confidence matrix.
	// Default: "2-Confidence Level Focus Appl."
	AppsSheet string `yaml:"apps_sheet" toml:"apps_sheet"`

	// DregSheet is the preferred DREG sheet; the first sheet is used otherwise.
	// Default: "Data"
	DregSheet string `yaml:"dreg_sheet" toml:"dreg_sheet"`

	// DregAllowedRegion keeps only DREG rows whose Region equals this value
	// (case-insensitive). Set to "-" to keep every region.
	// Default: "AP"
	DregAllowedRegion string `yaml:"dreg_allowed_region" toml:"dreg_allowed_region"`

	// DummySentinel marks placeholder DREG rows that are always dropped.
	// Default: "DUMMY - DO NOT USE FOR TRACKING"
	DummySentinel string `yaml:"dummy_sentinel" toml:"dummy_sentinel"`
}

// AllowedRegion returns the effective region filter; "" means no filter.
func (c IngestConfig) AllowedRegion() string {
	if c.DregAllowedRegion == "-" {
		return ""
	}
	return c.DregAllowedRegion
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a canonical field.
type TransformationRule struct {
	// Field is the canonical field name, e.g. "Distributor".
	Field string `yaml:"field" toml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions" toml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "prepend_string" : Add Value to the beginning
	//   - "append_string"  : Add Value to the end
	//   - "uppercase"      : Convert to uppercase
	//   - "lowercase"      : Convert to lowercase
	//   - "trim"           : Remove leading and trailing whitespace
	//   - "replace"        : Replace Find with Value
	//   - "regex_replace"  : Replace the Find pattern with Value
	//   - "lookup"         : Replace the value using LookupTable
	//   - "default"        : Use Value when the field is blank
	Type string `yaml:"type" toml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value" toml:"value"`

	// Find is used by "replace" and "regex_replace".
	Find string `yaml:"find,omitempty" toml:"find,omitempty"`

	// LookupTable is used by "lookup". Keys match case-insensitively.
	//
	// Example (folding distributor spellings):
	//   lookup_table:
	//     "arrow asia": "Arrow"
	//     "arrow electronics": "Arrow"
	LookupTable map[string]string `yaml:"lookup_table,omitempty" toml:"lookup_table,omitempty"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: Path to a .yaml, .yml or .toml file. When it equals
//     DefaultConfigPath and does not exist, defaults are used.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var cfg MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := decode(configPath, data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && (configPath == DefaultConfigPath || configPath == ""):
		// No config file: run on defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func decode(path string, data []byte, cfg *MainConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// applyEnvOverrides copies DISTIVIZ_* variables over file values.
func applyEnvOverrides(cfg *MainConfig) {
	if v := os.Getenv("DISTIVIZ_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("DISTIVIZ_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DISTIVIZ_DREG_REGION"); v != "" {
		cfg.Ingest.DregAllowedRegion = v
	}
	if v := os.Getenv("DISTIVIZ_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("DISTIVIZ_CACHE_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Disabled = b
		}
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.AliasesDir == "" {
		config.AliasesDir = "./aliases"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{dataset}_{timestamp}.csv"
	}

	c := &config.Cache
	if c.Dir == "" {
		c.Dir = "./.distiviz"
	}
	if c.DurablePath == "" {
		c.DurablePath = filepath.Join(c.Dir, "datasets.db")
	}
	if c.LegacyDir == "" {
		c.LegacyDir = filepath.Join(c.Dir, "legacy")
	}
	if c.LegacyPrefix == "" {
		c.LegacyPrefix = "distiviz:"
	}
	if c.LegacyQuotaBytes == 0 {
		c.LegacyQuotaBytes = 5 << 20
	}

	in := &config.Ingest
	if in.HeaderScanRows == 0 {
		in.HeaderScanRows = 50
	}
	if in.StrongHeaderScore == 0 {
		in.StrongHeaderScore = 6
	}
	if in.AppsSheet == "" {
		in.AppsSheet = "2-Confidence Level Focus Appl."
	}
	if in.DregSheet == "" {
		in.DregSheet = "Data"
	}
	if in.DregAllowedRegion == "" {
		in.DregAllowedRegion = "AP"
	}
	if in.DummySentinel == "" {
		in.DummySentinel = "DUMMY - DO NOT USE FOR TRACKING"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if config.Ingest.HeaderScanRows < 1 {
		return fmt.Errorf("ingest.header_scan_rows must be positive, got %d", config.Ingest.HeaderScanRows)
	}
	if config.Ingest.StrongHeaderScore < 1 {
		return fmt.Errorf("ingest.strong_header_score must be positive, got %d", config.Ingest.StrongHeaderScore)
	}
	if config.Cache.LegacyQuotaBytes < 0 {
		return fmt.Errorf("cache.legacy_quota_bytes must not be negative")
	}
	for ds, rules := range config.Transforms {
		for _, rule := range rules {
			if rule.Field == "" {
				return fmt.Errorf("transforms.%s: rule without field", ds)
			}
			for _, a := range rule.Actions {
				if !knownAction(a.Type) {
					return fmt.Errorf("transforms.%s.%s: unknown action %q", ds, rule.Field, a.Type)
				}
			}
		}
	}
	return nil
}

func knownAction(t string) bool {
	switch t {
	case "prepend_string", "append_string", "uppercase", "lowercase",
		"trim", "replace", "regex_replace", "lookup", "default":
		return true
	}
	return false
}
