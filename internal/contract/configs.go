package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/branchspot/schema"
)

// Default values for configuration.
const (
	DefaultTopContributors = 10
	MaxTopContributors     = 100
	MaxWorkers             = 256
)

// CacheTTL bounds the age of a cached branch result. Commit frequency windows
// are relative to now, so results must not outlive a day.
const CacheTTL = 24 * time.Hour

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath          string
	Workers           int
	Depth             schema.AnalysisDepth
	MaxBranches       int
	StaleDays         int
	CacheEnabled      bool
	DefaultCandidates []string
	TopContributors   int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Detail     bool
	UseEmojis  bool // Enable emojis in output headers
	UseColors  bool // Enable colored labels in table output

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Analysis options ---
	Workers           int    `mapstructure:"workers"`
	Depth             string `mapstructure:"depth"`
	MaxBranches       int    `mapstructure:"max-branches"`
	StaleDays         int    `mapstructure:"stale-days"`
	Cache             string `mapstructure:"cache"`
	DefaultCandidates string `mapstructure:"default-candidates"`
	TopContributors   int    `mapstructure:"top-contributors"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Detail     bool   `mapstructure:"detail"`
	Emoji      string `mapstructure:"emoji"`
	Color      string `mapstructure:"color"`

	// --- Storage ---
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`

	// --- Diagnostics ---
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.DefaultCandidates != nil {
		clone.DefaultCandidates = make([]string, len(c.DefaultCandidates))
		copy(clone.DefaultCandidates, c.DefaultCandidates)
	}
	return &clone
}

// Options projects the configuration onto the options of a single analysis run.
func (c *Config) Options() schema.AnalysisOptions {
	candidates := make([]string, len(c.DefaultCandidates))
	copy(candidates, c.DefaultCandidates)
	return schema.AnalysisOptions{
		MaxConcurrency:     c.Workers,
		Depth:              c.Depth,
		MaxBranches:        c.MaxBranches,
		StaleDaysThreshold: c.StaleDays,
		CacheEnabled:       c.CacheEnabled,
		DefaultCandidates:  candidates,
	}.WithDefaults()
}

// ConfigParams returns the run parameters recorded alongside analysis history.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"workers":            c.Workers,
		"depth":              string(c.Depth),
		"max_branches":       c.MaxBranches,
		"stale_days":         c.StaleDays,
		"cache":              c.CacheEnabled,
		"default_candidates": c.DefaultCandidates,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveGitPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis backend: %w", err)
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.MetricsAddr = input.MetricsAddr
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cache, err := ParseBoolString(input.Cache)
	if err != nil {
		return fmt.Errorf("invalid --cache value: %w", err)
	}
	cfg.CacheEnabled = cache

	// --- 1. Workers Validation ---
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Depth Validation ---
	cfg.Depth = schema.AnalysisDepth(strings.ToLower(input.Depth))
	if _, ok := schema.ValidAnalysisDepths[cfg.Depth]; !ok {
		return fmt.Errorf("invalid depth '%s'. must be fast, normal, deep", input.Depth)
	}

	// --- 3. Limits Validation ---
	if input.MaxBranches < 0 {
		return fmt.Errorf("max-branches cannot be negative (received %d)", input.MaxBranches)
	}
	cfg.MaxBranches = input.MaxBranches
	if input.StaleDays < 0 {
		return fmt.Errorf("stale-days cannot be negative (received %d)", input.StaleDays)
	}
	cfg.StaleDays = input.StaleDays
	if input.TopContributors <= 0 || input.TopContributors > MaxTopContributors {
		return fmt.Errorf("top-contributors must be greater than 0 and cannot exceed %d (received %d)", MaxTopContributors, input.TopContributors)
	}
	cfg.TopContributors = input.TopContributors

	// --- 4. Default Branch Candidates ---
	cfg.DefaultCandidates = ParseList(input.DefaultCandidates)
	if len(cfg.DefaultCandidates) == 0 {
		cfg.DefaultCandidates = append([]string(nil), schema.DefaultCandidates...)
	}

	// --- 5. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveGitPath resolves the Git repository root from the user-provided path.
// A file path resolves through its parent directory.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitContextPath := absSearchPath
	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return fmt.Errorf("%q is not inside a git repository: %w", searchPath, err)
	}
	cfg.RepoPath = gitRoot
	return nil
}
