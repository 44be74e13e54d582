package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/iocache"
	"github.com/huangsam/branchspot/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackend reads and validates the analysis backend settings.
// An empty backend means history is disabled.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("analysis-backend")
	connStr := viper.GetString("analysis-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no caching for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis history: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr

	return nil
}

// historyCmd focused on analysis history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by analysis commands. This avoids Git repo validation
// and complex config processing for simple storage operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded analysis runs and exports",
	Long: `Manage the history of analysis runs used for trend tracking and reporting.

When --analysis-backend is set, every analysis run is recorded with:
- Run metadata (repository, default branch, timestamps, configuration, duration)
- Per-branch metrics (commits, divergence, contributors, size, state flags)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check history status
  branchspot history status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  branchspot history export --analysis-backend sqlite --output-file branchspot`,
}

// historyClearCmd clears the analysis history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded analysis runs",
	Long: `Delete all recorded analysis runs and branch metrics.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  branchspot history export --output-file backup
  branchspot history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before removing its file
		iocache.CloseStores()
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, sqlitePath(cfg.AnalysisDBConnect, contract.GetAnalysisDBFilePath()), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis history", err)
		}
		fmt.Println("Analysis history cleared successfully.")
	},
}

// historyStatusCmd shows analysis history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display analysis history statistics and connection details",
	Long: `Show detailed information about recorded analysis runs.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total branches analyzed across all runs
- Row counts per table

Examples:
  # Check history status
  branchspot history status --analysis-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			iocache.PrintAnalysisStatus(os.Stdout, schema.AnalysisStatus{Backend: string(cfg.AnalysisBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis history status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// historyExportCmd exports analysis history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded analysis data to Parquet format.

Writes two files next to the --output-file prefix:
- <prefix>.analysis_runs.parquet - metadata about each analysis run
- <prefix>.branch_metrics.parquet - per-branch metrics of every run

Requires: --output-file parameter

Examples:
  # Export all data
  branchspot history export --output-file branchspot

  # Query with DuckDB
  duckdb -c "SELECT * FROM read_parquet('branchspot.branch_metrics.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.AnalysisBackend == schema.NoneBackend {
			contract.LogFatal("Failed to export analysis history", errNoAnalysisBackend)
		}
		if err := iocache.ExecuteAnalysisExport(os.Stdout, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the analysis store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  branchspot history migrate --analysis-backend sqlite

  # Migrate to specific version
  branchspot history migrate --target-version 2

  # Rollback to initial state
  branchspot history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.AnalysisBackend == schema.NoneBackend {
			contract.LogFatal("Failed to run migrations", errNoAnalysisBackend)
		}
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(os.Stdout, cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
