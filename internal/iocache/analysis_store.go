package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable  = "branchspot_analysis_runs"
	branchMetricsTable = "branchspot_branch_metrics"
)

// analysisTables lists the history tables in creation order.
var analysisTables = []string{analysisRunsTable, branchMetricsTable}

// branchMetricsColumns is the column order shared by inserts and exports.
const branchMetricsColumns = `analysis_id, branch_name, analysis_time, kind, depth, commit_count, ahead, behind,
	contributor_count, conflict_file_count, size, stale, mergeable, degraded, last_activity`

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
// The none backend yields a store that records nothing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		analysisRunsTable:  getCreateAnalysisRunsQuery(backend),
		branchMetricsTable: getCreateBranchMetricsQuery(backend),
	}
	for _, table := range analysisTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for the runs table.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repo_path VARCHAR(1024) NOT NULL,
				default_branch VARCHAR(255),
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_branches_analyzed INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				repo_path TEXT NOT NULL,
				default_branch TEXT,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_branches_analyzed INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo_path TEXT NOT NULL,
				default_branch TEXT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_branches_analyzed INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateBranchMetricsQuery returns the CREATE TABLE query for the branch metrics table.
func getCreateBranchMetricsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(branchMetricsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				branch_name VARCHAR(255) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				depth VARCHAR(16) NOT NULL,
				commit_count INT NOT NULL,
				ahead INT NOT NULL,
				behind INT NOT NULL,
				contributor_count INT NOT NULL,
				conflict_file_count INT NOT NULL,
				size INT NOT NULL,
				stale BOOLEAN NOT NULL,
				mergeable BOOLEAN NOT NULL,
				degraded BOOLEAN NOT NULL,
				last_activity DATETIME(6),
				PRIMARY KEY (analysis_id, branch_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				branch_name TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				kind TEXT NOT NULL,
				depth TEXT NOT NULL,
				commit_count INT NOT NULL,
				ahead INT NOT NULL,
				behind INT NOT NULL,
				contributor_count INT NOT NULL,
				conflict_file_count INT NOT NULL,
				size INT NOT NULL,
				stale BOOLEAN NOT NULL,
				mergeable BOOLEAN NOT NULL,
				degraded BOOLEAN NOT NULL,
				last_activity TIMESTAMPTZ,
				PRIMARY KEY (analysis_id, branch_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				branch_name TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				kind TEXT NOT NULL,
				depth TEXT NOT NULL,
				commit_count INTEGER NOT NULL,
				ahead INTEGER NOT NULL,
				behind INTEGER NOT NULL,
				contributor_count INTEGER NOT NULL,
				conflict_file_count INTEGER NOT NULL,
				size INTEGER NOT NULL,
				stale BOOLEAN NOT NULL,
				mergeable BOOLEAN NOT NULL,
				degraded BOOLEAN NOT NULL,
				last_activity TEXT,
				PRIMARY KEY (analysis_id, branch_name)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(repoPath string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{repoPath, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, defaultBranch string, totalBranches int) error {
	if as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var start timeScanner
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholder(as.backend, 1))
	if err := as.db.QueryRow(query, analysisID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, default_branch = %s, total_branches_analyzed = %s WHERE analysis_id = %s`,
		quotedTableName,
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3),
		placeholder(as.backend, 4), placeholder(as.backend, 5))
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, defaultBranch, totalBranches, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}

	return nil
}

// RecordBranchMetrics stores the metrics of one analyzed branch.
func (as *AnalysisStoreImpl) RecordBranchMetrics(analysisID int64, m schema.BranchMetrics) error {
	if as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(branchMetricsTable, as.backend), branchMetricsColumns, placeholders(as.backend, 15))
	args := []any{
		analysisID, m.BranchName, formatTime(m.AnalysisTime, as.backend), string(m.Kind), string(m.Depth),
		m.CommitCount, m.Ahead, m.Behind, m.ContributorCount, m.ConflictFileCount, m.Size,
		m.Stale, m.Mergeable, m.Degraded, formatOptionalTime(m.LastActivity, as.backend),
	}
	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert branch metrics for %s: %w", m.BranchName, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeScanner
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_branches_analyzed), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalBranchesAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total branches analyzed: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, repo_path, default_branch, start_time, end_time, run_duration_ms,
		total_branches_analyzed, config_params FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var defaultBranch sql.NullString
		var start, end timeScanner
		if err := rows.Scan(&record.AnalysisID, &record.RepoPath, &defaultBranch, &start, &end,
			&record.RunDurationMs, &record.TotalBranchesAnalyzed, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		record.DefaultBranch = defaultBranch.String
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}

	return results, nil
}

// GetAllBranchMetrics retrieves all branch metrics from the store.
func (as *AnalysisStoreImpl) GetAllBranchMetrics() ([]schema.BranchMetricsRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY analysis_id, branch_name`,
		branchMetricsColumns, quoteTableName(branchMetricsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query branch metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BranchMetricsRecord
	for rows.Next() {
		var r schema.BranchMetricsRecord
		var analysisTime, lastActivity timeScanner
		if err := rows.Scan(&r.AnalysisID, &r.BranchName, &analysisTime, &r.Kind, &r.Depth,
			&r.CommitCount, &r.Ahead, &r.Behind, &r.ContributorCount, &r.ConflictFileCount, &r.Size,
			&r.Stale, &r.Mergeable, &r.Degraded, &lastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan branch metrics: %w", err)
		}
		r.AnalysisTime = analysisTime.Time
		r.LastActivity = lastActivity.ptr()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch metrics: %w", err)
	}

	return results, nil
}
