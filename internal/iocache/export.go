package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/parquet"
)

// Export file suffixes appended to the --output-file prefix.
const (
	analysisRunsSuffix  = ".analysis_runs.parquet"
	branchMetricsSuffix = ".branch_metrics.parquet"
)

// ExecuteAnalysisExport exports the history held by the global Manager to Parquet files.
func ExecuteAnalysisExport(w io.Writer, outputFile string) error {
	return ExportAnalysis(w, Manager.GetAnalysisStore(), outputFile)
}

// ExportAnalysis writes <outputFile>.analysis_runs.parquet and <outputFile>.branch_metrics.parquet.
func ExportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured; set --analysis-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total branch records: %d\n", status.TableSizes[branchMetricsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	metrics, err := store.GetAllBranchMetrics()
	if err != nil {
		return fmt.Errorf("failed to retrieve branch metrics: %w", err)
	}

	parquetRuns := parquet.ConvertAnalysisRunRecords(runs)
	runsFile := outputFile + analysisRunsSuffix
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(parquetRuns), runsFile)

	parquetMetrics := parquet.ConvertBranchMetricsRecords(metrics)
	metricsFile := outputFile + branchMetricsSuffix
	if err := parquet.WriteBranchMetricsParquet(parquetMetrics, metricsFile); err != nil {
		return fmt.Errorf("failed to write branch metrics: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d branch records to: %s\n", len(parquetMetrics), metricsFile)

	return nil
}
