package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Report represents the test execution report
type Report struct {
	RunID       string
	Timestamp   time.Time
	BaseURL     string
	TotalTests  int
	PassedTests int
	FailedTests int
	Duration    time.Duration
	Results     []TestResult
}

// TestResult represents a single scenario result
type TestResult struct {
	Scenario    string
	Severity    string
	Method      string
	URL         string
	Status      int
	Duration    time.Duration
	Outcome     string
	FailureKind string `json:",omitempty"`
	Error       string `json:",omitempty"`
	Response    any    `json:",omitempty"`
}

// Sink receives a finished report
type Sink interface {
	Write(ctx context.Context, report Report) error
}

// Reporter handles the generation of test reports
type Reporter struct {
	config ReportingConfig
	sinks  []Sink
}

// ReportingConfig holds the configuration for reporting
type ReportingConfig struct {
	Format    []string
	OutputDir string
	Detailed  bool
	Database  DBConfig
}

// NewReporter creates a new instance of Reporter
func NewReporter(config ReportingConfig) *Reporter {
	return &Reporter{
		config: config,
	}
}

// AddSink registers an extra destination for reports
func (r *Reporter) AddSink(sink Sink) {
	r.sinks = append(r.sinks, sink)
}

// NewReport summarizes results into a report with a fresh run id
func NewReport(baseURL string, duration time.Duration, results []TestResult) Report {
	report := Report{
		RunID:      uuid.New().String(),
		Timestamp:  time.Now(),
		BaseURL:    baseURL,
		TotalTests: len(results),
		Duration:   duration,
		Results:    results,
	}

	// Calculate passed and failed tests
	for _, result := range results {
		if result.Error == "" {
			report.PassedTests++
		} else {
			report.FailedTests++
		}
	}
	return report
}

// GenerateReport writes the report in every configured format and to every sink
func (r *Reporter) GenerateReport(ctx context.Context, report Report) error {
	if !r.config.Detailed {
		report.Results = stripResponses(report.Results)
	}

	// Generate reports in specified formats
	for _, format := range r.config.Format {
		switch format {
		case "json":
			if _, err := r.generateJSONReport(report); err != nil {
				return fmt.Errorf("failed to generate JSON report: %w", err)
			}
		case "sql":
			sink, err := OpenSQLSink(ctx, r.config.Database)
			if err != nil {
				return fmt.Errorf("failed to open SQL report sink: %w", err)
			}
			err = sink.Write(ctx, report)
			closeErr := sink.Close()
			if err != nil {
				return fmt.Errorf("failed to write SQL report: %w", err)
			}
			if closeErr != nil {
				return fmt.Errorf("failed to close SQL report sink: %w", closeErr)
			}
		default:
			return fmt.Errorf("unsupported report format: %s", format)
		}
	}

	for _, sink := range r.sinks {
		if err := sink.Write(ctx, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}

func stripResponses(results []TestResult) []TestResult {
	out := make([]TestResult, len(results))
	for i, result := range results {
		result.Response = nil
		out[i] = result
	}
	return out
}

// generateJSONReport generates a JSON format report and returns its path
func (r *Reporter) generateJSONReport(report Report) (string, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return "", err
	}

	// Generate report file path
	reportPath := filepath.Join(r.config.OutputDir, fmt.Sprintf("report_%s.json", report.Timestamp.Format("20060102_150405")))

	// Marshal report to JSON
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	// Write report to file
	return reportPath, os.WriteFile(reportPath, data, 0644)
}
