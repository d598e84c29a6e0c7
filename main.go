package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"weather-contract-tester/internal/config"
	"weather-contract-tester/internal/contract"
	"weather-contract-tester/internal/executor"
	"weather-contract-tester/internal/logger"
	"weather-contract-tester/internal/reporter"
	"weather-contract-tester/internal/schema"
	"weather-contract-tester/internal/spec"
	"weather-contract-tester/internal/testdata"
	"weather-contract-tester/internal/twin"

	"github.com/rs/zerolog"
)

func convertTestResults(execResults []executor.TestResult) []reporter.TestResult {
	repResults := make([]reporter.TestResult, len(execResults))
	for i, r := range execResults {
		// Try to parse response as JSON if it's not empty
		var response any
		if r.Response != "" {
			if err := json.Unmarshal([]byte(r.Response), &response); err != nil {
				// If not JSON, use as string
				response = r.Response
			}
		}

		var errText string
		if r.Error != nil {
			errText = r.Error.Error()
		}

		repResults[i] = reporter.TestResult{
			Scenario:    r.Scenario,
			Severity:    r.Severity,
			Method:      r.Method,
			URL:         r.URL,
			Status:      r.Status,
			Duration:    r.Duration,
			Outcome:     r.Outcome,
			FailureKind: r.FailureKind,
			Error:       errText,
			Response:    response,
		}
	}
	return repResults
}

func usage() {
	fmt.Println("Usage: weather-contract-tester <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run       run the scenario suite against the configured service (default)")
	fmt.Println("  generate  write a scenario suite skeleton from the API contract")
	fmt.Println("  twin      serve an offline emulation of the weather endpoint")
}

func main() {
	command := "run"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	switch command {
	case "run":
		os.Exit(runCommand(args))
	case "generate":
		generateCommand(args)
	case "twin":
		twinCommand(args)
	default:
		usage()
		os.Exit(2)
	}
}

// runCommand executes the suite and returns the process exit code
func runCommand(args []string) int {
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := runCmd.String("config", config.DefaultPath, "Path to the YAML configuration file")
	filter := runCmd.String("suite", "", "Only run scenarios whose name contains this text")
	if err := runCmd.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(logger.Config{
		Dir:     cfg.Logging.Dir,
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	maxLatency, err := cfg.Test.MaxLatencyDuration()
	if err != nil {
		appLogger.Error().Err(err).Msg("Invalid test configuration")
		return 1
	}

	responseDetail, err := spec.ParseLogDetail(cfg.Logging.ResponseDetail)
	if err != nil {
		appLogger.Error().Err(err).Msg("Invalid logging configuration")
		return 1
	}

	session, err := newSession(cfg)
	if err != nil {
		appLogger.Error().Err(err).Msg("Failed to build request specification")
		return 1
	}

	// Load scenarios
	suite, err := testdata.NewLoader(cfg.Test.SuiteDir).LoadSuite()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No scenario suite found. Generate a skeleton first:")
			fmt.Println("  weather-contract-tester generate -output", cfg.Test.SuiteDir)
			fmt.Printf("Then fill it in and save it as %s/scenarios.json\n", cfg.Test.SuiteDir)
			return 1
		}
		appLogger.Error().Err(err).Msg("Failed to load scenario suite")
		return 1
	}
	scenarios := suite.Filter(*filter)
	if len(scenarios) == 0 {
		appLogger.Warn().Str("filter", *filter).Msg("No scenario matches the filter")
		return 1
	}

	opts := []executor.Option{executor.WithLogger(appLogger.Logger)}
	c, err := contract.Open(ctx, cfg.Test.Contract)
	if err != nil {
		appLogger.Error().Err(err).Msg("Failed to load API contract")
		return 1
	}
	opts = append(opts, executor.WithContract(c))
	if cfg.Test.SchemaDir != "" {
		opts = append(opts, executor.WithValidator(schema.NewValidator(os.DirFS(cfg.Test.SchemaDir))))
	}

	// Initialize test executor
	testExecutor := executor.NewTestExecutor(executor.TestConfig{
		Concurrent:      cfg.Test.Concurrent,
		MaxWorkers:      cfg.Test.MaxWorkers,
		Timeout:         cfg.Test.Timeout,
		MaxLatency:      maxLatency,
		ResponseOptions: []spec.ResponseOption{
			spec.WithResponseLogDetail(responseDetail),
		},
	}, opts...)

	// Initialize reporter
	testReporter := reporter.NewReporter(reporter.ReportingConfig{
		Format:    cfg.Reporting.Format,
		OutputDir: cfg.Reporting.OutputDir,
		Detailed:  cfg.Reporting.Detailed,
		Database: reporter.DBConfig{
			Type:     cfg.Reporting.Database.Type,
			Host:     cfg.Reporting.Database.Host,
			Port:     cfg.Reporting.Database.Port,
			Database: cfg.Reporting.Database.Database,
			User:     cfg.Reporting.Database.User,
			Password: cfg.Reporting.Database.Password,
		},
	})

	appLogger.Info().Int("scenarios", len(scenarios)).Str("suite", suite.Name).Msg("Running contract scenarios")

	start := time.Now()

	// Run tests
	results := testExecutor.RunScenarios(ctx, session, scenarios)
	report := reporter.NewReport(cfg.Environment.BaseURL, time.Since(start), convertTestResults(results))

	for _, r := range report.Results {
		event := appLogger.Info()
		if r.Outcome != executor.OutcomePassed {
			event = appLogger.Error().Str("kind", r.FailureKind).Str("error", r.Error)
		}
		event.Str("scenario", r.Scenario).Int("status", r.Status).Dur("duration", r.Duration).Msg(r.Outcome)
	}

	// Generate report
	if err := testReporter.GenerateReport(ctx, report); err != nil {
		appLogger.Error().Err(err).Msg("Failed to generate report")
		return 1
	}

	fmt.Printf("%d scenarios: %d passed, %d failed\n", report.TotalTests, report.PassedTests, report.FailedTests)
	if report.FailedTests > 0 {
		return 1
	}
	return 0
}

// newSession installs the request specification built from configuration
func newSession(cfg *config.Config) (*spec.Session, error) {
	requestDetail, err := spec.ParseLogDetail(cfg.Logging.RequestDetail)
	if err != nil {
		return nil, err
	}

	reqSpec, err := spec.BuildRequestSpecification(cfg.Environment.BaseURL, cfg.Environment.Auth.Token,
		spec.WithCredentialParam(cfg.Environment.Auth.Param),
		spec.WithRequestLogDetail(requestDetail),
	)
	if err != nil {
		return nil, err
	}

	session := spec.NewSession()
	session.InstallRequestSpecification(reqSpec)
	return session, nil
}

func generateCommand(args []string) {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	contractPath := generateCmd.String("contract", "", "Path or URL of an OpenAPI document (defaults to the packaged contract)")
	outputDir := generateCmd.String("output", "testdata", "Directory for the generated suite")
	if err := generateCmd.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	c, err := contract.Open(context.Background(), *contractPath)
	if err != nil {
		log.Fatalf("Failed to load API contract: %v", err)
	}

	endpoints := c.Operations()
	fmt.Printf("Found %d operations in the contract\n", len(endpoints))

	path, err := testdata.NewGenerator(*outputDir).GenerateTemplate(endpoints)
	if err != nil {
		log.Fatalf("Failed to generate suite template: %v", err)
	}

	fmt.Printf("Suite template generated successfully in %s\n", path)
	fmt.Println("Please fill in parameters and expectations, then rename it to scenarios.json to run the suite.")
}

func twinCommand(args []string) {
	twinCmd := flag.NewFlagSet("twin", flag.ExitOnError)
	addr := twinCmd.String("addr", ":8089", "Listen address")
	latency := twinCmd.Duration("latency", 0, "Delay added to every response")
	apiKey := twinCmd.String("api-key", os.Getenv("WEATHER_API_KEY"), "Credential accepted in the appid parameter (empty accepts any)")
	if err := twinCmd.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	twinLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()

	server := &http.Server{
		Addr:              *addr,
		Handler:           twin.New(twin.Config{APIKey: *apiKey, Latency: *latency, Logger: twinLog}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	twinLog.Info().Str("addr", *addr).Dur("latency", *latency).Msg("Weather twin listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		twinLog.Fatal().Err(err).Msg("Twin stopped")
	}
}
