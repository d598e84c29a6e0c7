package executor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"weather-contract-tester/internal/contract"
	"weather-contract-tester/internal/schema"
	"weather-contract-tester/internal/spec"
	"weather-contract-tester/internal/types"

	"github.com/rs/zerolog"
)

// Outcomes recorded in results
const (
	OutcomePassed = "PASSED"
	OutcomeFailed = "FAILED"
)

// TestResult represents the result of a single scenario
type TestResult struct {
	Scenario    string
	Severity    string
	Method      string
	URL         string
	Status      int
	Duration    time.Duration
	Outcome     string
	FailureKind string
	Error       error
	Response    string
}

// TestConfig holds configuration for test execution
type TestConfig struct {
	Concurrent bool
	MaxWorkers int
	Timeout    int
	MaxLatency time.Duration

	// ResponseOptions are applied to every scenario's response specification
	ResponseOptions []spec.ResponseOption
}

// TestExecutor handles the execution of contract scenarios
type TestExecutor struct {
	config    TestConfig
	client    *http.Client
	logger    zerolog.Logger
	validator *schema.Validator
	contract  *contract.Contract
}

// Option customizes a TestExecutor
type Option func(*TestExecutor)

// WithLogger sets the logger used for request and response logging
func WithLogger(logger zerolog.Logger) Option {
	return func(e *TestExecutor) { e.logger = logger }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(e *TestExecutor) { e.client = client }
}

// WithValidator replaces the packaged schema validator
func WithValidator(validator *schema.Validator) Option {
	return func(e *TestExecutor) { e.validator = validator }
}

// WithContract checks requests and responses against an OpenAPI contract
func WithContract(c *contract.Contract) Option {
	return func(e *TestExecutor) { e.contract = c }
}

// NewTestExecutor creates a new test executor
func NewTestExecutor(config TestConfig, opts ...Option) *TestExecutor {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}
	if config.MaxLatency <= 0 {
		config.MaxLatency = spec.DefaultMaxLatency
	}

	e := &TestExecutor{
		config:    config,
		client:    &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
		logger:    zerolog.Nop(),
		validator: schema.NewPackagedValidator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunScenarios executes every scenario against the request specification
// installed on base. Each scenario runs on its own fork of base, so they can
// run concurrently; results keep the order of scenarios. Nothing is retried.
func (e *TestExecutor) RunScenarios(ctx context.Context, base *spec.Session, scenarios []types.Scenario) []TestResult {
	results := make([]TestResult, len(scenarios))

	workers := e.config.MaxWorkers
	if !e.config.Concurrent {
		workers = 1
	}

	var wg sync.WaitGroup
	// Create a channel to limit concurrent executions
	sem := make(chan struct{}, workers)

	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc types.Scenario) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = e.runScenario(ctx, base.Fork(), sc)
		}(i, sc)
	}

	wg.Wait()
	return results
}

// runScenario executes a single scenario and returns the result
func (e *TestExecutor) runScenario(ctx context.Context, session *spec.Session, sc types.Scenario) TestResult {
	start := time.Now()
	result := TestResult{
		Scenario: sc.Name,
		Severity: sc.Severity,
		Method:   http.MethodGet,
	}

	finish := func(scenario *Scenario, err error) TestResult {
		result.Duration = time.Since(start)
		if scenario != nil {
			if resp := scenario.Response(); resp != nil {
				result.URL = resp.URL
				result.Status = resp.StatusCode
				result.Response = string(resp.Body)
			}
		}
		if err != nil {
			result.Outcome = OutcomeFailed
			result.FailureKind = Classify(err)
			result.Error = err
			return result
		}
		result.Outcome = OutcomePassed
		return result
	}

	if sc.Method != "" && !strings.EqualFold(sc.Method, http.MethodGet) {
		return finish(nil, fmt.Errorf("unsupported method %q: scenarios issue GET requests", sc.Method))
	}

	respSpec, err := spec.ResponseSpecFor(spec.Category(sc.Category), e.config.MaxLatency, e.config.ResponseOptions...)
	if err != nil {
		return finish(nil, err)
	}

	scenario := e.NewScenario(sc.Name, session)
	if err := scenario.InstallResponseSpecification(respSpec); err != nil {
		return finish(scenario, err)
	}

	if _, err := scenario.Get(ctx, sc.Path, sc.Params); err != nil {
		return finish(scenario, err)
	}

	switch sc.Model {
	case types.ModelWeather:
		_, err = scenario.ExtractWeather()
	case types.ModelError:
		_, err = scenario.ExtractError()
	case "":
	default:
		err = fmt.Errorf("unknown model %q", sc.Model)
	}
	if err != nil {
		return finish(scenario, err)
	}

	if sc.Schema != "" {
		if err := scenario.MatchesSchema(sc.Schema); err != nil {
			return finish(scenario, err)
		}
	}

	if len(sc.Expect) > 0 {
		err = scenario.Assert(sc.Expect...)
	} else {
		err = scenario.Complete()
	}
	return finish(scenario, err)
}
