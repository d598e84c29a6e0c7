package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"weather-contract-tester/internal/assertion"
	"weather-contract-tester/internal/model"
	"weather-contract-tester/internal/spec"

	"github.com/rs/zerolog"
)

// State is the position of a scenario in its protocol
type State int

const (
	StateUnconfigured State = iota
	StateSpecsInstalled
	StateRequestIssued
	StateResponseReceived
	StateDeserialized
	StateSchemaValidated
	StateAsserted
	StateFailed
)

var stateNames = [...]string{
	"unconfigured", "specs-installed", "request-issued", "response-received",
	"deserialized", "schema-validated", "asserted", "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Response is what a scenario received
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
	Elapsed     time.Duration
}

// Scenario runs one request through the fixed protocol: install the
// response specification, issue the request, then deserialize, validate
// and assert. The first failure terminates the scenario.
type Scenario struct {
	name     string
	executor *TestExecutor
	session  *spec.Session
	logger   zerolog.Logger

	state    State
	path     string
	response *Response
	decoded  any
	err      error
}

// NewScenario creates a scenario governed by session
func (e *TestExecutor) NewScenario(name string, session *spec.Session) *Scenario {
	s := &Scenario{
		name:     name,
		executor: e,
		session:  session,
		logger:   e.logger.With().Str("scenario", name).Logger(),
	}
	if _, _, err := session.Specifications(); err == nil {
		s.state = StateSpecsInstalled
	}
	return s
}

// Name returns the scenario name
func (s *Scenario) Name() string { return s.name }

// State returns the current protocol state
func (s *Scenario) State() State { return s.state }

// Err returns the failure that terminated the scenario, if any
func (s *Scenario) Err() error { return s.err }

// Response returns the received response or nil
func (s *Scenario) Response() *Response { return s.response }

func (s *Scenario) fail(err error) error {
	s.state = StateFailed
	s.err = err
	s.logger.Error().Err(err).Str("kind", Classify(err)).Msg("scenario failed")
	return err
}

// InstallResponseSpecification installs the expectation for the next request
func (s *Scenario) InstallResponseSpecification(rs spec.ResponseSpecification) error {
	if s.state == StateFailed {
		return ErrScenarioTerminated
	}
	if s.state >= StateRequestIssued {
		return ErrRequestIssued
	}
	s.session.InstallResponseSpecification(rs)
	if _, _, err := s.session.Specifications(); err == nil {
		s.state = StateSpecsInstalled
	}
	return nil
}

// Get issues GET <base>/<path> with the installed request specification merged
// with params, then checks the response against the installed response
// specification. Only the params present in the map are sent.
func (s *Scenario) Get(ctx context.Context, path string, params map[string]string) (*Response, error) {
	if s.state == StateFailed {
		return nil, ErrScenarioTerminated
	}
	if s.state >= StateRequestIssued {
		return nil, ErrRequestIssued
	}

	reqSpec, respSpec, err := s.session.Specifications()
	if err != nil {
		return nil, s.fail(err)
	}

	u, err := reqSpec.ResolveURL(path, params)
	if err != nil {
		return nil, s.fail(err)
	}

	if c := s.executor.contract; c != nil {
		if err := c.CheckRequest(http.MethodGet, path, u.Query()); err != nil {
			return nil, s.fail(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", reqSpec.ContentType())
	req.Header.Set("Accept", reqSpec.Accept())

	s.path = path
	s.state = StateRequestIssued
	s.logRequest(reqSpec, req)

	start := time.Now()
	resp, err := s.executor.client.Do(req)
	if err != nil {
		return nil, s.fail(&TransportError{Op: "request failed", Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, s.fail(&TransportError{Op: "failed to read response body", Err: err})
	}

	s.response = &Response{
		URL:         maskCredential(u, reqSpec.CredentialParam()),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        body,
		Elapsed:     elapsed,
	}
	s.state = StateResponseReceived
	s.logResponse(respSpec, s.response)

	if err := respSpec.Verify(resp.StatusCode, s.response.ContentType, elapsed); err != nil {
		return s.response, s.fail(err)
	}
	if c := s.executor.contract; c != nil {
		if err := c.CheckResponse(http.MethodGet, path, resp.StatusCode, s.response.ContentType); err != nil {
			return s.response, s.fail(err)
		}
	}

	return s.response, nil
}

func (s *Scenario) received() error {
	if s.state == StateFailed {
		return ErrScenarioTerminated
	}
	if s.response == nil {
		return ErrNoResponse
	}
	return nil
}

// ExtractWeather deserializes the response into the success model
func (s *Scenario) ExtractWeather() (*model.WeatherResponse, error) {
	if err := s.received(); err != nil {
		return nil, err
	}
	w, err := model.DecodeWeather(s.response.Body)
	if err != nil {
		return nil, s.fail(err)
	}
	s.decoded = w
	s.state = StateDeserialized
	return w, nil
}

// ExtractError deserializes the response into the error model
func (s *Scenario) ExtractError() (*model.ErrorResponse, error) {
	if err := s.received(); err != nil {
		return nil, err
	}
	e, err := model.DecodeErrorResponse(s.response.Body)
	if err != nil {
		return nil, s.fail(err)
	}
	s.decoded = e
	s.state = StateDeserialized
	return e, nil
}

// MatchesSchema validates the raw response body against a schema document
func (s *Scenario) MatchesSchema(schemaID string) error {
	if err := s.received(); err != nil {
		return err
	}
	if err := s.executor.validator.Validate(s.response.Body, schemaID); err != nil {
		return s.fail(err)
	}
	s.state = StateSchemaValidated
	return nil
}

// Assert checks field values. After ExtractWeather or ExtractError the paths
// resolve against the deserialized model, so fields the model does not
// declare are absent; before that they resolve against the raw body.
func (s *Scenario) Assert(fields ...assertion.Field) error {
	if err := s.received(); err != nil {
		return err
	}
	target := s.response.Body
	if s.decoded != nil {
		encoded, err := json.Marshal(s.decoded)
		if err != nil {
			return s.fail(fmt.Errorf("failed to encode model for assertions: %w", err))
		}
		target = encoded
	}
	if err := assertion.Check(target, fields...); err != nil {
		return s.fail(err)
	}
	s.state = StateAsserted
	return nil
}

// Complete marks a scenario whose assertions were made by the caller on
// the typed model
func (s *Scenario) Complete() error {
	if err := s.received(); err != nil {
		return err
	}
	s.state = StateAsserted
	return nil
}

func (s *Scenario) logRequest(rs spec.RequestSpecification, req *http.Request) {
	detail := rs.LogDetail()
	if detail == spec.LogNone {
		return
	}
	event := s.logger.Info()
	if detail.Includes(spec.LogStatus) {
		event = event.
			Str("method", req.Method).
			Str("url", maskCredential(req.URL, rs.CredentialParam()))
	}
	if detail.Includes(spec.LogHeaders) {
		event = event.Interface("headers", req.Header)
	}
	event.Msg("request")
}

func (s *Scenario) logResponse(rs spec.ResponseSpecification, resp *Response) {
	detail := rs.LogDetail()
	if detail == spec.LogNone {
		return
	}
	event := s.logger.Info()
	if detail.Includes(spec.LogStatus) {
		event = event.
			Int("status", resp.StatusCode).
			Dur("elapsed", resp.Elapsed)
	}
	if detail.Includes(spec.LogHeaders) {
		event = event.Interface("headers", resp.Header)
	}
	if detail.Includes(spec.LogBody) {
		event = event.Bytes("body", resp.Body)
	}
	event.Msg("response")
}

// maskCredential renders u with the credential value replaced
func maskCredential(u *url.URL, param string) string {
	query := u.Query()
	if !query.Has(param) {
		return u.String()
	}
	query.Set(param, "REDACTED")
	masked := *u
	masked.RawQuery = query.Encode()
	return masked.String()
}
