package spec

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxLatency is the response time ceiling of the preset specifications
const DefaultMaxLatency = 3 * time.Second

// Category names an expectation category of a scenario
type Category string

const (
	CategoryOK         Category = "ok"
	CategoryBadRequest Category = "bad_request"
	CategoryNotFound   Category = "not_found"
)

// Status returns the HTTP status expected for the category
func (c Category) Status() (int, error) {
	switch c {
	case CategoryOK:
		return http.StatusOK, nil
	case CategoryBadRequest:
		return http.StatusBadRequest, nil
	case CategoryNotFound:
		return http.StatusNotFound, nil
	default:
		return 0, fmt.Errorf("unknown expectation category: %q", string(c))
	}
}

// ResponseSpecification is an immutable bundle of expected response
// properties: one status code, one content type and a latency ceiling.
type ResponseSpecification struct {
	status      int
	contentType string
	maxLatency  time.Duration
	logDetail   LogDetail
}

// ResponseOption customizes a ResponseSpecification at build time
type ResponseOption func(*ResponseSpecification)

// WithContentType declares the expected response content type
func WithContentType(mediaType string) ResponseOption {
	return func(s *ResponseSpecification) {
		s.contentType = mediaType
	}
}

// WithResponseLogDetail sets the response logging verbosity
func WithResponseLogDetail(detail LogDetail) ResponseOption {
	return func(s *ResponseSpecification) {
		s.logDetail = detail
	}
}

// BuildResponseSpecification assembles a response specification expecting
// expectedStatus within maxLatency. Content type defaults to JSON.
func BuildResponseSpecification(expectedStatus int, maxLatency time.Duration, opts ...ResponseOption) (ResponseSpecification, error) {
	if expectedStatus < 100 || expectedStatus > 599 {
		return ResponseSpecification{}, fmt.Errorf("invalid expected status code: %d", expectedStatus)
	}
	if maxLatency <= 0 {
		return ResponseSpecification{}, fmt.Errorf("max latency must be positive, got %s", maxLatency)
	}

	s := ResponseSpecification{
		status:      expectedStatus,
		contentType: MediaTypeJSON,
		maxLatency:  maxLatency,
		logDetail:   LogAll,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.contentType == "" {
		return ResponseSpecification{}, fmt.Errorf("expected content type is required")
	}
	return s, nil
}

// ResponseSpecFor builds the specification of an expectation category
func ResponseSpecFor(category Category, maxLatency time.Duration, opts ...ResponseOption) (ResponseSpecification, error) {
	status, err := category.Status()
	if err != nil {
		return ResponseSpecification{}, err
	}
	return BuildResponseSpecification(status, maxLatency, opts...)
}

// ResponseSpecOK200 expects 200 with a JSON body within 3 seconds
func ResponseSpecOK200() ResponseSpecification {
	return mustPreset(http.StatusOK)
}

// ResponseSpecBadRequest400 expects 400 with a JSON body within 3 seconds
func ResponseSpecBadRequest400() ResponseSpecification {
	return mustPreset(http.StatusBadRequest)
}

// ResponseSpecNotFound404 expects 404 with a JSON body within 3 seconds
func ResponseSpecNotFound404() ResponseSpecification {
	return mustPreset(http.StatusNotFound)
}

func mustPreset(status int) ResponseSpecification {
	s, err := BuildResponseSpecification(status, DefaultMaxLatency)
	if err != nil {
		panic(err)
	}
	return s
}

// ExpectedStatus returns the expected HTTP status code
func (s ResponseSpecification) ExpectedStatus() int { return s.status }

// ContentType returns the expected media type
func (s ResponseSpecification) ContentType() string { return s.contentType }

// MaxLatency returns the response time ceiling
func (s ResponseSpecification) MaxLatency() time.Duration { return s.maxLatency }

// LogDetail returns the response logging verbosity
func (s ResponseSpecification) LogDetail() LogDetail { return s.logDetail }

// IsZero reports whether s was built
func (s ResponseSpecification) IsZero() bool { return s.status == 0 }

// Verify checks an observed response against the specification and returns
// a *MismatchError naming every dimension that disagrees.
func (s ResponseSpecification) Verify(status int, contentType string, elapsed time.Duration) error {
	var mismatches []Mismatch

	if status != s.status {
		mismatches = append(mismatches, Mismatch{
			Dimension: DimensionStatus,
			Expected:  fmt.Sprint(s.status),
			Actual:    fmt.Sprint(status),
		})
	}
	if !sameMediaType(s.contentType, contentType) {
		mismatches = append(mismatches, Mismatch{
			Dimension: DimensionContentType,
			Expected:  s.contentType,
			Actual:    contentType,
		})
	}
	if elapsed > s.maxLatency {
		mismatches = append(mismatches, Mismatch{
			Dimension: DimensionLatency,
			Expected:  "<= " + s.maxLatency.String(),
			Actual:    elapsed.String(),
		})
	}

	if len(mismatches) == 0 {
		return nil
	}
	return &MismatchError{Mismatches: mismatches}
}

// sameMediaType compares media types ignoring parameters such as charset
func sameMediaType(expected, actual string) bool {
	want, _, err := mime.ParseMediaType(expected)
	if err != nil {
		want = strings.ToLower(strings.TrimSpace(expected))
	}
	got, _, err := mime.ParseMediaType(actual)
	if err != nil {
		return false
	}
	return want == got
}

// Dimension identifies which property of a response mismatched
type Dimension string

const (
	DimensionStatus      Dimension = "status"
	DimensionContentType Dimension = "content-type"
	DimensionLatency     Dimension = "latency"
)

// Mismatch is one disagreement between a response and its specification
type Mismatch struct {
	Dimension Dimension
	Expected  string
	Actual    string
}

// MismatchError reports a response that does not satisfy its specification
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("%s: expected %s, got %s", m.Dimension, m.Expected, m.Actual))
	}
	return "response does not match specification: " + strings.Join(parts, "; ")
}

// Has reports whether the given dimension mismatched
func (e *MismatchError) Has(d Dimension) bool {
	for _, m := range e.Mismatches {
		if m.Dimension == d {
			return true
		}
	}
	return false
}
