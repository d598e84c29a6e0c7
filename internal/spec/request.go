package spec

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// MediaTypeJSON is the media type negotiated by default
	MediaTypeJSON = "application/json"

	// DefaultCredentialParam is the query parameter carrying the API key
	DefaultCredentialParam = "appid"
)

// RequestSpecification is an immutable bundle of request defaults. The zero
// value is not usable; build one with BuildRequestSpecification.
type RequestSpecification struct {
	baseURI         *url.URL
	credentialParam string
	credential      string
	defaultQuery    map[string]string
	contentType     string
	accept          string
	logDetail       LogDetail
}

// RequestOption customizes a RequestSpecification at build time
type RequestOption func(*RequestSpecification)

// WithCredentialParam overrides the query parameter name used for the credential
func WithCredentialParam(name string) RequestOption {
	return func(s *RequestSpecification) {
		s.credentialParam = name
	}
}

// WithMediaType fixes both Content-Type and Accept to mediaType
func WithMediaType(mediaType string) RequestOption {
	return func(s *RequestSpecification) {
		s.contentType = mediaType
		s.accept = mediaType
	}
}

// WithRequestLogDetail sets the request logging verbosity
func WithRequestLogDetail(detail LogDetail) RequestOption {
	return func(s *RequestSpecification) {
		s.logDetail = detail
	}
}

// WithDefaultQueryParam adds a query parameter sent with every request
func WithDefaultQueryParam(name, value string) RequestOption {
	return func(s *RequestSpecification) {
		s.defaultQuery[name] = value
	}
}

// BuildRequestSpecification assembles a request specification for baseURI.
// The credential is injected as a default query parameter on every request.
// No network I/O happens here.
func BuildRequestSpecification(baseURI, credential string, opts ...RequestOption) (RequestSpecification, error) {
	baseURI = strings.TrimSpace(baseURI)
	if baseURI == "" {
		return RequestSpecification{}, fmt.Errorf("base URI is required")
	}

	parsed, err := url.Parse(baseURI)
	if err != nil {
		return RequestSpecification{}, fmt.Errorf("invalid base URI %q: %w", baseURI, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return RequestSpecification{}, fmt.Errorf("base URI %q must be absolute", baseURI)
	}
	if parsed.RawQuery != "" {
		return RequestSpecification{}, fmt.Errorf("base URI %q must not carry a query; use default query params", baseURI)
	}

	s := RequestSpecification{
		baseURI:         parsed,
		credentialParam: DefaultCredentialParam,
		credential:      credential,
		defaultQuery:    make(map[string]string),
		contentType:     MediaTypeJSON,
		accept:          MediaTypeJSON,
		logDetail:       LogAll,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.credential == "" {
		return RequestSpecification{}, fmt.Errorf("credential is required")
	}
	if s.credentialParam == "" {
		return RequestSpecification{}, fmt.Errorf("credential parameter name is required")
	}
	if s.contentType == "" {
		return RequestSpecification{}, fmt.Errorf("media type is required")
	}
	s.defaultQuery[s.credentialParam] = s.credential

	return s, nil
}

// BaseURI returns the base URI as a string
func (s RequestSpecification) BaseURI() string {
	if s.baseURI == nil {
		return ""
	}
	return s.baseURI.String()
}

// CredentialParam returns the name of the credential query parameter
func (s RequestSpecification) CredentialParam() string { return s.credentialParam }

// ContentType returns the declared request Content-Type
func (s RequestSpecification) ContentType() string { return s.contentType }

// Accept returns the declared Accept media type
func (s RequestSpecification) Accept() string { return s.accept }

// LogDetail returns the request logging verbosity
func (s RequestSpecification) LogDetail() LogDetail { return s.logDetail }

// IsZero reports whether s was built
func (s RequestSpecification) IsZero() bool { return s.baseURI == nil }

// DefaultQuery returns a copy of the default query parameters
func (s RequestSpecification) DefaultQuery() map[string]string {
	out := make(map[string]string, len(s.defaultQuery))
	for k, v := range s.defaultQuery {
		out[k] = v
	}
	return out
}

// ResolveURL joins path onto the base URI and merges the default query
// parameters with params. Scenario params win over defaults, except the
// credential which is always the one from the specification.
func (s RequestSpecification) ResolveURL(path string, params map[string]string) (*url.URL, error) {
	if s.IsZero() {
		return nil, fmt.Errorf("request specification is not built")
	}

	u := s.baseURI.JoinPath(strings.TrimPrefix(path, "/"))

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	for k, v := range s.defaultQuery {
		if _, ok := params[k]; ok && k != s.credentialParam {
			continue
		}
		query.Set(k, v)
	}
	u.RawQuery = query.Encode()

	return u, nil
}
