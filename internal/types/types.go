package types

import (
	"weather-contract-tester/internal/assertion"
)

// Endpoint represents an operation declared by the API contract
type Endpoint struct {
	Method     string
	Path       string
	Parameters []Parameter
	Responses  map[int]Response
}

// Parameter represents a declared API parameter
type Parameter struct {
	Name     string
	In       string
	Required bool
}

// Response represents a declared API response
type Response struct {
	Description  string
	ContentTypes []string
}

// Scenario describes one contract test: the expectation category to install,
// the query parameters to send and what to check on the response.
type Scenario struct {
	Name     string            `json:"name" yaml:"name"`
	Severity string            `json:"severity,omitempty" yaml:"severity,omitempty"`
	Category string            `json:"category" yaml:"category"`
	Method   string            `json:"method,omitempty" yaml:"method,omitempty"`
	Path     string            `json:"path" yaml:"path"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Model    string            `json:"model,omitempty" yaml:"model,omitempty"`
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Expect   []assertion.Field `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// Models a scenario can deserialize into
const (
	ModelWeather = "weather"
	ModelError   = "error"
)
