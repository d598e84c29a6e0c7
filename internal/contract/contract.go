// Package contract loads the hand-authored OpenAPI description of the
// weather service and checks outgoing requests and incoming responses
// against the operations it declares.
package contract

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"weather-contract-tester/internal/types"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var packagedDoc []byte

// Contract wraps a validated OpenAPI document
type Contract struct {
	doc *openapi3.T
}

// Load parses and validates an OpenAPI document
func Load(data []byte) (*Contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI doc: %w", err)
	}
	return &Contract{doc: doc}, nil
}

// Packaged loads the contract shipped with the binary
func Packaged() (*Contract, error) {
	return Load(packagedDoc)
}

// ViolationError lists every way a request or response breaks the contract
type ViolationError struct {
	Operation string
	Problems  []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s violates the API contract: %s", e.Operation, strings.Join(e.Problems, "; "))
}

func normalizePath(path string) string {
	return "/" + strings.Trim(path, "/")
}

func (c *Contract) operation(method, path string) (*openapi3.Operation, error) {
	method = strings.ToUpper(method)
	pathItem := c.doc.Paths.Find(normalizePath(path))
	if pathItem == nil {
		return nil, &ViolationError{
			Operation: method + " " + normalizePath(path),
			Problems:  []string{"path is not declared"},
		}
	}
	op := pathItem.GetOperation(method)
	if op == nil {
		return nil, &ViolationError{
			Operation: method + " " + normalizePath(path),
			Problems:  []string{"method is not declared"},
		}
	}
	return op, nil
}

// CheckRequest verifies that every query parameter is declared and that
// every required query parameter is present.
func (c *Contract) CheckRequest(method, path string, query url.Values) error {
	op, err := c.operation(method, path)
	if err != nil {
		return err
	}

	declared := make(map[string]*openapi3.Parameter)
	for _, ref := range op.Parameters {
		if ref.Value != nil && ref.Value.In == openapi3.ParameterInQuery {
			declared[ref.Value.Name] = ref.Value
		}
	}

	var problems []string
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := declared[name]; !ok {
			problems = append(problems, fmt.Sprintf("query parameter %q is not declared", name))
		}
	}
	for name, param := range declared {
		if param.Required && !query.Has(name) {
			problems = append(problems, fmt.Sprintf("required query parameter %q is missing", name))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &ViolationError{Operation: strings.ToUpper(method) + " " + normalizePath(path), Problems: problems}
}

// CheckResponse verifies that the status code and content type are declared
// for the operation
func (c *Contract) CheckResponse(method, path string, status int, contentType string) error {
	op, err := c.operation(method, path)
	if err != nil {
		return err
	}

	name := strings.ToUpper(method) + " " + normalizePath(path)
	ref := op.Responses.Status(status)
	if ref == nil {
		ref = op.Responses.Default()
	}
	if ref == nil || ref.Value == nil {
		return &ViolationError{Operation: name, Problems: []string{fmt.Sprintf("status %d is not declared", status)}}
	}
	if len(ref.Value.Content) > 0 && ref.Value.Content.Get(contentType) == nil {
		return &ViolationError{Operation: name, Problems: []string{
			fmt.Sprintf("content type %q is not declared for status %d", contentType, status),
		}}
	}
	return nil
}

// Operations lists the declared operations sorted by path and method
func (c *Contract) Operations() []types.Endpoint {
	var endpoints []types.Endpoint

	for path, pathItem := range c.doc.Paths.Map() {
		for method, operation := range pathItem.Operations() {
			endpoint := types.Endpoint{
				Method:     strings.ToUpper(method),
				Path:       path,
				Parameters: make([]types.Parameter, 0, len(operation.Parameters)),
				Responses:  make(map[int]types.Response),
			}

			for _, param := range operation.Parameters {
				if param.Value == nil {
					continue
				}
				endpoint.Parameters = append(endpoint.Parameters, types.Parameter{
					Name:     param.Value.Name,
					In:       param.Value.In,
					Required: param.Value.Required,
				})
			}

			for statusCode, response := range operation.Responses.Map() {
				code, err := strconv.Atoi(statusCode)
				if err != nil || response.Value == nil {
					continue
				}

				description := ""
				if response.Value.Description != nil {
					description = *response.Value.Description
				}

				contentTypes := make([]string, 0, len(response.Value.Content))
				for contentType := range response.Value.Content {
					contentTypes = append(contentTypes, contentType)
				}
				sort.Strings(contentTypes)

				endpoint.Responses[code] = types.Response{
					Description:  description,
					ContentTypes: contentTypes,
				}
			}

			endpoints = append(endpoints, endpoint)
		}
	}

	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})
	return endpoints
}
