package testdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"weather-contract-tester/internal/schema"
	"weather-contract-tester/internal/spec"
	"weather-contract-tester/internal/types"
)

// TemplateFile is the name of the generated suite skeleton
const TemplateFile = "scenarios_template.json"

// Generator handles the generation of suite templates
type Generator struct {
	outputDir string
}

// NewGenerator creates a new instance of Generator
func NewGenerator(outputDir string) *Generator {
	return &Generator{
		outputDir: outputDir,
	}
}

// GenerateTemplate writes a suite skeleton with one scenario per declared
// response whose status maps onto an expectation category. The skeleton
// still needs real parameter values and expectations filled in by hand.
func (g *Generator) GenerateTemplate(endpoints []types.Endpoint) (string, error) {
	suite := Suite{Name: "generated"}

	// Process each endpoint
	for _, endpoint := range endpoints {
		if endpoint.Method != http.MethodGet {
			continue
		}
		suite.Scenarios = append(suite.Scenarios, g.generateEndpointScenarios(endpoint)...)
	}

	if len(suite.Scenarios) == 0 {
		return "", fmt.Errorf("no GET operation with a testable response")
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write template to file
	outputPath := filepath.Join(g.outputDir, TemplateFile)
	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal template: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write template file: %w", err)
	}

	return outputPath, nil
}

var categoryByStatus = map[int]spec.Category{
	http.StatusOK:         spec.CategoryOK,
	http.StatusBadRequest: spec.CategoryBadRequest,
	http.StatusNotFound:   spec.CategoryNotFound,
}

// generateEndpointScenarios generates skeleton scenarios for an endpoint
func (g *Generator) generateEndpointScenarios(endpoint types.Endpoint) []types.Scenario {
	statuses := make([]int, 0, len(endpoint.Responses))
	for status := range endpoint.Responses {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)

	var scenarios []types.Scenario
	for _, status := range statuses {
		category, ok := categoryByStatus[status]
		if !ok {
			continue
		}

		sc := types.Scenario{
			Name:     fmt.Sprintf("%s %s returns %d", endpoint.Method, endpoint.Path, status),
			Severity: "normal",
			Category: string(category),
			Path:     strings.TrimPrefix(endpoint.Path, "/"),
			Params:   g.sampleParams(endpoint),
		}
		if status == http.StatusOK {
			sc.Model = types.ModelWeather
			sc.Schema = schema.WeatherResponseSchema
		} else {
			sc.Model = types.ModelError
			sc.Schema = schema.ErrorResponseSchema
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios
}

// sampleParams returns an empty value for every optional query parameter.
// Required ones are left out: the request specification supplies the credential.
func (g *Generator) sampleParams(endpoint types.Endpoint) map[string]string {
	params := make(map[string]string)
	for _, param := range endpoint.Parameters {
		if param.In == "query" && !param.Required {
			params[param.Name] = ""
		}
	}
	return params
}
