package testdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"weather-contract-tester/internal/spec"
	"weather-contract-tester/internal/types"

	"gopkg.in/yaml.v3"
)

// Suite is a named list of scenarios
type Suite struct {
	Name      string           `json:"name" yaml:"name"`
	Scenarios []types.Scenario `json:"scenarios" yaml:"scenarios"`
}

// Loader handles loading scenario suites from files
type Loader struct {
	dir string
}

// NewLoader creates a new suite loader
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// suiteFiles lists the file names tried, in order
var suiteFiles = []string{"scenarios.json", "scenarios.yaml", "scenarios.yml", "scenarios_template.json"}

// LoadSuite loads the first suite file found in the loader directory
func (l *Loader) LoadSuite() (*Suite, error) {
	for _, name := range suiteFiles {
		suite, err := l.LoadFile(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return suite, err
	}
	return nil, fmt.Errorf("no scenario suite found in %s: %w", l.dir, os.ErrNotExist)
}

// LoadFile loads and validates a suite file relative to the loader directory
func (l *Loader) LoadFile(filename string) (*Suite, error) {
	path := filepath.Join(l.dir, filename)
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite Suite
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(file, &suite)
	default:
		err = json.Unmarshal(file, &suite)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse suite %s: %w", path, err)
	}

	if err := suite.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return &suite, nil
}

// Validate checks that every scenario can be executed
func (s *Suite) Validate() error {
	if len(s.Scenarios) == 0 {
		return errors.New("suite has no scenarios")
	}

	var errs []error
	seen := make(map[string]bool)
	for i, sc := range s.Scenarios {
		if sc.Name == "" {
			errs = append(errs, fmt.Errorf("scenario %d: name is required", i))
			continue
		}
		if seen[sc.Name] {
			errs = append(errs, fmt.Errorf("scenario %q: duplicate name", sc.Name))
		}
		seen[sc.Name] = true

		if _, err := spec.Category(sc.Category).Status(); err != nil {
			errs = append(errs, fmt.Errorf("scenario %q: %w", sc.Name, err))
		}
		if sc.Path == "" {
			errs = append(errs, fmt.Errorf("scenario %q: path is required", sc.Name))
		}
		switch sc.Model {
		case "", types.ModelWeather, types.ModelError:
		default:
			errs = append(errs, fmt.Errorf("scenario %q: unknown model %q", sc.Name, sc.Model))
		}
	}
	return errors.Join(errs...)
}

// Filter returns the scenarios whose name contains substr
func (s *Suite) Filter(substr string) []types.Scenario {
	if substr == "" {
		return s.Scenarios
	}
	var out []types.Scenario
	for _, sc := range s.Scenarios {
		if strings.Contains(strings.ToLower(sc.Name), strings.ToLower(substr)) {
			out = append(out, sc)
		}
	}
	return out
}
