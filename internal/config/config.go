package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where LoadConfig looks when no path is given
const DefaultPath = "config/config.yaml"

// Config holds the application configuration
type Config struct {
	Environment Environment     `yaml:"environment"`
	Test        TestConfig      `yaml:"test"`
	Reporting   ReportingConfig `yaml:"reporting"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// Environment holds environment-specific configuration
type Environment struct {
	BaseURL string     `yaml:"base_url"`
	Auth    AuthConfig `yaml:"auth"`
}

// AuthConfig holds the static credential sent as a query parameter
type AuthConfig struct {
	Param string `yaml:"param"`
	Token string `yaml:"token"`
}

// TestConfig holds test execution configuration
type TestConfig struct {
	Concurrent bool   `yaml:"concurrent"`
	MaxWorkers int    `yaml:"max_workers"`
	Timeout    int    `yaml:"timeout"`
	MaxLatency string `yaml:"max_latency"`
	SuiteDir   string `yaml:"suite_dir"`
	SchemaDir  string `yaml:"schema_dir"`
	Contract   string `yaml:"contract"`
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	Format    []string       `yaml:"format"`
	OutputDir string         `yaml:"output_dir"`
	Detailed  bool           `yaml:"detailed"`
	Database  DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds the connection settings of the SQL report sink
type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level          string `yaml:"level"`
	Dir            string `yaml:"dir"`
	Console        bool   `yaml:"console"`
	RequestDetail  string `yaml:"request_detail"`
	ResponseDetail string `yaml:"response_detail"`
}

// MaxLatencyDuration returns the configured latency ceiling
func (t TestConfig) MaxLatencyDuration() (time.Duration, error) {
	d, err := time.ParseDuration(t.MaxLatency)
	if err != nil {
		return 0, fmt.Errorf("invalid max_latency %q: %w", t.MaxLatency, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("max_latency must be positive, got %s", d)
	}
	return d, nil
}

// LoadConfig loads the configuration from a .env file, the YAML config file
// and environment variables, in that order of increasing precedence
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at %s", configPath)
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML configuration, applies environment overrides and fills defaults
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(&config)
	applyDefaults(&config)

	if config.Environment.BaseURL == "" {
		return nil, fmt.Errorf("environment.base_url is required")
	}
	if config.Environment.Auth.Token == "" {
		return nil, fmt.Errorf("credential is required: set environment.auth.token or WEATHER_API_KEY")
	}
	if _, err := config.Test.MaxLatencyDuration(); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyEnv(config *Config) {
	if baseURL := os.Getenv("WEATHER_BASE_URL"); baseURL != "" {
		config.Environment.BaseURL = baseURL
	}

	// Override auth token from environment variable if set
	if token := os.Getenv("WEATHER_API_KEY"); token != "" {
		config.Environment.Auth.Token = token
	} else if token := os.Getenv("AUTH_TOKEN"); token != "" {
		config.Environment.Auth.Token = token
	}

	if workers := os.Getenv("MAX_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			config.Test.MaxWorkers = n
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

func applyDefaults(config *Config) {
	if config.Environment.Auth.Param == "" {
		config.Environment.Auth.Param = "appid"
	}
	if config.Test.MaxWorkers == 0 {
		config.Test.MaxWorkers = 5
	}
	if config.Test.Timeout == 0 {
		config.Test.Timeout = 30
	}
	if config.Test.MaxLatency == "" {
		config.Test.MaxLatency = "3s"
	}
	if config.Test.SuiteDir == "" {
		config.Test.SuiteDir = "testdata"
	}
	if len(config.Reporting.Format) == 0 {
		config.Reporting.Format = []string{"json"}
	}
	if config.Reporting.OutputDir == "" {
		config.Reporting.OutputDir = "reports"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.RequestDetail == "" {
		config.Logging.RequestDetail = "all"
	}
	if config.Logging.ResponseDetail == "" {
		config.Logging.ResponseDetail = "all"
	}
}
