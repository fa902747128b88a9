package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 1.0
	DefaultDatabase    = "code_review.db"
	DefaultReportDir   = "data/raw_reports"
	DefaultAuditLog    = "feedback_log.jsonl"
	DefaultResultsDir  = "data/feedback_results"
	DefaultToolTimeout = "5m"
	DotEnvFile         = ".env"
)

// ErrMissingAPIKey is returned by Validate when the selected provider has no key.
var ErrMissingAPIKey = errors.New("API key is not set")

// keyEnv maps each provider to the environment variable holding its key.
var keyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GOOGLE_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

// ToolConfig is one static-analysis tool invocation.
type ToolConfig struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Format  string   `yaml:"format,omitempty"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Temperature      float64                   `yaml:"temperature"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
	Database         string                    `yaml:"database"`
	ReportDir        string                    `yaml:"report_dir"`
	AuditLog         string                    `yaml:"audit_log"`
	ResultsDir       string                    `yaml:"results_dir"`
	ToolTimeout      string                    `yaml:"tool_timeout"`
	Tools            []ToolConfig              `yaml:"tools"`

	path string
}

// DefaultTools runs the Python linters against ./src.
func DefaultTools() []ToolConfig {
	return []ToolConfig{
		{Name: "pylint", Command: []string{"pylint", "src", "--output-format=json"}, Format: "json"},
		{Name: "flake8", Command: []string{"flake8", "src", "--format=json"}, Format: "json"},
		{Name: "bandit", Command: []string{"bandit", "-r", "src", "-f", "json"}, Format: "json"},
		{Name: "mypy", Command: []string{"mypy", "src"}, Format: "text"},
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SelectedProvider: DefaultProvider,
		SelectedModel:    DefaultModel,
		Temperature:      DefaultTemperature,
		Providers:        make(map[string]ProviderConfig),
		Database:         DefaultDatabase,
		ReportDir:        DefaultReportDir,
		AuditLog:         DefaultAuditLog,
		ResultsDir:       DefaultResultsDir,
		ToolTimeout:      DefaultToolTimeout,
		Tools:            DefaultTools(),
	}
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".codereview-adk")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig reads only the YAML file at path (the default location when
// empty). It is what the config commands edit and save back.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if len(cfg.Tools) == 0 {
		cfg.Tools = DefaultTools()
	}
	return cfg, nil
}

// Load reads the YAML file, then applies .env values and environment
// variables on top. Real environment variables win over .env entries.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	dotenv, err := ReadDotEnv(DotEnvFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadDotEnv parses a flat KEY=value file. A missing file yields no values.
func ReadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	values := make(map[string]string)
	for _, key := range f.Section(ini.DefaultSection).Keys() {
		values[key.Name()] = key.String()
	}
	return values, nil
}

// ApplyEnv overrides fields from environment-style variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if v := get("REVIEW_PROVIDER"); v != "" {
		c.SelectedProvider = strings.ToLower(v)
	}
	for provider, env := range keyEnv {
		if v := get(env); v != "" {
			c.SetAPIKey(provider, v)
		}
	}
	if v := get("OPENAI_MODEL"); v != "" && c.SelectedProvider == "openai" {
		c.SelectedModel = v
	}
	if v := get("OPENAI_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid OPENAI_TEMPERATURE %q: %w", v, err)
		}
		c.Temperature = t
	}
	if v := get("REVIEW_DB"); v != "" {
		c.Database = v
	}
	return nil
}

// Validate checks that the selected provider can be called.
func (c *Config) Validate() error {
	env, ok := keyEnv[c.SelectedProvider]
	if !ok {
		return fmt.Errorf("unknown provider: %s", c.SelectedProvider)
	}
	if c.GetAPIKey(c.SelectedProvider) == "" {
		return fmt.Errorf("%w for %s: add %s to your .env file or run 'codereview-adk config set-key'",
			ErrMissingAPIKey, c.SelectedProvider, env)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	return nil
}

// ToolTimeoutDuration parses ToolTimeout; zero means no limit.
func (c *Config) ToolTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ToolTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Path is the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

func SaveConfig(cfg *Config) error {
	path := cfg.path
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions for security (api keys)
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

func (c *Config) GetAPIKey(provider string) string {
	return c.Providers[provider].APIKey
}
