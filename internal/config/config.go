package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the ssm-commander settings.
type Config struct {
	Prompt  PromptConfig  `yaml:"prompt"`
	AWS     AWSConfig     `yaml:"aws"`
	Logging LoggingConfig `yaml:"logging"`
}

// PromptConfig holds interactive prompt settings.
type PromptConfig struct {
	PageSize int    `yaml:"page_size"` // Rows shown at once in search prompts
	HelpMode string `yaml:"help_mode"` // auto, always, never
}

// AWSConfig holds external tool locations.
type AWSConfig struct {
	CLIPath              string `yaml:"cli_path"`               // aws executable
	SessionManagerPlugin string `yaml:"session_manager_plugin"` // session-manager-plugin executable
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// Page size bounds.
const (
	MinPageSize = 3
	MaxPageSize = 50
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Prompt: PromptConfig{
			PageSize: 7,
			HelpMode: "auto",
		},
		AWS: AWSConfig{
			CLIPath:              "aws",
			SessionManagerPlugin: "session-manager-plugin",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().SettingsFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "prompt.page_size" or "logging.level"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "prompt":
		return c.getPromptField(field)
	case "aws":
		return c.getAWSField(field)
	case "logging":
		return c.getLoggingField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "prompt":
		return c.setPromptField(field, value)
	case "aws":
		return c.setAWSField(field, value)
	case "logging":
		return c.setLoggingField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getPromptField(field string) (string, error) {
	switch field {
	case "page_size":
		return strconv.Itoa(c.Prompt.PageSize), nil
	case "help_mode":
		return c.Prompt.HelpMode, nil
	default:
		return "", fmt.Errorf("unknown field: prompt.%s", field)
	}
}

func (c *Config) setPromptField(field, value string) error {
	switch field {
	case "page_size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for page_size: %w", err)
		}
		if v < MinPageSize || v > MaxPageSize {
			return fmt.Errorf("invalid page_size: must be between %d and %d", MinPageSize, MaxPageSize)
		}
		c.Prompt.PageSize = v
	case "help_mode":
		if !isValidHelpMode(value) {
			return fmt.Errorf("invalid help_mode: %s (must be auto, always, or never)", value)
		}
		c.Prompt.HelpMode = value
	default:
		return fmt.Errorf("unknown field: prompt.%s", field)
	}
	return nil
}

func (c *Config) getAWSField(field string) (string, error) {
	switch field {
	case "cli_path":
		return c.AWS.CLIPath, nil
	case "session_manager_plugin":
		return c.AWS.SessionManagerPlugin, nil
	default:
		return "", fmt.Errorf("unknown field: aws.%s", field)
	}
}

func (c *Config) setAWSField(field, value string) error {
	if value == "" {
		return fmt.Errorf("invalid aws.%s: must not be empty", field)
	}
	switch field {
	case "cli_path":
		c.AWS.CLIPath = value
	case "session_manager_plugin":
		c.AWS.SessionManagerPlugin = value
	default:
		return fmt.Errorf("unknown field: aws.%s", field)
	}
	return nil
}

func (c *Config) getLoggingField(field string) (string, error) {
	switch field {
	case "level":
		return c.Logging.Level, nil
	case "file":
		return c.Logging.File, nil
	default:
		return "", fmt.Errorf("unknown field: logging.%s", field)
	}
}

func (c *Config) setLoggingField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Logging.Level = value
	case "file":
		c.Logging.File = value
	default:
		return fmt.Errorf("unknown field: logging.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Clamp page size rather than refusing to start over a cosmetic setting.
	if c.Prompt.PageSize < MinPageSize {
		c.Prompt.PageSize = MinPageSize
	}
	if c.Prompt.PageSize > MaxPageSize {
		c.Prompt.PageSize = MaxPageSize
	}

	if !isValidHelpMode(c.Prompt.HelpMode) {
		return fmt.Errorf("prompt.help_mode must be auto, always, or never (got: %s)", c.Prompt.HelpMode)
	}

	if c.AWS.CLIPath == "" {
		return errors.New("aws.cli_path must not be empty")
	}

	if c.AWS.SessionManagerPlugin == "" {
		return errors.New("aws.session_manager_plugin must not be empty")
	}

	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got: %s)", c.Logging.Level)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidHelpMode(mode string) bool {
	switch mode {
	case "auto", "always", "never":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Invalid values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SSMC_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Prompt.PageSize = n
		}
	}
	if v := os.Getenv("SSMC_HELP_MODE"); v != "" {
		if isValidHelpMode(v) {
			c.Prompt.HelpMode = v
		}
	}
	if v := os.Getenv("SSMC_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Logging.Level = v
		}
	}
	if v := os.Getenv("SSMC_AWS_CLI"); v != "" {
		c.AWS.CLIPath = v
	}
}

// ListKeys returns every settable configuration key.
func ListKeys() []string {
	return []string{
		"prompt.page_size",
		"prompt.help_mode",
		"aws.cli_path",
		"aws.session_manager_plugin",
		"logging.level",
		"logging.file",
	}
}
