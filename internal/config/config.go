package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lucasefe/pbimentor/evaluator"
	"github.com/lucasefe/pbimentor/mentor"
)

// Config represents the pbimentor runtime configuration
type Config struct {
	Evaluator EvaluatorConfig `mapstructure:"evaluator"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Grading   GradingConfig   `mapstructure:"grading"`
}

// EvaluatorConfig selects the model backend
type EvaluatorConfig struct {
	Backend  string `mapstructure:"backend"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// GradingConfig represents batch grading configuration
type GradingConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load loads the configuration from path, or from pbimentor.yaml in the
// working directory when path is empty. Environment variables prefixed with
// PBIMENTOR_ override file values; GEMINI_API_KEY and GOOGLE_CLOUD_PROJECT
// are honored as fallbacks for the evaluator credentials.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("evaluator.backend", evaluator.BackendGemini)
	v.SetDefault("evaluator.api_key", "")
	v.SetDefault("evaluator.model", evaluator.DefaultModel)
	v.SetDefault("evaluator.project", "")
	v.SetDefault("evaluator.location", evaluator.DefaultLocation)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("grading.concurrency", mentor.DefaultConcurrency)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pbimentor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("PBIMENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("evaluator.api_key", "PBIMENTOR_EVALUATOR_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}
	if err := v.BindEnv("evaluator.project", "PBIMENTOR_EVALUATOR_PROJECT", "GOOGLE_CLOUD_PROJECT"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// EvaluatorSettings converts the evaluator section for evaluator.New.
func (c *Config) EvaluatorSettings(logger *zap.Logger) evaluator.Config {
	return evaluator.Config{
		Backend:  c.Evaluator.Backend,
		APIKey:   c.Evaluator.APIKey,
		Project:  c.Evaluator.Project,
		Location: c.Evaluator.Location,
		Model:    c.Evaluator.Model,
		Logger:   logger,
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	cfg.Evaluator.Backend = strings.ToLower(strings.TrimSpace(cfg.Evaluator.Backend))
	switch cfg.Evaluator.Backend {
	case evaluator.BackendGemini, evaluator.BackendVertex:
	default:
		return fmt.Errorf("evaluator.backend must be %q or %q, got: %s", evaluator.BackendGemini, evaluator.BackendVertex, cfg.Evaluator.Backend)
	}

	if cfg.Grading.Concurrency < 1 {
		return fmt.Errorf("grading.concurrency must be at least 1, got: %d", cfg.Grading.Concurrency)
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

// LoadAssignment reads an assignment file:
//
//	questions:
//	  dax: Create a measure for year-to-date sales.
//	  visual: Build a bar chart of sales by region.
//	  write: Summarize the sales trend.
//	prompts:
//	  dax: Check the use of time intelligence.
//	  visual: ...
//	  write: ...
func LoadAssignment(path string) (*mentor.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment: %w", err)
	}

	var assignment mentor.Assignment
	if err := yaml.Unmarshal(data, &assignment); err != nil {
		return nil, fmt.Errorf("failed to parse assignment %s: %w", path, err)
	}

	q := assignment.Questions
	if strings.TrimSpace(q.DAX+q.Visual+q.Write) == "" {
		return nil, fmt.Errorf("assignment %s has no questions", path)
	}

	return &assignment, nil
}
