package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"kstest/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Test   TestConfig
	Series SeriesConfig
	Batch  BatchConfig
	Log    LogConfig
}

// TestConfig holds the defaults applied to every two-sample test
type TestConfig struct {
	Confidence            float64 `validate:"gt=0,lt=1"`
	Strategy              string  `validate:"oneof=critical probability both"`
	ParallelSortThreshold int     `validate:"min=0"`
	CrossCheck            bool
}

// SeriesConfig bounds the Kolmogorov series evaluation
type SeriesConfig struct {
	MaxTerms  int     `validate:"min=1,max=100000"`
	Tolerance float64 `validate:"gt=0,lt=1"`
}

// BatchConfig holds batch runner settings
type BatchConfig struct {
	Concurrency int `validate:"min=1,max=1024"`
	MetricsFile string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

var validate = validator.New()

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Test: TestConfig{
			Confidence:            0.95,
			Strategy:              "both",
			ParallelSortThreshold: 65536,
			CrossCheck:            false,
		},
		Series: SeriesConfig{
			MaxTerms:  100,
			Tolerance: 1e-10,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()
	var err error

	if config.Test.Confidence, err = getEnvFloatOrDefault("KS_CONFIDENCE", config.Test.Confidence); err != nil {
		return nil, err
	}
	config.Test.Strategy = strings.ToLower(getEnvOrDefault("KS_STRATEGY", config.Test.Strategy))
	if config.Test.ParallelSortThreshold, err = getEnvIntOrDefault("KS_PARALLEL_SORT_THRESHOLD", config.Test.ParallelSortThreshold); err != nil {
		return nil, err
	}
	if config.Test.CrossCheck, err = getEnvBoolOrDefault("KS_CROSS_CHECK", config.Test.CrossCheck); err != nil {
		return nil, err
	}

	if config.Series.MaxTerms, err = getEnvIntOrDefault("KS_SERIES_MAX_TERMS", config.Series.MaxTerms); err != nil {
		return nil, err
	}
	if config.Series.Tolerance, err = getEnvFloatOrDefault("KS_SERIES_TOLERANCE", config.Series.Tolerance); err != nil {
		return nil, err
	}

	if config.Batch.Concurrency, err = getEnvIntOrDefault("KS_BATCH_CONCURRENCY", config.Batch.Concurrency); err != nil {
		return nil, err
	}
	config.Batch.MetricsFile = getEnvOrDefault("KS_METRICS_FILE", "")

	config.Log.Level = strings.ToUpper(getEnvOrDefault("LOG_LEVEL", config.Log.Level))

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s=%s, got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return errors.ConfigInvalid("invalid fields: " + strings.Join(fields, "; "))
		}
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s must be a boolean, got %q", key, value))
	}
	return boolValue, nil
}
