package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"gocompare/adapters/stats/engine"
	"gocompare/adapters/stats/hypothesis"
	"gocompare/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Stats    StatsConfig
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	LogLevel string
}

// StatsConfig holds the comparison engine settings
type StatsConfig struct {
	Alpha             float64
	NormalityStrategy string
	KSThreshold       int
	Workers           int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DataConfig holds file loading settings
type DataConfig struct {
	CSVDelimiter string
	Sheet        string
}

// DatabaseConfig holds the optional SQL sample source settings
type DatabaseConfig struct {
	URL         string
	Table       string
	GroupColumn string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	stats, err := loadStatsConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load stats configuration")
	}

	config := &Config{
		Stats:    *stats,
		Server:   *loadServerConfig(),
		Data:     *loadDataConfig(),
		Database: *loadDatabaseConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Stats: StatsConfig{
			Alpha:             0.05,
			NormalityStrategy: string(hypothesis.StrategyAuto),
			KSThreshold:       hypothesis.DefaultShapiroWilkMaxN,
			Workers:           4,
		},
		Server:   ServerConfig{Port: "8080", GinMode: "release", ShutdownTimeout: 10 * time.Second},
		Data:     DataConfig{CSVDelimiter: ";"},
		Database: DatabaseConfig{Table: "experiment_observations", GroupColumn: "group_name"},
		LogLevel: "INFO",
	}
}

// EngineConfig returns the engine settings as a value
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Alpha:             c.Stats.Alpha,
		NormalityStrategy: hypothesis.NormalityStrategy(c.Stats.NormalityStrategy),
		ShapiroWilkMaxN:   c.Stats.KSThreshold,
	}
}

// Delimiter returns the CSV delimiter as a rune
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Data.CSVDelimiter)
	return r
}

func loadStatsConfig() (*StatsConfig, error) {
	defaults := Default().Stats

	alpha, err := getEnvFloat("ALPHA", defaults.Alpha)
	if err != nil {
		return nil, err
	}
	threshold, err := getEnvInt("KS_THRESHOLD", defaults.KSThreshold)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("WORKERS", defaults.Workers)
	if err != nil {
		return nil, err
	}

	return &StatsConfig{
		Alpha:             alpha,
		NormalityStrategy: getEnvOrDefault("NORMALITY_STRATEGY", defaults.NormalityStrategy),
		KSThreshold:       threshold,
		Workers:           workers,
	}, nil
}

func loadServerConfig() *ServerConfig {
	defaults := Default().Server
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", defaults.Port),
		GinMode:         getEnvOrDefault("GIN_MODE", defaults.GinMode),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", defaults.ShutdownTimeout),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		CSVDelimiter: getEnvOrDefault("CSV_DELIMITER", Default().Data.CSVDelimiter),
		Sheet:        os.Getenv("XLSX_SHEET"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	defaults := Default().Database
	return &DatabaseConfig{
		URL:         os.Getenv("DATABASE_URL"),
		Table:       getEnvOrDefault("SAMPLES_TABLE", defaults.Table),
		GroupColumn: getEnvOrDefault("SAMPLES_GROUP_COLUMN", defaults.GroupColumn),
	}
}

func validateConfig(config *Config) error {
	if err := config.EngineConfig().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if config.Stats.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("WORKERS must be at least 1, got %d", config.Stats.Workers))
	}
	if utf8.RuneCountInString(config.Data.CSVDelimiter) != 1 {
		return errors.ConfigInvalid(fmt.Sprintf("CSV_DELIMITER must be a single character, got %q", config.Data.CSVDelimiter))
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
