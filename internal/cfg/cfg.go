package cfg

import (
	"fmt"
	"os"
	"strconv"

	"shopping-eval/internal/common"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	TestSize     float64
	Seed         int64
	Neighbors    int
	Workers      int
	DataPath     string
	OutputPath   string
	MetricsFile  string
	ShowProgress bool
	LogLevel     string
}

type ConfigFile struct {
	Split struct {
		TestSize float64 `yaml:"testSize"`
		Seed     int64   `yaml:"seed"`
	} `yaml:"split"`

	Model struct {
		Neighbors int `yaml:"neighbors"`
		Workers   int `yaml:"workers"`
	} `yaml:"model"`

	System struct {
		DataPath     string `yaml:"dataPath"`
		OutputPath   string `yaml:"outputPath"`
		MetricsFile  string `yaml:"metricsFile"`
		ShowProgress bool   `yaml:"showProgress"`
		LogLevel     string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables override the file
	settings := Settings{
		TestSize:     getFloatFromEnvOrConfig(common.EnvTestSize, config.Split.TestSize, common.DefaultTestSize),
		Seed:         getInt64FromEnvOrConfig(common.EnvSplitSeed, config.Split.Seed),
		Neighbors:    getIntFromEnvOrConfig(common.EnvNeighbors, config.Model.Neighbors, common.DefaultNeighbors),
		Workers:      getIntFromEnvOrConfig(common.EnvWorkers, config.Model.Workers, common.DefaultWorkers),
		DataPath:     getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		OutputPath:   getEnvOrDefault(common.EnvOutputPath, config.System.OutputPath),
		MetricsFile:  getEnvOrDefault(common.EnvMetricsFile, config.System.MetricsFile),
		ShowProgress: getBoolFromEnvOrConfig(common.EnvShowProgress, config.System.ShowProgress),
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		TestSize:     getFloatOrDefault(common.EnvTestSize, common.DefaultTestSize),
		Seed:         getInt64OrDefault(common.EnvSplitSeed, 0),
		Neighbors:    getIntOrDefault(common.EnvNeighbors, common.DefaultNeighbors),
		Workers:      getIntOrDefault(common.EnvWorkers, common.DefaultWorkers),
		DataPath:     os.Getenv(common.EnvDataPath),    // optional
		OutputPath:   os.Getenv(common.EnvOutputPath),  // optional
		MetricsFile:  os.Getenv(common.EnvMetricsFile), // optional
		ShowProgress: getBoolOrDefault(common.EnvShowProgress, false),
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
		warnMalformed(key, v, defaultValue)
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
		warnMalformed(key, v, defaultValue)
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
		warnMalformed(key, v, defaultValue)
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
		warnMalformed(key, v, defaultValue)
	}
	return defaultValue
}

// warnMalformed logs an override that could not be parsed and is being ignored.
func warnMalformed(key, value string, fallback interface{}) {
	log.Warn().
		Str("key", key).
		Str("value", value).
		Interface("using", fallback).
		Msg("Ignoring malformed configuration value")
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if configValue != 0 {
		return getIntOrDefault(key, configValue)
	}
	return getIntOrDefault(key, defaultValue)
}

func getInt64FromEnvOrConfig(key string, configValue int64) int64 {
	return getInt64OrDefault(key, configValue)
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if configValue != 0 {
		return getFloatOrDefault(key, configValue)
	}
	return getFloatOrDefault(key, defaultValue)
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	return getBoolOrDefault(key, configValue)
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.TestSize <= 0 || settings.TestSize >= 1 {
		return fmt.Errorf("test size must be between 0 and 1 (exclusive), got %f", settings.TestSize)
	}
	if settings.Seed < 0 {
		return fmt.Errorf("split seed must not be negative, got %d", settings.Seed)
	}
	if settings.Neighbors < 1 || settings.Neighbors > common.MaxNeighbors {
		return fmt.Errorf("neighbors must be between 1 and %d, got %d", common.MaxNeighbors, settings.Neighbors)
	}
	if settings.Workers < 1 || settings.Workers > common.MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", common.MaxWorkers, settings.Workers)
	}
	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	if settings.DataPath != "" {
		info, err := os.Stat(settings.DataPath)
		if err != nil {
			return fmt.Errorf("data path %s: %w", settings.DataPath, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path %s is not a directory", settings.DataPath)
		}
	}

	return nil
}
