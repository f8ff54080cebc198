// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is the full service and training configuration.
type Config struct {
	Model struct {
		Path        string `yaml:"path"`
		MetricsPath string `yaml:"metrics_path"`
		Watch       bool   `yaml:"watch"`
	} `yaml:"model"`
	Dataset struct {
		SQLitePath string `yaml:"sqlite_path"`
		Table      string `yaml:"table"`
		CSVPath    string `yaml:"csv_path"`
	} `yaml:"dataset"`
	HTTP struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		CacheSize      int      `yaml:"cache_size"`
	} `yaml:"http"`
	Training struct {
		TestSize         float64 `yaml:"test_size"`
		CVFolds          int     `yaml:"cv_folds"`
		SearchIterations int     `yaml:"search_iterations"`
		RandomState      int64   `yaml:"random_state"`
	} `yaml:"training"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Model.Path = "models/depression_model.json"
	c.Model.MetricsPath = "models/metrics.json"
	c.Model.Watch = true
	c.Dataset.SQLitePath = "data/students.db"
	c.Dataset.Table = "student_lifestyle"
	c.Dataset.CSVPath = "data/students.csv"
	c.HTTP.Port = 8000
	c.HTTP.TimeoutSeconds = 30
	c.HTTP.AllowedOrigins = []string{"*"}
	c.HTTP.CacheSize = 1024
	c.Training.TestSize = 0.2
	c.Training.CVFolds = 3
	c.Training.SearchIterations = 20
	c.Training.RandomState = 42
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 50
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	return &c
}

// Load reads the YAML file at path, then applies environment overrides. A
// missing file is not an error; defaults apply. A .env file, if present,
// seeds the environment first.
func Load(path string) (*Config, error) {
	godotenv.Load()

	config := Default()
	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
	} else {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(config)
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("METRICS_PATH"); v != "" {
		c.Model.MetricsPath = v
	}
	if v := os.Getenv("DATASET_SQLITE_PATH"); v != "" {
		c.Dataset.SQLitePath = v
	}
	if v := os.Getenv("DATASET_CSV_PATH"); v != "" {
		c.Dataset.CSVPath = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = port
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

func (c *Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTP.Port)
	}
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("test_size must be in (0, 1), got %g", c.Training.TestSize)
	}
	if c.Training.CVFolds < 2 {
		return fmt.Errorf("cv_folds must be at least 2, got %d", c.Training.CVFolds)
	}
	if c.Training.SearchIterations < 1 {
		return fmt.Errorf("search_iterations must be at least 1, got %d", c.Training.SearchIterations)
	}
	return nil
}
