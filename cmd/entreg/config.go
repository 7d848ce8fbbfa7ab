package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/logger"
)

// Config represents the entreg configuration, read from entreg.yml
type Config struct {
	Schema   string         `mapstructure:"schema"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// loadConfig loads the configuration from entreg.yml or entreg.yaml
func loadConfig() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("schema", "schema")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("log.level", "warn")

	// Set config name and paths
	v.SetConfigName("entreg")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// schemaPath returns the schema path from the flag or the config file
func (c *Config) schemaPath(flag string) string {
	if flag != "" {
		return flag
	}
	return c.Schema
}

// databaseDSN returns the connection string from the flag, the DATABASE_URL
// environment variable or the config file, in that order
func (c *Config) databaseDSN(flag string) string {
	if flag != "" {
		return flag
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.Database.DSN
}

// newRegistry builds a registry wired to the configured logger
func newRegistry(cfg *Config, strict bool) *entreg.Registry {
	opts := []entreg.ConfigOption{entreg.WithLogger(newLogger(cfg.Log.Level))}
	if strict {
		opts = append(opts, entreg.WithStrictAssociations())
	}
	return entreg.NewRegistry(opts...)
}

func newLogger(level string) logger.Interface {
	return logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
		LogLevel: logLevel(level),
		Colorful: !color.NoColor,
	})
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
