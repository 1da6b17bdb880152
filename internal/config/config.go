// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level string
}

// AppConfig is the full process configuration.
type AppConfig struct {
	Server  ServerConfig
	Logging LoggingConfig
}

// Load reads configuration from the environment, with an optional .env
// file providing defaults for local development.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("LOG_LEVEL", "info")

	shutdownTimeout, err := time.ParseDuration(viper.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	return &AppConfig{
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}, nil
}
