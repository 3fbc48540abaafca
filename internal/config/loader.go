package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Load builds a Config from defaults, then overrides them with a .json config file
// (the path is stored in the CONFIG_PATH environment variable), then with
// environment variables, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if err := loadFromJSON(cfg, getConfigPath()); err != nil {
		return nil, fmt.Errorf("failed to load config from JSON: %w", err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "password",
			DBName:         "auth",
			SSLMode:        "disable",
			MigrationsPath: "migrations",
		},
		Redis: RedisConfig{
			StoreURL: "redis://127.0.0.1:6379/3",
			Timeout:  Duration(3 * time.Second),
		},
		JWT: JWTConfig{
			SecretKey:  "secret_key",
			AccessTTL:  Duration(15 * time.Minute),
			RefreshTTL: Duration(30 * 24 * time.Hour),
		},
		SignIn: SignInConfig{
			MaxAttempts: 5,
			Window:      Duration(15 * time.Minute),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func loadFromJSON(cfg *Config, configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cfg)
}

func loadFromEnv(cfg *Config) error {
	return env.Parse(cfg)
}

// getConfigPath reads path to .json config from CONFIG_PATH env variable
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join("config", "config.json")
}

func validate(cfg *Config) error {
	validate := validator.New()

	// Custom validation for Duration type: must be greater than 0
	if err := validate.RegisterValidation("duration_gt0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(Duration)
		return ok && d > 0
	}); err != nil {
		return err
	}

	return validate.Struct(cfg)
}
