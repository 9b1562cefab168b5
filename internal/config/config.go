package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete
	Currency      string `yaml:"currency" json:"currency"`             // Symbol printed before amounts
	DBPath        string `yaml:"db_path" json:"db_path"`               // SQLite file holding the snapshots

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the data directory, ~/.ironbill unless IRONBILL_HOME is set
func Dir() (string, error) {
	if dir := os.Getenv("IRONBILL_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ironbill"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath := ""
	dbPath := ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "ironbill.log")
		dbPath = filepath.Join(dir, "ironbill.db")
	}

	return &Config{
		ConfirmDelete: true,
		Currency:      "$",
		DBPath:        dbPath,
		LogLevel:      getEnv("IRONBILL_LOG_LEVEL", "INFO"),
		LogFile:       getEnv("IRONBILL_LOG_FILE", logPath),
		LogConsole:    getEnv("IRONBILL_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Path returns the location of config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from the data directory, falling back to defaults
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment wins over the file
	if v := os.Getenv("IRONBILL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("IRONBILL_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("IRONBILL_LOG_CONSOLE"); v != "" {
		cfg.LogConsole = v == "true"
	}

	return cfg, nil
}

// Save saves config to config.yaml in the data directory
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// FormatMoney renders an amount with the configured currency symbol
func (c *Config) FormatMoney(amount float64) string {
	return fmt.Sprintf("%s%.2f", c.Currency, amount)
}
