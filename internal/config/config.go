// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// envPrefix is prepended to every environment variable key.
const envPrefix = "GIFTCERT_"

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Store  StoreConfig
	Server ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// Backend selects the persistence implementation: "sql" for the
	// hand-written SQL store, "orm" for the GORM store.
	Backend string
	// Path is the SQLite database file path.
	Path string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// Store backend values accepted by StoreConfig.Backend.
const (
	StoreBackendSQL = "sql"
	StoreBackendORM = "orm"
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables (GIFTCERT_ prefix).
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := newFlagSet()

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(fs.envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(fs.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(fs.logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(fs.logFormat, "LOG_FORMAT", ""),
		},
		Store: StoreConfig{
			Backend: getConfigValue(fs.storeBackend, "STORE_BACKEND", StoreBackendSQL),
			Path:    getConfigValue(fs.dbPath, "DB_PATH", ""),
		},
		Server: ServerConfig{
			Host: getConfigValue(fs.host, "SERVER_HOST", ""),
			Port: getConfigValue(fs.port, "SERVER_PORT", "8080"),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(fs.readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeout, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeout

	writeTimeoutStr := getConfigValue(fs.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeout, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeout

	idleTimeoutStr := getConfigValue(fs.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeout, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeout

	// Expand and validate the database path.
	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// flagValues carries the parsed command-line flag values.
type flagValues struct {
	flags *flag.FlagSet

	env          string
	logLevel     string
	logFormat    string
	storeBackend string
	dbPath       string
	host         string
	port         string
	readTimeout  string
	writeTimeout string
	idleTimeout  string
	envFile      string
}

// newFlagSet defines the command-line flags on a fresh FlagSet so
// LoadConfig can be called more than once (e.g. from tests).
func newFlagSet() *flagValues {
	fv := &flagValues{flags: flag.NewFlagSet("giftcert", flag.ContinueOnError)}

	fv.flags.StringVar(&fv.env, "env", "", "Environment (development, staging, production)")
	fv.flags.StringVar(&fv.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fv.flags.StringVar(&fv.logFormat, "log-format", "", "Log format (json, pretty)")
	fv.flags.StringVar(&fv.storeBackend, "store-backend", "", "Persistence backend (sql, orm)")
	fv.flags.StringVar(&fv.dbPath, "db-path", "", "Path to the SQLite database file")
	fv.flags.StringVar(&fv.host, "host", "", "Server bind host")
	fv.flags.StringVar(&fv.port, "port", "", "Server port (default: 8080)")
	fv.flags.StringVar(&fv.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fv.flags.StringVar(&fv.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fv.flags.StringVar(&fv.idleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fv.flags.StringVar(&fv.envFile, "env-file", ".env", "Path to .env file")

	return fv
}

// Parse parses the supplied command-line arguments.
func (fv *flagValues) Parse(args []string) error {
	return fv.flags.Parse(args)
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.Backend != StoreBackendSQL && c.Store.Backend != StoreBackendORM {
		return fmt.Errorf("invalid store backend: %s (must be %s or %s)", c.Store.Backend, StoreBackendSQL, StoreBackendORM)
	}

	if c.Store.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDatabasePath expands ~ and makes the path absolute.
// Defaults to {home}/giftcert/giftcert.db if not specified.
func (c *Config) expandDatabasePath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "giftcert", "giftcert.db")

	expanded, err := expandPath(c.Store.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Store.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
// The env key is looked up with the GIFTCERT_ prefix.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envPrefix + envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
