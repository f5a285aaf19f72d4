package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: StoreBackendSQL,
			Path:    "/some/path/giftcert.db",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_StoreBackends(t *testing.T) {
	tests := []struct {
		backend string
		valid   bool
	}{
		{"sql", true},
		{"orm", true},
		{"gorm", false},
		{"postgres", false},
		{"", false},
		{"SQL", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := validConfig()
			cfg.Store.Backend = tt.backend

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Path = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path cannot be empty")
}

func TestExpandDatabasePath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	expected := filepath.Join(homeDir, "giftcert", "giftcert.db")
	assert.Equal(t, expected, cfg.Store.Path)
}

func TestExpandDatabasePath_TildeExpansion(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{
			Path: "~/my-data/certs.db",
		},
	}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	expected := filepath.Join(homeDir, "my-data", "certs.db")
	assert.Equal(t, expected, cfg.Store.Path)
}

func TestExpandDatabasePath_AbsolutePath(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{
			Path: "/absolute/path/to/certs.db",
		},
	}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	assert.Equal(t, "/absolute/path/to/certs.db", cfg.Store.Path)
}

func TestExpandDatabasePath_RelativePath(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{
			Path: "relative/certs.db",
		},
	}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	// Should be converted to absolute path.
	assert.True(t, filepath.IsAbs(cfg.Store.Path))
	assert.Contains(t, cfg.Store.Path, "relative/certs.db")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	// Test flag value takes priority.
	result := getConfigValue("flag-value", "ENV_KEY", "default-value")
	assert.Equal(t, "flag-value", result)

	// Test env var when flag is empty. Lookup uses the GIFTCERT_ prefix.
	os.Setenv("GIFTCERT_TEST_ENV_KEY", "env-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("GIFTCERT_TEST_ENV_KEY")      //nolint:errcheck // Test cleanup

	result = getConfigValue("", "TEST_ENV_KEY", "default-value")
	assert.Equal(t, "env-value", result)

	// Test default when both are empty.
	result = getConfigValue("", "NONEXISTENT_KEY", "default-value")
	assert.Equal(t, "default-value", result)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	os.Setenv("GIFTCERT_STORE_BACKEND", "sql") //nolint:errcheck // Test setup
	defer os.Unsetenv("GIFTCERT_STORE_BACKEND")

	cfg, err := LoadConfig([]string{
		"-store-backend", "orm",
		"-db-path", "/tmp/giftcert-test.db",
		"-port", "9090",
		"-env-file", "/nonexistent/.env",
	})
	require.NoError(t, err)

	assert.Equal(t, StoreBackendORM, cfg.Store.Backend)
	assert.Equal(t, "/tmp/giftcert-test.db", cfg.Store.Path)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig([]string{"-env-file", "/nonexistent/.env"})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, StoreBackendSQL, cfg.Store.Backend)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.NotEmpty(t, cfg.Store.Path)
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	_, err := LoadConfig([]string{
		"-read-timeout", "not-a-duration",
		"-env-file", "/nonexistent/.env",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid read timeout")
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	// Create temp .env file.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
GIFTCERT_ENV=staging
GIFTCERT_LOG_LEVEL=debug
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Clear any existing env vars.
	os.Unsetenv("GIFTCERT_ENV")       //nolint:errcheck // Test cleanup
	os.Unsetenv("GIFTCERT_LOG_LEVEL") //nolint:errcheck // Test cleanup
	os.Unsetenv("QUOTED_VALUE")       //nolint:errcheck // Test cleanup
	os.Unsetenv("SINGLE_QUOTED")      //nolint:errcheck // Test cleanup
	defer func() {
		os.Unsetenv("GIFTCERT_ENV")       //nolint:errcheck // Test cleanup
		os.Unsetenv("GIFTCERT_LOG_LEVEL") //nolint:errcheck // Test cleanup
		os.Unsetenv("QUOTED_VALUE")       //nolint:errcheck // Test cleanup
		os.Unsetenv("SINGLE_QUOTED")      //nolint:errcheck // Test cleanup
	}()

	// Load the file.
	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Verify values were loaded.
	assert.Equal(t, "staging", os.Getenv("GIFTCERT_ENV"))
	assert.Equal(t, "debug", os.Getenv("GIFTCERT_LOG_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	// Create temp .env file with invalid format.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
ANOTHER_VALID=value
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Should return error.
	err = loadEnvFile(envFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	err := loadEnvFile("/nonexistent/file/.env")
	assert.Error(t, err)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	// Set env var first.
	os.Setenv("TEST_VAR", "original-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_VAR")           //nolint:errcheck // Test cleanup

	// Create temp .env file that tries to override it.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `TEST_VAR=new-value`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Load the file.
	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Original value should be preserved.
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}

func TestLoadEnvFile_Whitespace(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `  KEY_WITH_SPACES  =  value with spaces  `
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	os.Unsetenv("KEY_WITH_SPACES")       //nolint:errcheck // Test cleanup
	defer os.Unsetenv("KEY_WITH_SPACES") //nolint:errcheck // Test cleanup

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Whitespace should be trimmed.
	assert.Equal(t, "value with spaces", os.Getenv("KEY_WITH_SPACES"))
}
