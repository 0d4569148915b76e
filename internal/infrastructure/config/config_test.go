//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	valueobjects "startgate/internal/domain/value_objects"
)

var configEnvVars = []string{
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSLMODE",
	"STARTGATE_RETRY_POLICY", "STARTGATE_RETRY_INTERVAL", "STARTGATE_PROBE_TIMEOUT",
	"STARTGATE_BACKOFF_INITIAL", "STARTGATE_BACKOFF_MAX_INTERVAL", "STARTGATE_BACKOFF_MAX_ATTEMPTS",
	"STARTGATE_BACKOFF_MAX_ELAPSED", "STARTGATE_FAIL_FAST_CONFIG_ERRORS", "MIGRATIONS_PATH",
	"STARTGATE_LOG_LEVEL", "STARTGATE_LOG_FORMAT", "STARTGATE_CONFIG_FILE",
}

// isolateEnv clears every variable the loader reads so host settings cannot
// leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func setDatabaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "caritas_db")
	t.Setenv("DB_USER", "caritas_user")
	t.Setenv("DB_PASSWORD", "p@ss:word/1")
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)

	cfg, cfgErr := LoadConfig(LoadOptions{})
	require.Nil(t, cfgErr)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, valueobjects.RetryPolicyFixed, cfg.RetryPolicy())
	assert.Equal(t, 2*time.Second, cfg.Gate.RetryInterval)
	assert.Equal(t, 5*time.Second, cfg.Gate.ProbeTimeout)
	assert.False(t, cfg.Gate.FailFastConfigErrors)
	assert.Empty(t, cfg.Migrations.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
	assert.Equal(t, "db:5432/caritas_db", cfg.DatabaseTarget())
}

func TestLoadConfigRequiresDatabaseSettings(t *testing.T) {
	tests := []struct {
		unset string
		code  string
	}{
		{unset: "DB_HOST", code: "CONFIG_DB_HOST_REQUIRED"},
		{unset: "DB_NAME", code: "CONFIG_DB_NAME_REQUIRED"},
		{unset: "DB_USER", code: "CONFIG_DB_USER_REQUIRED"},
		{unset: "DB_PASSWORD", code: "CONFIG_DB_PASSWORD_REQUIRED"},
	}

	for _, tc := range tests {
		t.Run(tc.unset, func(t *testing.T) {
			isolateEnv(t)
			setDatabaseEnv(t)
			require.NoError(t, os.Unsetenv(tc.unset))

			_, cfgErr := LoadConfig(LoadOptions{})
			require.NotNil(t, cfgErr)
			assert.Equal(t, tc.code, cfgErr.Code)
		})
	}
}

func TestDatabaseURLEscapesCredentials(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("DB_SSLMODE", "Require")

	cfg, cfgErr := LoadConfig(LoadOptions{})
	require.Nil(t, cfgErr)

	assert.Equal(t, "postgres://caritas_user:p%40ss%3Aword%2F1@db:5432/caritas_db?sslmode=require", cfg.DatabaseURL())
	assert.NotContains(t, cfg.DatabaseTarget(), "caritas_user")
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("DB_PORT", "70000")

	_, cfgErr := LoadConfig(LoadOptions{})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_DB_PORT_INVALID", cfgErr.Code)
}

func TestLoadConfigRejectsUnparsableEnv(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("STARTGATE_RETRY_INTERVAL", "soon")

	_, cfgErr := LoadConfig(LoadOptions{})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_ENV_INVALID", cfgErr.Code)
}

func TestLoadConfigRejectsUnknownRetryPolicy(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("STARTGATE_RETRY_POLICY", "linear")

	_, cfgErr := LoadConfig(LoadOptions{})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_RETRY_POLICY_INVALID", cfgErr.Code)
}

func TestLoadConfigExponentialPolicy(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("STARTGATE_RETRY_POLICY", "exponential")
	t.Setenv("STARTGATE_BACKOFF_MAX_ATTEMPTS", "7")

	cfg, cfgErr := LoadConfig(LoadOptions{})
	require.Nil(t, cfgErr)
	assert.Equal(t, valueobjects.RetryPolicyExponential, cfg.RetryPolicy())
	assert.Equal(t, uint(7), cfg.Gate.BackoffMaxAttempts)

	t.Setenv("STARTGATE_BACKOFF_MAX_ATTEMPTS", "0")
	_, cfgErr = LoadConfig(LoadOptions{})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_BACKOFF_INVALID", cfgErr.Code)
}

func TestLoadConfigRejectsUnknownLogFormat(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("STARTGATE_LOG_FORMAT", "xml")

	_, cfgErr := LoadConfig(LoadOptions{})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_LOG_FORMAT_INVALID", cfgErr.Code)
}

func TestLoadConfigRejectsUnknownLogLevel(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("STARTGATE_LOG_LEVEL", "loud")

	_, cfgErr := LoadConfig(LoadOptions{})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_LOG_LEVEL_INVALID", cfgErr.Code)
	assert.Equal(t, "loud", cfgErr.Metadata["level"])
}

func TestLoadConfigAcceptsUppercaseLogLevel(t *testing.T) {
	isolateEnv(t)
	setDatabaseEnv(t)
	t.Setenv("STARTGATE_LOG_LEVEL", "WARN")

	cfg, cfgErr := LoadConfig(LoadOptions{})
	require.Nil(t, cfgErr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

const sampleConfigFile = `
[database]
host = "file-db"
port = 6543
name = "caritas_db"
user = "caritas_user"
password = "from-file"

[gate]
retry_interval = "3s"
fail_fast_config_errors = true

[migrations]
path = "/srv/migrations"

[log]
format = "console"
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "startgate.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfigFile(t, sampleConfigFile)

	cfg, cfgErr := LoadConfig(LoadOptions{ConfigFile: path})
	require.Nil(t, cfgErr)

	assert.Equal(t, "file-db", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 3*time.Second, cfg.Gate.RetryInterval)
	assert.True(t, cfg.Gate.FailFastConfigErrors)
	assert.Equal(t, "/srv/migrations", cfg.Migrations.Path)
	assert.Equal(t, LogFormatConsole, cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Gate.ProbeTimeout, "unset file keys keep their defaults")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("STARTGATE_CONFIG_FILE", writeConfigFile(t, sampleConfigFile))
	t.Setenv("DB_HOST", "env-db")
	t.Setenv("STARTGATE_RETRY_INTERVAL", "1s")

	cfg, cfgErr := LoadConfig(LoadOptions{})
	require.Nil(t, cfgErr)

	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, time.Second, cfg.Gate.RetryInterval)
	assert.Equal(t, "from-file", cfg.Database.Password)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	isolateEnv(t)

	_, cfgErr := LoadConfig(LoadOptions{ConfigFile: writeConfigFile(t, "[database\nhost=")})
	require.NotNil(t, cfgErr)
	assert.Equal(t, "CONFIG_FILE_INVALID", cfgErr.Code)
}
