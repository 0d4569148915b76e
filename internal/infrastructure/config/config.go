package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"

	valueobjects "startgate/internal/domain/value_objects"
)

const (
	defaultDatabasePort       = 5432
	defaultDatabaseSSLMode    = "disable"
	defaultRetryInterval      = 2 * time.Second
	defaultProbeTimeout       = 5 * time.Second
	defaultBackoffInitial     = 500 * time.Millisecond
	defaultBackoffMaxInterval = 30 * time.Second
	defaultBackoffMaxAttempts = 20
	defaultBackoffMaxElapsed  = 5 * time.Minute
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
)

const configFileEnv = "STARTGATE_CONFIG_FILE"

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Gate       GateConfig       `toml:"gate"`
	Migrations MigrationsConfig `toml:"migrations"`
	Log        LogConfig        `toml:"log"`
}

type DatabaseConfig struct {
	Host     string `toml:"host" env:"DB_HOST"`
	Port     int    `toml:"port" env:"DB_PORT"`
	Name     string `toml:"name" env:"DB_NAME"`
	User     string `toml:"user" env:"DB_USER"`
	Password string `toml:"password" env:"DB_PASSWORD"`
	SSLMode  string `toml:"sslmode" env:"DB_SSLMODE"`
}

type GateConfig struct {
	RetryPolicy          string        `toml:"retry_policy" env:"STARTGATE_RETRY_POLICY"`
	RetryInterval        time.Duration `toml:"retry_interval" env:"STARTGATE_RETRY_INTERVAL"`
	ProbeTimeout         time.Duration `toml:"probe_timeout" env:"STARTGATE_PROBE_TIMEOUT"`
	BackoffInitial       time.Duration `toml:"backoff_initial" env:"STARTGATE_BACKOFF_INITIAL"`
	BackoffMaxInterval   time.Duration `toml:"backoff_max_interval" env:"STARTGATE_BACKOFF_MAX_INTERVAL"`
	BackoffMaxAttempts   uint          `toml:"backoff_max_attempts" env:"STARTGATE_BACKOFF_MAX_ATTEMPTS"`
	BackoffMaxElapsed    time.Duration `toml:"backoff_max_elapsed" env:"STARTGATE_BACKOFF_MAX_ELAPSED"`
	FailFastConfigErrors bool          `toml:"fail_fast_config_errors" env:"STARTGATE_FAIL_FAST_CONFIG_ERRORS"`
}

type MigrationsConfig struct {
	// Path is a directory of golang-migrate revisions; empty selects the
	// embedded baseline set.
	Path string `toml:"path" env:"MIGRATIONS_PATH"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"STARTGATE_LOG_LEVEL"`
	Format string `toml:"format" env:"STARTGATE_LOG_FORMAT"`
}

type LoadOptions struct {
	// ConfigFile is an optional TOML file; STARTGATE_CONFIG_FILE is used when
	// empty. Environment variables override values from the file.
	ConfigFile string
}

func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Port:    defaultDatabasePort,
			SSLMode: defaultDatabaseSSLMode,
		},
		Gate: GateConfig{
			RetryPolicy:        valueobjects.RetryPolicyFixed.String(),
			RetryInterval:      defaultRetryInterval,
			ProbeTimeout:       defaultProbeTimeout,
			BackoffInitial:     defaultBackoffInitial,
			BackoffMaxInterval: defaultBackoffMaxInterval,
			BackoffMaxAttempts: defaultBackoffMaxAttempts,
			BackoffMaxElapsed:  defaultBackoffMaxElapsed,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

func LoadConfig(options LoadOptions) (Config, *ConfigError) {
	cfg := Defaults()

	configFile := strings.TrimSpace(options.ConfigFile)
	if configFile == "" {
		configFile = strings.TrimSpace(os.Getenv(configFileEnv))
	}
	if configFile != "" {
		if _, err := toml.DecodeFile(configFile, &cfg); err != nil {
			return Config{}, &ConfigError{
				Code:     "CONFIG_FILE_INVALID",
				Message:  "config file could not be decoded",
				Metadata: map[string]string{"path": configFile, "error": err.Error()},
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, &ConfigError{
			Code:     "CONFIG_ENV_INVALID",
			Message:  "environment configuration is invalid",
			Metadata: map[string]string{"error": err.Error()},
		}
	}

	cfg.normalize()
	if cfgErr := cfg.Validate(); cfgErr != nil {
		return Config{}, cfgErr
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Database.Host = strings.TrimSpace(c.Database.Host)
	c.Database.Name = strings.TrimSpace(c.Database.Name)
	c.Database.User = strings.TrimSpace(c.Database.User)
	c.Database.SSLMode = strings.ToLower(strings.TrimSpace(c.Database.SSLMode))
	c.Gate.RetryPolicy = strings.ToLower(strings.TrimSpace(c.Gate.RetryPolicy))
	c.Migrations.Path = strings.TrimSpace(c.Migrations.Path)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate only rejects values that are missing or unusable on their face.
// Values that parse but are wrong (a bad password, an unknown host) surface
// as probe failures instead.
func (c Config) Validate() *ConfigError {
	required := []struct {
		value string
		env   string
		code  string
	}{
		{c.Database.Host, "DB_HOST", "CONFIG_DB_HOST_REQUIRED"},
		{c.Database.Name, "DB_NAME", "CONFIG_DB_NAME_REQUIRED"},
		{c.Database.User, "DB_USER", "CONFIG_DB_USER_REQUIRED"},
		{c.Database.Password, "DB_PASSWORD", "CONFIG_DB_PASSWORD_REQUIRED"},
	}
	for _, field := range required {
		if field.value == "" {
			return &ConfigError{
				Code:    field.code,
				Message: field.env + " is required",
			}
		}
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return &ConfigError{
			Code:     "CONFIG_DB_PORT_INVALID",
			Message:  "DB_PORT must be between 1 and 65535",
			Metadata: map[string]string{"port": strconv.Itoa(c.Database.Port)},
		}
	}

	policy, appErr := valueobjects.ParseRetryPolicyKind(c.Gate.RetryPolicy)
	if appErr != nil {
		return &ConfigError{
			Code:     "CONFIG_RETRY_POLICY_INVALID",
			Message:  "STARTGATE_RETRY_POLICY must be fixed or exponential",
			Metadata: map[string]string{"retry_policy": c.Gate.RetryPolicy},
		}
	}

	if c.Gate.ProbeTimeout < 0 {
		return &ConfigError{
			Code:    "CONFIG_PROBE_TIMEOUT_INVALID",
			Message: "STARTGATE_PROBE_TIMEOUT must not be negative",
		}
	}

	switch policy {
	case valueobjects.RetryPolicyFixed:
		if c.Gate.RetryInterval <= 0 {
			return &ConfigError{
				Code:    "CONFIG_RETRY_INTERVAL_INVALID",
				Message: "STARTGATE_RETRY_INTERVAL must be greater than zero",
			}
		}
	case valueobjects.RetryPolicyExponential:
		if c.Gate.BackoffInitial <= 0 ||
			c.Gate.BackoffMaxInterval < c.Gate.BackoffInitial ||
			c.Gate.BackoffMaxAttempts == 0 ||
			c.Gate.BackoffMaxElapsed <= 0 {
			return &ConfigError{
				Code:    "CONFIG_BACKOFF_INVALID",
				Message: "exponential retry policy requires positive backoff settings with max interval >= initial interval",
			}
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return &ConfigError{
			Code:     "CONFIG_LOG_LEVEL_INVALID",
			Message:  "STARTGATE_LOG_LEVEL must be debug, info, warn, error, dpanic, panic or fatal",
			Metadata: map[string]string{"level": c.Log.Level},
		}
	}

	switch c.Log.Format {
	case LogFormatJSON, LogFormatConsole:
	default:
		return &ConfigError{
			Code:     "CONFIG_LOG_FORMAT_INVALID",
			Message:  "STARTGATE_LOG_FORMAT must be json or console",
			Metadata: map[string]string{"format": c.Log.Format},
		}
	}

	return nil
}

// DatabaseURL renders the connection parameters as a postgres URL accepted by
// both pgx and golang-migrate.
func (c Config) DatabaseURL() string {
	query := url.Values{}
	query.Set("sslmode", c.Database.SSLMode)

	databaseURL := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: query.Encode(),
	}
	return databaseURL.String()
}

// DatabaseTarget is the credential-free label used in logs and error details.
func (c Config) DatabaseTarget() string {
	return net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)) + "/" + c.Database.Name
}

func (c Config) RetryPolicy() valueobjects.RetryPolicyKind {
	return valueobjects.RetryPolicyKind(c.Gate.RetryPolicy)
}
