// Package config loads runtime settings from an optional strategos.yaml,
// a .env file and STRATEGOS_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "STRATEGOS"

type Config struct {
	Database    DatabaseConfig   `mapstructure:"database"`
	Tenant      TenantConfig     `mapstructure:"tenant"`
	Log         LogConfig        `mapstructure:"log"`
	Events      EventsConfig     `mapstructure:"events"`
	DataSources DataSourceConfig `mapstructure:"datasources"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// TenantConfig supplies the CLI's default tenant. Flags override it.
type TenantConfig struct {
	OrganizationID string `mapstructure:"organization_id"`
	BranchID       string `mapstructure:"branch_id"`
	UserID         string `mapstructure:"user_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EventsConfig enables the Redis stream sink when RedisAddr is set.
type EventsConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisStream   string `mapstructure:"redis_stream"`
	RedisMaxLen   int64  `mapstructure:"redis_max_len"`
}

type DataSourceConfig struct {
	SnapshotFile string `mapstructure:"snapshot_file"`
	SQLEnabled   bool   `mapstructure:"sql_enabled"`
}

// Options controls where Load looks. Zero values use the defaults.
type Options struct {
	// ConfigFile, when set, must exist.
	ConfigFile string
	// EnvFile is loaded with godotenv when present. Defaults to ".env".
	EnvFile string
	// Home replaces os.UserHomeDir, mainly for tests.
	Home string
}

func Load() (*Config, error) {
	return LoadWith(Options{})
}

func LoadWith(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already set in the process.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	home := opts.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		home = h
	}

	v := viper.New()
	setDefaults(v, home)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("strategos")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(filepath.Join(home, ".strategos"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("database.path", filepath.Join(home, ".strategos", "strategos.db"))
	v.SetDefault("tenant.organization_id", "")
	v.SetDefault("tenant.branch_id", "")
	v.SetDefault("tenant.user_id", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("events.redis_addr", "")
	v.SetDefault("events.redis_password", "")
	v.SetDefault("events.redis_db", 0)
	v.SetDefault("events.redis_stream", "strategos:events")
	v.SetDefault("events.redis_max_len", 10000)
	v.SetDefault("datasources.snapshot_file", "")
	v.SetDefault("datasources.sql_enabled", true)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("config: database.path must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q must be debug, info, warn or error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format %q must be console or json", c.Log.Format)
	}
	if c.Events.RedisDB < 0 {
		return fmt.Errorf("config: events.redis_db %d must not be negative", c.Events.RedisDB)
	}
	return nil
}

// RedisEnabled reports whether events should also go to a Redis stream.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Events.RedisAddr) != ""
}
