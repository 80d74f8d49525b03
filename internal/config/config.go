package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsHost string `toml:"metrics_host"`
	MetricsPort int    `toml:"metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StoreDriver    string `toml:"store_driver"`
	DiskRootPath   string `toml:"disk_root_path"`
	SQLitePath     string `toml:"sqlite_path"`
	CacheSizeMB    int    `toml:"cache_size_mb"`
	CacheExpireSec int    `toml:"cache_expire_sec"`
	// redis, also used for rate limiting when set
	RedisHost      string `toml:"redis_host"`
	RedisPort      int    `toml:"redis_port"`
	RedisKeyPrefix string `toml:"redis_key_prefix"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// http
	AllowedOrigins     []string `toml:"allowed_origins"`
	BulkRequestsPerMin int      `toml:"bulk_requests_per_min"`
	// client (logbookctl)
	ServiceURL string `toml:"service_url"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the config section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found in %s", env, path)
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}

	return cfg, nil
}

// Secrets are never kept in the config file.
type Secrets struct {
	RedisPassword    string `envconfig:"REDIS_PASS"`
	PostgresPassword string `envconfig:"POSTGRES_PASS"`
	SentryDSN        string `envconfig:"SENTRY_DSN"`
	HoneycombEnabled bool   `envconfig:"HONEYCOMB_ENABLED" default:"false"`
	HoneycombAPIKey  string `envconfig:"HONEYCOMB_API_KEY"`
	// overrides the config file store driver when set
	StoreDriver string `envconfig:"STORE_DRIVER"`
}

// LoadSecrets reads TRAINLOG_* environment variables.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("trainlog", &s); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &s, nil
}
