package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names an optional YAML file layered between defaults and the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config captures all runtime configuration. Keys are the lower-cased
// environment variable names.
type Config struct {
	Port              string        `koanf:"port"`
	DBURL             string        `koanf:"db_url"`
	DBMigrate         bool          `koanf:"db_migrate"`
	OMDBURL           string        `koanf:"omdb_url"`
	OMDBAPIKey        string        `koanf:"omdb_api_key"`
	OMDBTimeout       time.Duration `koanf:"omdb_timeout"`
	ReadTimeout       time.Duration `koanf:"server_read_timeout"`
	WriteTimeout      time.Duration `koanf:"server_write_timeout"`
	IdleTimeout       time.Duration `koanf:"server_idle_timeout"`
	DBMaxConns        int           `koanf:"db_max_conns"`
	DBMinConns        int           `koanf:"db_min_conns"`
	DBMaxConnIdle     time.Duration `koanf:"db_max_conn_idle"`
	DBMaxConnLifetime time.Duration `koanf:"db_max_conn_lifetime"`
	DBConnTimeout     time.Duration `koanf:"db_conn_timeout"`
	DBStatementCache  int           `koanf:"db_statement_cache_capacity"`
	LogLevel          string        `koanf:"log_level"`
	LogFormat         string        `koanf:"log_format"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	StatsInterval     time.Duration `koanf:"stats_interval"`
}

func defaultConfig() Config {
	return Config{
		Port:              "8080",
		DBMigrate:         true,
		OMDBURL:           "https://www.omdbapi.com",
		OMDBTimeout:       5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		DBMaxConns:        20,
		DBMinConns:        2,
		DBMaxConnIdle:     5 * time.Minute,
		DBMaxConnLifetime: time.Hour,
		DBConnTimeout:     10 * time.Second,
		DBStatementCache:  256,
		LogLevel:          "info",
		LogFormat:         "json",
		CORSOrigins:       []string{"*"},
		RateLimitRequests: 120,
		RateLimitWindow:   time.Minute,
		StatsInterval:     15 * time.Second,
	}
}

// Load layers defaults, an optional YAML file and environment variables, then validates.
// A .env file in the working directory is loaded into the environment first.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envTransform maps PORT to port and splits list values on commas.
// Empty values are dropped so they do not clobber defaults.
func envTransform(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	key = strings.ToLower(key)
	if key == "cors_origins" {
		parts := strings.Split(value, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return key, origins
	}
	return key, value
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.OMDBTimeout <= 0 {
		return fmt.Errorf("OMDB_TIMEOUT must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be non-negative")
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL must be positive")
	}
	return nil
}

// ValidateMetadata checks the OMDb settings. Only processes that look movies
// up need them.
func (c Config) ValidateMetadata() error {
	if c.OMDBURL == "" {
		return fmt.Errorf("OMDB_URL is required")
	}
	if c.OMDBAPIKey == "" {
		return fmt.Errorf("OMDB_API_KEY is required")
	}
	return nil
}
