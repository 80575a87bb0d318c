// Package config loads server settings from the environment, an optional
// .env file and an optional thermolab.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	// CatalogOnly serves experiment constants from the embedded catalog
	// and disables every route that needs Postgres.
	CatalogOnly bool
}

type ServerConfig struct {
	Addr            string
	TLSCert         string
	TLSKey          string
	ShutdownTimeout time.Duration
	AllowedOrigin   string
}

// TLS reports whether both certificate files are configured.
func (s ServerConfig) TLS() bool { return s.TLSCert != "" && s.TLSKey != "" }

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

type AuthConfig struct {
	TokenKey    string
	TokenExpiry time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env if present, then the environment. Environment values win
// over the config file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("thermolab")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/thermolab")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read thermolab.yaml: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server_addr"),
			TLSCert:         v.GetString("tls_cert"),
			TLSKey:          v.GetString("tls_key"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
			AllowedOrigin:   v.GetString("allowed_origin"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("database_url"),
			MaxOpenConns: v.GetInt("db_max_open_conns"),
			MaxIdleConns: v.GetInt("db_max_idle_conns"),
			ConnLifetime: v.GetDuration("db_conn_lifetime"),
		},
		Auth: AuthConfig{
			TokenKey:    v.GetString("token_key"),
			TokenExpiry: v.GetDuration("token_expiry"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("rate_limit_rps"),
			Burst:             v.GetInt("rate_limit_burst"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		CatalogOnly: v.GetBool("catalog_only"),
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("allowed_origin", "*")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 25)
	v.SetDefault("db_conn_lifetime", 5*time.Minute)
	v.SetDefault("token_expiry", 12*time.Hour)
	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("catalog_only", false)
}

func validate(cfg *Config) error {
	if (cfg.Server.TLSCert == "") != (cfg.Server.TLSKey == "") {
		return errors.New("config: TLS_CERT and TLS_KEY must be set together")
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		return errors.New("config: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.CatalogOnly {
		return nil
	}
	if cfg.Database.URL == "" {
		return errors.New("config: DATABASE_URL is required unless CATALOG_ONLY is set")
	}
	if cfg.Auth.TokenKey == "" {
		return errors.New("config: TOKEN_KEY is required unless CATALOG_ONLY is set")
	}
	return nil
}
