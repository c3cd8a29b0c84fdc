// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads application configuration in three layers (highest
// precedence last):
//
//  1. an optional .env file in the working directory,
//  2. an optional YAML file (config.yaml by default),
//  3. environment variables prefixed BLOCKPRESS_, where "__" separates
//     sections (BLOCKPRESS_HTTP__PORT maps to http.port).
//
// Defaults are applied before the layers are merged and the result is
// validated with go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "BLOCKPRESS_"

// Config holds all application configuration values.
type Config struct {
	App      AppConfig      `koanf:"app"`
	HTTP     HTTPConfig     `koanf:"http"`
	Database DatabaseConfig `koanf:"database"`
	Valkey   ValkeyConfig   `koanf:"valkey"`
	Themes   ThemesConfig   `koanf:"themes"`
	Snapshot SnapshotConfig `koanf:"snapshot"`
	S3       S3Config       `koanf:"s3"`
	Debug    DebugConfig    `koanf:"debug"`
	Log      LogConfig      `koanf:"log"`

	// Platform is detected from the environment, never configured.
	Platform string `koanf:"-"`
}

type AppConfig struct {
	Env           string `koanf:"env" validate:"oneof=development production testing"`
	AdminEmail    string `koanf:"admin_email" validate:"omitempty,email"`
	AdminPassword string `koanf:"admin_password"`
}

type HTTPConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	SecureCookie bool          `koanf:"secure_cookie"`
}

type DatabaseConfig struct {
	Host         string `koanf:"host" validate:"required"`
	Port         int    `koanf:"port" validate:"min=1,max=65535"`
	User         string `koanf:"user" validate:"required"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name" validate:"required"`
	SSLMode      string `koanf:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"min=1"`
}

type ValkeyConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0,max=15"`
}

// ThemesConfig controls theme discovery.
type ThemesConfig struct {
	Dir      string        `koanf:"dir" validate:"required"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=0"`
	Fallback []string      `koanf:"fallback" validate:"min=1"`
	Watch    bool          `koanf:"watch"`
}

// SnapshotConfig controls the static JSON generator. An Interval of zero
// disables periodic regeneration.
type SnapshotConfig struct {
	OutputDir     string        `koanf:"output_dir" validate:"required"`
	Interval      time.Duration `koanf:"interval" validate:"min=0"`
	WebhookSecret string        `koanf:"webhook_secret"`
}

// S3Config configures the optional snapshot mirror. Storage is disabled
// when Endpoint or the credentials are empty.
type S3Config struct {
	Endpoint  string `koanf:"endpoint" validate:"omitempty,url"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket" validate:"required_with=Endpoint"`
	Prefix    string `koanf:"prefix"`
	PublicURL string `koanf:"public_url"`
}

type DebugConfig struct {
	Enabled bool `koanf:"enabled"`
}

type LogConfig struct {
	Dir     string `koanf:"dir"`
	Console bool   `koanf:"console"`
	Level   string `koanf:"level" validate:"oneof=debug info warn error"`
}

// defaults returns the configuration tree used before any layer is merged.
func defaults() map[string]any {
	return map[string]any{
		"app.env":                 "development",
		"http.host":               "0.0.0.0",
		"http.port":               8080,
		"http.read_timeout":       "15s",
		"http.write_timeout":      "30s",
		"database.host":           "localhost",
		"database.port":           5432,
		"database.user":           "blockpress",
		"database.password":       "changeme",
		"database.name":           "blockpress",
		"database.sslmode":        "disable",
		"database.max_open_conns": 25,
		"valkey.host":             "localhost",
		"valkey.port":             6379,
		"valkey.db":               0,
		"themes.dir":              "themes",
		"themes.cache_ttl":        "10s",
		"themes.fallback":         []string{"default"},
		"themes.watch":            false,
		"snapshot.output_dir":     "public/data",
		"snapshot.interval":       "0s",
		"s3.region":               "us-east-1",
		"log.console":             true,
		"log.level":               "info",
	}
}

// Load merges .env, the YAML file at path and BLOCKPRESS_ environment
// variables on top of the defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	k := koanf.New(".")
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Platform = DetectPlatform()
	// Railway and similar hosts inject PORT; it wins unless overridden explicitly.
	if p := os.Getenv("PORT"); p != "" && os.Getenv(EnvPrefix+"HTTP__PORT") == "" {
		if n, err := strconv.Atoi(p); err == nil {
			cfg.HTTP.Port = n
		}
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if cfg.IsProduction() {
		if cfg.Database.Password == "changeme" {
			return nil, fmt.Errorf("database.password must be set in production")
		}
		if cfg.Debug.Enabled {
			cfg.Debug.Enabled = false
		}
	}
	return &cfg, nil
}

// listKeys are the keys whose environment values are comma-separated lists.
var listKeys = map[string]bool{
	"themes.fallback": true,
}

// envKey maps BLOCKPRESS_THEMES__CACHE_TTL to themes.cache_ttl.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// envValue maps an environment variable to its config key and value.
// List keys are split on commas; blank items are dropped.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// DetectPlatform reports the hosting platform from well-known variables.
func DetectPlatform() string {
	switch {
	case os.Getenv("RAILWAY_ENVIRONMENT") != "":
		return "railway"
	case os.Getenv("VERCEL") != "":
		return "vercel"
	default:
		return "local"
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + c.Database.SSLMode,
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return net.JoinHostPort(c.Valkey.Host, strconv.Itoa(c.Valkey.Port))
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DebugEnabled reports whether the debug endpoints may be mounted.
func (c *Config) DebugEnabled() bool {
	return c.Debug.Enabled && !c.IsProduction()
}
