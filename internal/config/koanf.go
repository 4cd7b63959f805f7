// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moviebooks/config.yaml",
	"/etc/moviebooks/config.yml",
}

// ConfigPathEnvVar names the environment variable that points at a config file.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         5000,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Environment:  EnvDevelopment,
		},
		API: APIConfig{
			PageSize:          10,
			NotificationLimit: 50,
			SearchLimit:       20,
			Compression:       true,
		},
		Database: DatabaseConfig{
			Backend:        DatabaseMongo,
			URI:            "mongodb://127.0.0.1:27017",
			Name:           "moviebooks",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   15 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTimeout:      30 * 24 * time.Hour,
			BcryptCost:        12,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Authz: AuthzConfig{
			ModelPath:    "",
			AdminUserIDs: []string{},
		},
		Media: MediaConfig{
			Backend:        MediaLocal,
			UploadsDir:     "uploads",
			PublicPath:     "/uploads",
			MaxUploadBytes: 5 << 20, // 5MB per image
			S3: S3Config{
				Bucket: "moviebooks",
				UseSSL: true,
			},
		},
		Outbox: OutboxConfig{
			Enabled:       true,
			Path:          "data/outbox",
			InMemory:      false,
			SyncWrites:    true,
			RetryInterval: 30 * time.Second,
			RetryBackoff:  5 * time.Second,
			MaxRetries:    50,
			EntryTTL:      72 * time.Hour,
		},
		Events: EventsConfig{
			Backend:        EventsMemory,
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			EmbeddedHost:   "127.0.0.1",
			EmbeddedPort:   4222,
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
			BufferSize:     256,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Connections: ConnectionsConfig{
			AllowContextOnly: false,
			MaxTags:          20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using koanf with the following precedence:
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Only mapped variables are loaded; anything else in the environment is ignored.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"authz.admin_user_ids",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"port":          "server.port",
	"http_port":     "server.port",
	"http_host":     "server.host",
	"read_timeout":  "server.read_timeout",
	"write_timeout": "server.write_timeout",
	"node_env":      "server.environment",
	"app_env":       "server.environment",
	"environment":   "server.environment",

	// API
	"page_size":          "api.page_size",
	"notification_limit": "api.notification_limit",
	"enable_compression": "api.compression",

	// Database
	"database_backend":       "database.backend",
	"mongo_uri":              "database.uri",
	"mongo_database":         "database.name",
	"mongo_connect_timeout":  "database.connect_timeout",
	"database_query_timeout": "database.query_timeout",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_timeout":         "security.token_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Authorization
	"casbin_model_path": "authz.model_path",
	"admin_user_ids":    "authz.admin_user_ids",

	// Media
	"media_backend":    "media.backend",
	"uploads_dir":      "media.uploads_dir",
	"max_upload_bytes": "media.max_upload_bytes",
	"s3_endpoint":      "media.s3.endpoint",
	"s3_access_key":    "media.s3.access_key",
	"s3_secret_key":    "media.s3.secret_key",
	"s3_bucket":        "media.s3.bucket",
	"s3_use_ssl":       "media.s3.use_ssl",
	"s3_public_url":    "media.s3.public_url",

	// Outbox
	"outbox_enabled":        "outbox.enabled",
	"outbox_path":           "outbox.path",
	"outbox_in_memory":      "outbox.in_memory",
	"outbox_retry_interval": "outbox.retry_interval",
	"outbox_max_retries":    "outbox.max_retries",
	"outbox_entry_ttl":      "outbox.entry_ttl",

	// Events
	"events_backend":     "events.backend",
	"nats_url":           "events.nats_url",
	"nats_embedded":      "events.embedded_server",
	"nats_embedded_port": "events.embedded_port",

	// Cache
	"cache_enabled": "cache.enabled",
	"cache_ttl":     "cache.ttl",

	// Connections
	"allow_context_only": "connections.allow_context_only",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MONGO_URI -> database.uri
//   - JWT_SECRET -> security.jwt_secret
//   - NODE_ENV -> server.environment
//   - PORT -> server.port
//
// Unmapped variables return "" and are skipped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
