// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	API         APIConfig         `koanf:"api"`
	Database    DatabaseConfig    `koanf:"database"`
	Security    SecurityConfig    `koanf:"security"`
	Authz       AuthzConfig       `koanf:"authz"`
	Media       MediaConfig       `koanf:"media"`
	Outbox      OutboxConfig      `koanf:"outbox"`
	Events      EventsConfig      `koanf:"events"`
	Cache       CacheConfig       `koanf:"cache"`
	Connections ConnectionsConfig `koanf:"connections"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	Environment  string        `koanf:"environment"` // "development", "staging", "production"
}

// IsDevelopment reports whether error stacks may be exposed to clients.
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == EnvDevelopment
}

// APIConfig holds API pagination and response settings
type APIConfig struct {
	PageSize          int  `koanf:"page_size"`
	NotificationLimit int  `koanf:"notification_limit"`
	SearchLimit       int  `koanf:"search_limit"`
	Compression       bool `koanf:"compression"`
}

// DatabaseConfig holds document store settings
type DatabaseConfig struct {
	Backend        string        `koanf:"backend"` // "mongo" or "memory"
	URI            string        `koanf:"uri"`
	Name           string        `koanf:"name"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`
}

// SecurityConfig holds authentication settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTimeout      time.Duration `koanf:"token_timeout"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AuthzConfig holds casbin settings
type AuthzConfig struct {
	ModelPath    string   `koanf:"model_path"`
	AdminUserIDs []string `koanf:"admin_user_ids"`
}

// MediaConfig holds image store settings
type MediaConfig struct {
	Backend        string   `koanf:"backend"` // "local" or "s3"
	UploadsDir     string   `koanf:"uploads_dir"`
	PublicPath     string   `koanf:"public_path"`
	MaxUploadBytes int64    `koanf:"max_upload_bytes"`
	S3             S3Config `koanf:"s3"`
}

// S3Config holds S3-compatible object store settings
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
	PublicURL string `koanf:"public_url"` // Base URL for object links; defaults to the endpoint
}

// OutboxConfig holds the durable side-effect log settings
type OutboxConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Path          string        `koanf:"path"`
	InMemory      bool          `koanf:"in_memory"`
	SyncWrites    bool          `koanf:"sync_writes"`
	RetryInterval time.Duration `koanf:"retry_interval"`
	RetryBackoff  time.Duration `koanf:"retry_backoff"`
	MaxRetries    int           `koanf:"max_retries"`
	EntryTTL      time.Duration `koanf:"entry_ttl"`
}

// EventsConfig holds event bus settings
type EventsConfig struct {
	Backend        string        `koanf:"backend"` // "memory" or "nats"
	NATSURL        string        `koanf:"nats_url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	EmbeddedHost   string        `koanf:"embedded_host"`
	EmbeddedPort   int           `koanf:"embedded_port"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	BufferSize     int64         `koanf:"buffer_size"`
}

// CacheConfig holds read cache settings
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// ConnectionsConfig holds connection creation rules
type ConnectionsConfig struct {
	// AllowContextOnly relaxes the both-titles rule to "movie title, book
	// title, or context".
	AllowContextOnly bool `koanf:"allow_context_only"`
	MaxTags          int  `koanf:"max_tags"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// Environment names
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Backend names
const (
	DatabaseMongo  = "mongo"
	DatabaseMemory = "memory"
	MediaLocal     = "local"
	MediaS3        = "s3"
	EventsMemory   = "memory"
	EventsNATS     = "nats"
)

// Load reads configuration from defaults, an optional config file, and
// environment variables, in that order of precedence (later wins).
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
