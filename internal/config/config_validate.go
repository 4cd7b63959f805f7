// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is enforced outside development.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateMedia(); err != nil {
		return err
	}

	if err := c.validateOutbox(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Server.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("NODE_ENV must be one of development, staging, production, got %q", c.Server.Environment)
	}

	if c.API.PageSize < 1 {
		return fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Backend {
	case DatabaseMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("MONGO_URI is required when DATABASE_BACKEND=mongo")
		}
		if !strings.HasPrefix(c.Database.URI, "mongodb://") && !strings.HasPrefix(c.Database.URI, "mongodb+srv://") {
			return fmt.Errorf("MONGO_URI must start with mongodb:// or mongodb+srv://")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("MONGO_DATABASE must not be empty")
		}
	case DatabaseMemory:
	default:
		return fmt.Errorf("DATABASE_BACKEND must be mongo or memory, got %q", c.Database.Backend)
	}
	return nil
}

// validateSecurity requires a strong JWT secret unless running in development,
// where an empty secret is replaced by a generated one at startup.
func (c *Config) validateSecurity() error {
	if !c.Server.IsDevelopment() && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s", minJWTSecretLength, c.Server.Environment)
	}

	if c.Security.TokenTimeout <= 0 {
		return fmt.Errorf("JWT_TIMEOUT must be positive")
	}

	if c.Security.BcryptCost != 0 && (c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31) {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost)
	}

	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	switch c.Media.Backend {
	case MediaLocal:
		if c.Media.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is required when MEDIA_BACKEND=local")
		}
	case MediaS3:
		if c.Media.S3.Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required when MEDIA_BACKEND=s3")
		}
		if c.Media.S3.AccessKey == "" || c.Media.S3.SecretKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when MEDIA_BACKEND=s3")
		}
		if c.Media.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be local or s3, got %q", c.Media.Backend)
	}
	return nil
}

func (c *Config) validateOutbox() error {
	if !c.Outbox.Enabled {
		return nil
	}
	if !c.Outbox.InMemory && c.Outbox.Path == "" {
		return fmt.Errorf("OUTBOX_PATH is required when the outbox is enabled")
	}
	if c.Outbox.RetryInterval <= 0 {
		return fmt.Errorf("OUTBOX_RETRY_INTERVAL must be positive")
	}
	if c.Outbox.MaxRetries < 1 {
		return fmt.Errorf("OUTBOX_MAX_RETRIES must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case EventsMemory:
	case EventsNATS:
		if !c.Events.EmbeddedServer && c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats without an embedded server")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be memory or nats, got %q", c.Events.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console", "":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
