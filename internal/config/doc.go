// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package config provides centralized configuration management for MovieBooks.

Configuration is layered with koanf:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/moviebooks/config.yaml)
 3. Environment variables, through an explicit name mapping

# Environment Variables

The historical variable names are preserved:

  - MONGO_URI, MONGO_DATABASE: document store connection
  - JWT_SECRET, JWT_TIMEOUT: token signing
  - PORT: HTTP listen port
  - NODE_ENV (or APP_ENV): development, staging, production

Image storage uses MEDIA_BACKEND=local|s3 with the S3_* variables for an
S3-compatible bucket. See envMappings in koanf.go for the full list.

# Validation

Load always calls Config.Validate. Outside development a JWT secret of at
least 32 characters is mandatory.
*/
package config
