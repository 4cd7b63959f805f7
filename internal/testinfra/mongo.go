// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMongoImage matches the server version the store is tested against.
	DefaultMongoImage = "mongo:7.0"

	mongoPort = "27017/tcp"
)

// MongoContainer is a running single-node MongoDB.
type MongoContainer struct {
	testcontainers.Container
	// URI is a mongodb:// connection string for the mapped port.
	URI string
}

// MongoOption configures the container.
type MongoOption func(*mongoConfig)

type mongoConfig struct {
	image        string
	startTimeout time.Duration
}

// WithMongoImage overrides DefaultMongoImage.
func WithMongoImage(image string) MongoOption {
	return func(c *mongoConfig) { c.image = image }
}

// WithMongoStartTimeout overrides the 60s startup timeout.
func WithMongoStartTimeout(d time.Duration) MongoOption {
	return func(c *mongoConfig) { c.startTimeout = d }
}

// NewMongoContainer starts MongoDB and waits until it accepts connections.
func NewMongoContainer(ctx context.Context, opts ...MongoOption) (*MongoContainer, error) {
	cfg := &mongoConfig{image: DefaultMongoImage, startTimeout: 60 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{mongoPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort(mongoPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mongo container: %w", err)
	}

	addr, err := endpoint(ctx, container, mongoPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	return &MongoContainer{Container: container, URI: "mongodb://" + addr}, nil
}
