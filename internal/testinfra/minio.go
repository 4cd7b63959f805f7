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

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMinioImage is the MinIO server image.
	DefaultMinioImage = "minio/minio:latest"

	// MinioAccessKey and MinioSecretKey are the root credentials.
	MinioAccessKey = "moviebooks"
	MinioSecretKey = "moviebooks-secret"

	minioPort = "9000/tcp"
)

// MinioContainer is a running MinIO server with one bucket created.
type MinioContainer struct {
	testcontainers.Container
	// Endpoint is host:port, as minio.New expects.
	Endpoint string
	Bucket   string
}

// NewMinioContainer starts MinIO and creates bucket.
func NewMinioContainer(ctx context.Context, bucket string) (*MinioContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMinioImage,
		ExposedPorts: []string{minioPort},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinioAccessKey,
			"MINIO_ROOT_PASSWORD": MinioSecretKey,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort(minioPort).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio container: %w", err)
	}

	addr, err := endpoint(ctx, container, minioPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	client, err := minio.New(addr, &minio.Options{
		Creds: credentials.NewStaticV4(MinioAccessKey, MinioSecretKey, ""),
	})
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	return &MinioContainer{Container: container, Endpoint: addr, Bucket: bucket}, nil
}
