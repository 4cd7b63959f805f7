// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tomtom215/moviebooks/internal/breaker"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

const objectPrefix = "moviebooks/"

// ObjectClient is the subset of *minio.Client the store uses.
type ObjectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// S3Store keeps images in an S3-compatible bucket.
type S3Store struct {
	client    ObjectClient
	bucket    string
	publicURL string
	breaker   *breaker.Breaker
}

var _ Store = (*S3Store)(nil)

// NewS3Store connects to cfg.Endpoint. The bucket must already exist.
func NewS3Store(cfg config.S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}
	return newS3Store(client, cfg), nil
}

func newS3Store(client ObjectClient, cfg config.S3Config) *S3Store {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		breaker:   breaker.New("s3", breaker.Settings{}),
	}
}

func (s *S3Store) Backend() string { return config.MediaS3 }

// Check verifies the bucket is reachable.
func (s *S3Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *S3Store) Save(ctx context.Context, up *Upload) (*Asset, error) {
	key := objectPrefix + objectName(up.Filename, up.ContentType)

	err := s.breaker.Do(func() error {
		_, err := s.client.PutObject(ctx, s.bucket, key, up.Body, up.Size, minio.PutObjectOptions{
			ContentType: up.ContentType,
		})
		return err
	})
	if err != nil {
		metrics.RecordMediaOperation(config.MediaS3, "save", "error")
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	metrics.RecordMediaOperation(config.MediaS3, "save", "success")
	return &Asset{URL: s.publicURL + "/" + key, PublicID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if !strings.HasPrefix(publicID, objectPrefix) || strings.Contains(publicID, "..") {
		return ErrBadID
	}
	err := s.breaker.Do(func() error {
		return s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{})
	})
	if err != nil {
		metrics.RecordMediaOperation(config.MediaS3, "delete", "error")
		logging.Ctx(ctx).Warn().Err(err).Str("object", publicID).Msg("S3 delete failed")
		return fmt.Errorf("remove object %s: %w", publicID, err)
	}
	metrics.RecordMediaOperation(config.MediaS3, "delete", "success")
	return nil
}
