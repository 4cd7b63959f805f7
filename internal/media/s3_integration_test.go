// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

//go:build integration

package media

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/testinfra"
)

func TestS3Store_AgainstMinio(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	container, err := testinfra.NewMinioContainer(ctx, "moviebooks")
	if err != nil {
		t.Fatal(err)
	}
	defer testinfra.CleanupContainer(t, ctx, container.Container)

	store, err := NewS3Store(config.S3Config{
		Endpoint:  container.Endpoint,
		AccessKey: testinfra.MinioAccessKey,
		SecretKey: testinfra.MinioSecretKey,
		Bucket:    container.Bucket,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}

	body := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	asset, err := store.Save(ctx, &Upload{
		Filename:    "poster.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(asset.URL, "http://"+container.Endpoint+"/moviebooks/") {
		t.Errorf("url = %q", asset.URL)
	}

	client, err := minio.New(container.Endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(testinfra.MinioAccessKey, testinfra.MinioSecretKey, ""),
	})
	if err != nil {
		t.Fatal(err)
	}
	stat, err := client.StatObject(ctx, container.Bucket, asset.PublicID, minio.StatObjectOptions{})
	if err != nil {
		t.Fatalf("object missing: %v", err)
	}
	if stat.ContentType != "image/png" {
		t.Errorf("content type = %q", stat.ContentType)
	}

	if err := store.Delete(ctx, asset.PublicID); err != nil {
		t.Fatal(err)
	}
	if _, err := client.StatObject(ctx, container.Bucket, asset.PublicID, minio.StatObjectOptions{}); err == nil {
		t.Error("object still present after delete")
	}
}
