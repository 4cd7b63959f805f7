// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/tomtom215/moviebooks/internal/config"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("screenshot", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["screenshot"][0]
}

func TestFromFileHeader(t *testing.T) {
	t.Parallel()

	up, closeFn, err := FromFileHeader(fileHeader(t, "shot.png", pngHeader), 1024)
	if err != nil {
		t.Fatalf("png rejected: %v", err)
	}
	defer func() { _ = closeFn() }()
	if up.ContentType != "image/png" {
		t.Errorf("content type = %s", up.ContentType)
	}
	body, _ := io.ReadAll(up.Body)
	if !bytes.Equal(body, pngHeader) {
		t.Error("sniffed bytes were not replayed")
	}

	if _, _, err := FromFileHeader(fileHeader(t, "evil.png", []byte("#!/bin/sh\necho hi")), 1024); !errors.Is(err, ErrNotImage) {
		t.Errorf("text upload err = %v, want ErrNotImage", err)
	}
	if _, _, err := FromFileHeader(fileHeader(t, "big.png", pngHeader), 4); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized err = %v, want ErrTooLarge", err)
	}
}

func TestObjectName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filename, contentType, wantExt string
	}{
		{"poster.JPG", "image/jpeg", ".jpg"},
		{"cover.png", "image/png", ".png"},
		{"../../etc/passwd", "image/gif", ".gif"},
		{"noext", "image/webp", ".webp"},
		{"x.exe", "image/unknown", ""},
	}
	for _, tt := range tests {
		got := objectName(tt.filename, tt.contentType)
		if filepath.Ext(got) != tt.wantExt || strings.ContainsAny(got, "/\\") {
			t.Errorf("objectName(%q) = %q", tt.filename, got)
		}
	}
}

func TestLocalStore(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	asset, err := s.Save(ctx, &Upload{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(asset.URL, "/uploads/") || !strings.HasSuffix(asset.URL, asset.PublicID) {
		t.Errorf("asset = %+v", asset)
	}
	data, err := os.ReadFile(filepath.Join(dir, asset.PublicID))
	if err != nil || !bytes.Equal(data, pngHeader) {
		t.Fatalf("stored file = %q, %v", data, err)
	}

	if err := s.Delete(ctx, asset.PublicID); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, asset.PublicID); err != nil {
		t.Errorf("second delete: %v", err)
	}
	for _, bad := range []string{"", "../secret", "a/b.png", ".hidden"} {
		if err := s.Delete(ctx, bad); !errors.Is(err, ErrBadID) {
			t.Errorf("Delete(%q) err = %v", bad, err)
		}
	}
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeObjects) PutObject(_ context.Context, _, name string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = data
	return minio.UploadInfo{Key: name}, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, _, name string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	return nil
}

func (f *fakeObjects) BucketExists(context.Context, string) (bool, error) {
	return true, nil
}

func TestS3Store(t *testing.T) {
	t.Parallel()
	fake := &fakeObjects{objects: map[string][]byte{}}
	s := newS3Store(fake, config.S3Config{Endpoint: "s3.local:9000", Bucket: "media", UseSSL: true})
	ctx := context.Background()

	if err := s.Check(ctx); err != nil {
		t.Fatal(err)
	}
	asset, err := s.Save(ctx, &Upload{Filename: "c.png", ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(asset.URL, "https://s3.local:9000/media/moviebooks/") {
		t.Errorf("url = %s", asset.URL)
	}
	if _, ok := fake.objects[asset.PublicID]; !ok {
		t.Fatal("object not written")
	}

	if err := s.Delete(ctx, asset.PublicID); err != nil {
		t.Fatal(err)
	}
	if len(fake.objects) != 0 {
		t.Error("object not removed")
	}
	if err := s.Delete(ctx, "other/x.png"); !errors.Is(err, ErrBadID) {
		t.Errorf("foreign key err = %v", err)
	}

	fake.putErr = errors.New("unavailable")
	if _, err := s.Save(ctx, &Upload{Filename: "d.png", ContentType: "image/png", Body: bytes.NewReader(pngHeader)}); err == nil {
		t.Error("expected put error")
	}
}

func TestNew_Backends(t *testing.T) {
	t.Parallel()
	s, err := New(config.MediaConfig{Backend: config.MediaLocal, UploadsDir: t.TempDir()})
	if err != nil || s.Backend() != config.MediaLocal {
		t.Errorf("local: %v, %v", s, err)
	}
	if _, err := New(config.MediaConfig{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
