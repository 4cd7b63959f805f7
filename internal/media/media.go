// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package media stores uploaded images (posters, covers, screenshots and
// profile pictures).
//
// The local backend writes files under a directory served at /uploads. The
// s3 backend writes objects to an S3-compatible bucket through minio-go and
// returns absolute URLs. Either way the caller keeps two values per asset:
// the URL clients load and the PublicID used to delete it later.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/moviebooks/internal/config"
)

var (
	ErrNotImage = errors.New("only image uploads are allowed")
	ErrTooLarge = errors.New("upload exceeds the maximum size")
	ErrBadID    = errors.New("invalid asset id")
)

// Upload is an image ready to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Asset is a stored image.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Store saves and deletes images.
type Store interface {
	Save(ctx context.Context, up *Upload) (*Asset, error)
	// Delete removes the asset. Deleting a missing asset is not an error.
	Delete(ctx context.Context, publicID string) error
	Backend() string
}

// New returns the store selected by cfg.Backend.
func New(cfg config.MediaConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.MediaLocal:
		return NewLocalStore(cfg.UploadsDir, cfg.PublicPath)
	case config.MediaS3:
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

// FromFileHeader opens a multipart file and checks that it is an image no
// larger than maxBytes. The content type is sniffed from the data, not
// taken from the client.
func FromFileHeader(fh *multipart.FileHeader, maxBytes int64) (*Upload, func() error, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, nil, ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		_ = f.Close()
		return nil, nil, ErrNotImage
	}

	return &Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        io.MultiReader(bytes.NewReader(head), f),
	}, f.Close, nil
}

// objectName returns a fresh collision-free name keeping a sanitized extension.
func objectName(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
	default:
		ext = extensionFor(contentType)
	}
	return uuid.New().String() + ext
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	return ""
}
