// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
)

// LocalStore keeps images in a directory on disk.
type LocalStore struct {
	dir        string
	publicPath string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates dir if needed. publicPath is the URL prefix the
// directory is served under.
func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("uploads directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	logging.Info().Str("dir", dir).Str("public_path", publicPath).Msg("Local media store ready")
	return &LocalStore{dir: dir, publicPath: strings.TrimRight(publicPath, "/")}, nil
}

func (s *LocalStore) Backend() string { return config.MediaLocal }

// Dir returns the directory served under the public path.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(_ context.Context, up *Upload) (*Asset, error) {
	name := objectName(up.Filename, up.ContentType)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		metrics.RecordMediaOperation(config.MediaLocal, "save", "error")
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		metrics.RecordMediaOperation(config.MediaLocal, "save", "error")
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		metrics.RecordMediaOperation(config.MediaLocal, "save", "error")
		return nil, fmt.Errorf("close %s: %w", name, err)
	}

	metrics.RecordMediaOperation(config.MediaLocal, "save", "success")
	return &Asset{URL: path.Join(s.publicPath, name), PublicID: name}, nil
}

func (s *LocalStore) Delete(_ context.Context, publicID string) error {
	if publicID == "" || publicID != filepath.Base(publicID) || strings.HasPrefix(publicID, ".") {
		return ErrBadID
	}
	err := os.Remove(filepath.Join(s.dir, publicID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.RecordMediaOperation(config.MediaLocal, "delete", "error")
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	metrics.RecordMediaOperation(config.MediaLocal, "delete", "success")
	return nil
}
