// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/social"
)

const (
	// maxJSONBody bounds JSON request bodies.
	maxJSONBody = 1 << 20
	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 8 << 20
	// maxFilesPerRequest is the most image parts a form may carry.
	maxFilesPerRequest = 3

	msgInvalidBody = "Invalid request body"
	msgTooLarge    = "Upload exceeds the maximum size"
)

func badRequest(msg string) error {
	return &social.Error{Kind: social.KindValidation, Message: msg}
}

// pathID parses an ObjectID URL parameter.
func pathID(r *http.Request, name string) (bson.ObjectID, error) {
	return social.ParseID(chi.URLParam(r, name))
}

// requireUser returns the authenticated caller. Routes using it sit behind
// auth.Middleware.Authenticate, so a miss means the router is misconfigured.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondStatus(w, r, http.StatusUnauthorized, auth.MsgNoToken)
		return bson.ObjectID{}, false
	}
	return id, true
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest(msgTooLarge)
		}
		return badRequest(msgInvalidBody)
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// formFiles parses a multipart request and hands out its image parts.
// Close releases every opened part and the temporary files.
type formFiles struct {
	r        *http.Request
	maxBytes int64
	closers  []func() error
}

// parseMultipart bounds and parses the form of r.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (*formFiles, error) {
	maxBytes := h.config.Media.MaxUploadBytes
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxFilesPerRequest*maxBytes+maxJSONBody)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badRequest(msgTooLarge)
		}
		return nil, badRequest(msgInvalidBody)
	}

	files := 0
	for _, parts := range r.MultipartForm.File {
		files += len(parts)
	}
	if files > maxFilesPerRequest {
		_ = r.MultipartForm.RemoveAll()
		return nil, badRequest(fmt.Sprintf("At most %d files may be uploaded", maxFilesPerRequest))
	}
	return &formFiles{r: r, maxBytes: maxBytes}, nil
}

// upload returns the image sent as field, or nil when none was sent.
func (f *formFiles) upload(field string) (*media.Upload, error) {
	parts := f.r.MultipartForm.File[field]
	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, badRequest("Only one file is allowed for " + field)
	}

	up, closeFn, err := media.FromFileHeader(parts[0], f.maxBytes)
	switch {
	case errors.Is(err, media.ErrNotImage):
		return nil, badRequest("Only image files are allowed for " + field)
	case errors.Is(err, media.ErrTooLarge):
		return nil, badRequest(msgTooLarge)
	case err != nil:
		return nil, err
	}
	f.closers = append(f.closers, closeFn)
	return up, nil
}

// value returns a form field, or nil when the field is absent.
func (f *formFiles) value(key string) *string {
	vals, ok := f.r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func (f *formFiles) Close() {
	for _, c := range f.closers {
		_ = c()
	}
	if err := f.r.MultipartForm.RemoveAll(); err != nil {
		logging.Ctx(f.r.Context()).Warn().Err(err).Msg("Failed to remove multipart temp files")
	}
}
