// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package api provides the HTTP REST API for MovieBooks.

The router is built on chi with the go-chi ecosystem middleware (cors,
httprate) and the application's own middleware package for request IDs,
metrics, latency monitoring, compression, and per-request query deadlines.

Handler methods are split by resource:

  - handlers_auth.go: registration, login, current user
  - handlers_users.go: public profiles, profile edits, account deletion
  - handlers_connections.go: feed, connection CRUD, likes, favorites
  - handlers_comments.go: comment listing and lifecycle
  - handlers_follows.go: follow graph
  - handlers_notifications.go: notification inbox and websocket stream
  - handlers_titles.go: movie and book detail and search
  - handlers_health.go: health, liveness, readiness

Every handler delegates to social.Service and renders results with
respondJSON. Failures go through respondError, which maps social.Error kinds
onto HTTP status codes and renders the {message, stack} envelope. The stack
is included only when the server runs in development.

Swagger documentation is generated from the annotations on each handler
with swag and served at /swagger/.
*/
package api
