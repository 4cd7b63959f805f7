// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// @title MovieBooks API
// @version 1.0
// @description Social cataloging of connections between movies and books.
// @description
// @description ## Authentication
// @description
// @description Register or log in to receive a JWT. Send it as `Authorization: Bearer <token>`
// @description or rely on the `token` cookie set by the auth endpoints.
// @description The notification WebSocket also accepts `?token=`.
// @description
// @description ## Error Responses
// @description
// @description Errors use a single envelope:
// @description ```json
// @description { "message": "Connection not found" }
// @description ```
// @description In development a `stack` field carries the request ID and error chain.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/moviebooks/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:5000
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT as "Bearer <token>". Obtain via /api/auth/login.
//
// @tag.name Auth
// @tag.description Registration, login, and the current session
//
// @tag.name Users
// @tag.description Profiles, account management, and favorites
//
// @tag.name Connections
// @tag.description Movie and book connections, the feed, likes, and favorites
//
// @tag.name Comments
// @tag.description Comments on connections
//
// @tag.name Follows
// @tag.description The follow graph
//
// @tag.name Notifications
// @tag.description Notification inbox and realtime stream
//
// @tag.name Titles
// @tag.description Movie and book catalog
//
// @tag.name Core
// @tag.description Health checks
package main
