// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package main is the entry point for the MovieBooks server.

MovieBooks is a social catalog of connections between movies and the books
they reference, adapt, or feature. Users post connections with screenshots,
like, favorite, and comment on them, follow each other, and receive
notifications over REST and a WebSocket stream.

# Application Architecture

	RootSupervisor ("moviebooks")
	├── DataSupervisor ("data-layer")
	│   ├── Outbox retry loop (BadgerDB side-effect log)
	│   └── Movie and book detail cache sweepers
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── Notification forwarder (watermill: gochannel or NATS)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file, and environment
 2. Logging: zerolog with JSON/console output modes
 3. Document store: MongoDB, or the in-memory store for development
 4. Media store: local uploads directory or S3-compatible bucket
 5. Authorization: casbin enforcer with owner/admin policies
 6. Outbox: BadgerDB log of pending side effects
 7. Event bus: watermill over gochannel, external NATS, or embedded NATS
 8. Domain service, WebSocket hub, and HTTP router
 9. Supervisor tree

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	PORT=5000                     # HTTP port
	NODE_ENV=production           # development exposes error stacks
	LOG_LEVEL=info                # trace, debug, info, warn, error
	LOG_FORMAT=json               # json or console

	DATABASE_BACKEND=mongo        # mongo or memory
	MONGO_URI=mongodb://localhost:27017
	MONGO_DATABASE=moviebooks

	JWT_SECRET=<32+ chars>
	JWT_TIMEOUT=720h

	MEDIA_BACKEND=local           # local or s3
	UPLOADS_DIR=./uploads

	EVENTS_BACKEND=memory         # memory or nats
	NATS_EMBEDDED=false

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the hub closes client sockets, the retry loop finishes its pass,
and the event bus, outbox, and document store are closed in that order.
*/
package main
