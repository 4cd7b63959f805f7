// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package websocket delivers notifications to connected users in real time.

The Hub is a single goroutine that owns the map of connected clients, keyed
by user ID. A user may hold several connections (tabs, devices); every one
of them receives the user's messages. Clients never receive other users'
messages.

Each Client runs two goroutines:
  - readPump: reads client frames, answers "ping" with "pong", enforces the
    inbound rate limit and read deadline
  - writePump: writes queued messages and keepalive pings

Messages are JSON objects:

	{"type": "notification", "data": {...}, "timestamp": "2026-01-02T15:04:05Z"}

Delivery is best effort. A client whose send buffer is full is dropped; the
notification itself is already stored and shows up on the next list call.
*/
package websocket
