// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package services adapts MovieBooks components to suture.Service.

Components that already have a context-aware Serve method (websocket.Hub,
events.Forwarder, cache.Cache) are added to the tree directly. The wrappers
here cover the two other lifecycle shapes:

	HTTPServerService        ListenAndServe/Shutdown  (*http.Server)
	OutboxRetryLoopService   Start/Stop               (*outbox.RetryLoop)

Each wrapper returns ctx.Err() on a requested shutdown and a wrapped error
when the component fails, so suture restarts only real failures.
*/
package services
