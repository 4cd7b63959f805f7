// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

/*
Package supervisor runs the long-lived MovieBooks services under a suture v4
supervisor tree.

The tree has three layers so that a crash in one does not take down the
others:

	RootSupervisor ("moviebooks")
	├── DataSupervisor ("data-layer")
	│   ├── OutboxRetryLoopService
	│   └── cache sweepers (movie and book detail caches)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket.Hub
	│   └── events.Forwarder
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog on the slog bridge from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

See the services subpackage for the adapters that turn Start/Stop and
ListenAndServe components into suture.Service values.
*/
package supervisor
