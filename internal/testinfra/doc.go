// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package testinfra starts throwaway MongoDB and MinIO containers for
// integration tests through testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// Tests skip when Docker is unavailable:
//
//	func TestFeedAgainstMongo(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	    store, err := database.NewMongoStore(ctx, &config.DatabaseConfig{URI: mongo.URI, Name: "moviebooks_test"})
//	    // ...
//	}
//
// The first run pulls the images; later runs use the local cache.
package testinfra
