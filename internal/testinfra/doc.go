// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package testinfra provides container helpers for integration tests.
//
// Everything here is compiled only with the integration build tag:
//
//	go test -tags integration ./internal/store/...
//
// # MongoDB Container
//
//	func TestStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	    store, err := mongostore.Connect(ctx, mongostore.Config{URI: mongo.URI, Database: "test"}, logger)
//	    // ...
//	}
//
// Tests skip instead of failing when no Docker daemon is reachable.
package testinfra
