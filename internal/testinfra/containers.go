// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

//go:build integration

package testinfra

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// terminateTimeout bounds container teardown so a stuck daemon cannot hang
// the test binary.
const terminateTimeout = 30 * time.Second

// SkipIfNoDocker skips the test in -short mode or when the testcontainers
// provider cannot reach a Docker daemon.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// CleanupContainer terminates container. When the test failed, the
// container's log is attached to the test output first. Errors are logged,
// not failed.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminateTimeout)
	defer cancel()

	if t.Failed() {
		dumpLogs(t, ctx, container)
	}
	if err := container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}

func dumpLogs(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	rc, err := container.Logs(ctx)
	if err != nil {
		t.Logf("container logs unavailable: %v", err)
		return
	}
	defer rc.Close()

	out, err := io.ReadAll(io.LimitReader(rc, 64<<10))
	if err != nil {
		t.Logf("read container logs: %v", err)
	}
	t.Logf("container logs:\n%s", out)
}
