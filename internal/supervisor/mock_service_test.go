// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled after failing its first fails starts.
type mockService struct {
	name   string
	fails  int32
	starts atomic.Int32
}

func newMockService(name string, fails int) *mockService {
	return &mockService{name: name, fails: int32(fails)}
}

func (m *mockService) Serve(ctx context.Context) error {
	if n := m.starts.Add(1); n <= m.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func (m *mockService) StartCount() int32 { return m.starts.Load() }
