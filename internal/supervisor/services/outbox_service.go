// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package services

import (
	"context"
	"fmt"
)

// StartStopper is a background loop with an explicit lifecycle, such as
// *outbox.RetryLoop.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// OutboxRetryLoopService supervises the outbox retry loop that re-applies
// cascade cleanups and notifications left pending by failed requests.
type OutboxRetryLoopService struct {
	loop StartStopper
	name string
}

// NewOutboxRetryLoopService wraps loop.
func NewOutboxRetryLoopService(loop StartStopper) *OutboxRetryLoopService {
	return &OutboxRetryLoopService{
		loop: loop,
		name: "outbox-retry-loop",
	}
}

// Serve implements suture.Service. Stop blocks until the current pass ends.
func (s *OutboxRetryLoopService) Serve(ctx context.Context) error {
	if err := s.loop.Start(ctx); err != nil {
		return fmt.Errorf("outbox retry loop start failed: %w", err)
	}
	<-ctx.Done()
	s.loop.Stop()
	return ctx.Err()
}

func (s *OutboxRetryLoopService) String() string {
	return s.name
}
