// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package events

import (
	"context"
	"fmt"

	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/models"
)

// Sink receives notifications for realtime delivery.
type Sink interface {
	SendNotification(userID string, n *models.NotificationView)
}

// Forwarder relays notifications.created events to a Sink.
type Forwarder struct {
	bus  *Bus
	sink Sink
}

// NewForwarder creates a forwarder from bus to sink.
func NewForwarder(bus *Bus, sink Sink) *Forwarder {
	return &Forwarder{bus: bus, sink: sink}
}

// Serve subscribes and forwards until ctx is canceled. It implements
// suture.Service.
func (f *Forwarder) Serve(ctx context.Context) error {
	log := logging.WithComponent("forwarder")

	messages, err := f.bus.Subscribe(ctx, TopicNotificationCreated)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicNotificationCreated, err)
	}
	log.Info().Str("topic", TopicNotificationCreated).Msg("Notification forwarder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := decodeNotification(msg.Payload)
			if err != nil {
				// Poison message; redelivery would fail the same way.
				log.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed notification event")
				msg.Ack()
				continue
			}
			f.sink.SendNotification(event.RecipientID, event.Notification)
			msg.Ack()
		}
	}
}

func (f *Forwarder) String() string {
	return "notification-forwarder"
}
