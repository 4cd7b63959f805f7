// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

// Package events carries domain events over a watermill bus.
//
// Two backends are supported: an in-process gochannel (single instance,
// default) and core NATS (multi-instance), optionally served by an embedded
// nats-server. Delivery is best effort; the durable path for side effects is
// the outbox, and events only drive realtime fan-out.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/moviebooks/internal/models"
)

// TopicNotificationCreated is published after a notification is stored.
const TopicNotificationCreated = "notifications.created"

// NotificationCreated is the payload of TopicNotificationCreated.
type NotificationCreated struct {
	EventID      string                   `json:"event_id"`
	RecipientID  string                   `json:"recipient_id"`
	Notification *models.NotificationView `json:"notification"`
	OccurredAt   time.Time                `json:"occurred_at"`
}

// NewNotificationCreated builds the event for a stored notification view.
func NewNotificationCreated(n *models.NotificationView) *NotificationCreated {
	return &NotificationCreated{
		EventID:      uuid.New().String(),
		RecipientID:  n.Recipient.Hex(),
		Notification: n,
		OccurredAt:   time.Now().UTC(),
	}
}

// Validate checks the fields the forwarder relies on.
func (e *NotificationCreated) Validate() error {
	if e.RecipientID == "" {
		return fmt.Errorf("notification event %s: missing recipient", e.EventID)
	}
	if e.Notification == nil {
		return fmt.Errorf("notification event %s: missing notification", e.EventID)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

func decodeNotification(data []byte) (*NotificationCreated, error) {
	var e NotificationCreated
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal notification event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
