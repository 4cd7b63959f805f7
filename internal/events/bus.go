// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/moviebooks/internal/breaker"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
	"github.com/tomtom215/moviebooks/internal/models"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Publisher publishes domain events. Services depend on this rather than on Bus.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.NotificationView) error
}

// Bus owns a watermill publisher/subscriber pair.
type Bus struct {
	backend    string
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *breaker.Breaker
	embedded   *EmbeddedServer
	logger     watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*Bus)(nil)

// New builds the bus for cfg.Backend.
func New(cfg config.EventsConfig) (*Bus, error) {
	logger := logging.NewWatermillAdapter()

	b := &Bus{
		backend: cfg.Backend,
		breaker: breaker.New("events", breaker.Settings{}),
		logger:  logger,
	}

	switch cfg.Backend {
	case "", config.EventsMemory:
		b.backend = config.EventsMemory
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, logger)
		b.publisher = ch
		b.subscriber = ch

	case config.EventsNATS:
		url := cfg.NATSURL
		if cfg.EmbeddedServer {
			srv, err := NewEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort)
			if err != nil {
				return nil, err
			}
			b.embedded = srv
			url = srv.ClientURL()
		}
		if err := b.connectNATS(url, cfg); err != nil {
			b.shutdownEmbedded()
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}

	logging.Info().Str("backend", b.backend).Msg("Event bus ready")
	return b, nil
}

func (b *Bus) connectNATS(url string, cfg config.EventsConfig) error {
	natsOpts := []natsgo.Option{
		natsgo.Name("moviebooks"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				b.logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			b.logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, b.logger)
	if err != nil {
		return fmt.Errorf("create NATS publisher: %w", err)
	}

	// No queue group: every instance receives every event and forwards it
	// to the sockets it holds.
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		CloseTimeout:     5 * time.Second,
		AckWaitTimeout:   10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, b.logger)
	if err != nil {
		_ = pub.Close()
		return fmt.Errorf("create NATS subscriber: %w", err)
	}

	b.publisher = pub
	b.subscriber = sub
	return nil
}

// Backend returns "memory" or "nats".
func (b *Bus) Backend() string {
	return b.backend
}

// Publish sends payload as JSON on topic through the circuit breaker.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := encode(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if rid := logging.RequestIDFromContext(ctx); rid != "" {
		msg.Metadata.Set("request_id", rid)
	}

	err = b.breaker.Do(func() error {
		return b.publisher.Publish(topic, msg)
	})
	metrics.RecordPublish(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishNotification announces a stored notification.
func (b *Bus) PublishNotification(ctx context.Context, n *models.NotificationView) error {
	return b.Publish(ctx, TopicNotificationCreated, NewNotificationCreated(n))
}

// Subscribe returns the message channel for topic. Every message must be
// acked or nacked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts down the publisher, subscriber, and the embedded server if any.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	// gochannel uses one value for both sides
	if b.backend != config.EventsMemory {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	b.shutdownEmbedded()
	return errors.Join(errs...)
}

func (b *Bus) shutdownEmbedded() {
	if b.embedded == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.embedded.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Embedded NATS shutdown incomplete")
	}
}
