// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

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
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/metrics"
)

// ErrPublisherClosed is returned by publishOnce after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// NATSPublisher publishes events through a Watermill NATS publisher on core
// NATS subjects. Each publish runs through a circuit breaker.
type NATSPublisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	prefix         string

	mu     sync.RWMutex
	closed bool
}

// NewNATSPublisher connects to url. The connection retries in the
// background, so a broker that is down at startup does not fail the server.
func NewNATSPublisher(url string, cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*NATSPublisher, error) {
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("videoparty"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.ReconnectBufSize(1 << 20),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &NATSPublisher{
		publisher: pub,
		circuitBreaker: NewCircuitBreaker(BreakerConfig{
			Name:             "events-publisher",
			FailureThreshold: cfg.BreakerMaxFailures,
			Interval:         cfg.BreakerInterval,
			Timeout:          cfg.BreakerTimeout,
		}),
		prefix: cfg.SubjectPrefix,
	}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, event *Event) {
	err := p.publishOnce(event)
	if err == nil {
		metrics.RecordEventPublish(string(event.Type), "")
		return
	}

	reason := "error"
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		reason = "circuit_open"
	}
	metrics.RecordEventPublish(string(event.Type), reason)
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("event_type", string(event.Type)).
		Str("room_code", event.RoomCode).
		Msg("Event not published")
}

func (p *NATSPublisher) publishOnce(event *Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := message.NewMessage(event.ID, data)
	msg.Metadata.Set("type", string(event.Type))
	msg.Metadata.Set("room_code", event.RoomCode)

	subject := Subject(p.prefix, event.Type)
	_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(subject, msg)
	})
	return err
}

// Enabled implements Publisher.
func (p *NATSPublisher) Enabled() bool { return true }

// BreakerState reports the circuit breaker state, e.g. for health output.
func (p *NATSPublisher) BreakerState() string {
	return p.circuitBreaker.State().String()
}

// Close implements Publisher.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// New builds the publisher selected by cfg. When events are disabled it
// returns a NoopPublisher. url overrides cfg.URL, e.g. with the address of
// an embedded server.
func New(cfg *config.EventsConfig, url string) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	if url == "" {
		url = cfg.URL
	}
	pub, err := NewNATSPublisher(url, cfg, nil)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("url", url).Str("prefix", cfg.SubjectPrefix).Msg("Event publishing enabled")
	return pub, nil
}
