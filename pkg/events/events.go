// Package events publishes configuration lifecycle notifications as
// CloudEvents on NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
)

const eventSource = "netfabric/core"

// Event types and their stream subjects.
const (
	TypeTopologyRefreshed = "com.carverauto.netfabric.topology.refreshed"
	TypeProvisionPlanned  = "com.carverauto.netfabric.provision.planned"
	TypeProvisionApplied  = "com.carverauto.netfabric.provision.applied"
	TypeProvisionFailed   = "com.carverauto.netfabric.provision.failed"

	subjectTopologyRefreshed = "events.topology.refreshed"
	subjectProvisionPlanned  = "events.provision.planned"
	subjectProvisionApplied  = "events.provision.applied"
	subjectProvisionFailed   = "events.provision.failed"
)

// publishAPI is the JetStream slice the publisher uses.
type publishAPI interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher emits CloudEvents for topology and provisioning activity.
// A nil Publisher discards events, so callers can run without NATS.
type Publisher struct {
	js     publishAPI
	stream string
	log    logger.Logger
}

// NewPublisher creates a Publisher on an existing JetStream context.
func NewPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *Publisher {
	return &Publisher{js: js, stream: streamName, log: log}
}

// Connect dials NATS, binds a JetStream context and makes sure the
// event stream exists.
func Connect(ctx context.Context, natsCfg models.NATSConfig, eventsCfg models.EventsConfig, log logger.Logger, opts ...nats.Option) (*Publisher, *nats.Conn, error) {
	nc, err := nats.Connect(natsCfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	publisher, err := NewPublisherFor(ctx, nc, natsCfg.Domain, eventsCfg, log)
	if err != nil {
		nc.Close()

		return nil, nil, err
	}

	return publisher, nc, nil
}

// NewPublisherFor binds a publisher to an existing NATS connection,
// honoring the optional JetStream domain.
func NewPublisherFor(ctx context.Context, nc *nats.Conn, domain string, cfg models.EventsConfig, log logger.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		js  jetstream.JetStream
		err error
	)

	if domain != "" {
		js, err = jetstream.NewWithDomain(nc, domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, cfg); err != nil {
		return nil, err
	}

	log.Info().Str("stream", cfg.StreamName).Msg("Event publishing enabled")

	return NewPublisher(js, cfg.StreamName, log), nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, cfg models.EventsConfig) error {
	if _, err := js.Stream(ctx, cfg.StreamName); err == nil {
		return nil
	}

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: cfg.Subjects,
	})
	if err != nil {
		return fmt.Errorf("creating stream %s: %w", cfg.StreamName, err)
	}

	return nil
}

// PublishTopologyRefreshed announces a completed inventory refresh.
func (p *Publisher) PublishTopologyRefreshed(ctx context.Context, data models.TopologyRefreshEventData) error {
	return p.publish(ctx, TypeTopologyRefreshed, subjectTopologyRefreshed, data.Timestamp, data)
}

// PublishProvisionPlanned announces a computed but unapplied plan.
func (p *Publisher) PublishProvisionPlanned(ctx context.Context, data models.ProvisionEventData) error {
	return p.publish(ctx, TypeProvisionPlanned, subjectProvisionPlanned, data.Timestamp, data)
}

// PublishProvisionApplied announces a plan pushed to its device.
func (p *Publisher) PublishProvisionApplied(ctx context.Context, data models.ProvisionEventData) error {
	return p.publish(ctx, TypeProvisionApplied, subjectProvisionApplied, data.Timestamp, data)
}

// PublishProvisionFailed announces a run that did not complete.
func (p *Publisher) PublishProvisionFailed(ctx context.Context, data models.ProvisionEventData) error {
	return p.publish(ctx, TypeProvisionFailed, subjectProvisionFailed, data.Timestamp, data)
}

func (p *Publisher) publish(ctx context.Context, eventType, subject string, at time.Time, data interface{}) error {
	if p == nil {
		return nil
	}

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &at,
		Data:            data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", eventType, err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, payload)
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", eventType, err)
	}

	p.log.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("sequence", ack.Sequence).
		Msg("Published event")

	return nil
}
