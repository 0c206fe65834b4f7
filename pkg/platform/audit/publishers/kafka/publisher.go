// Package kafka publishes outbox events to a Kafka topic. Records are keyed
// by aggregate id so every event for one application lands on the same
// partition in commit order.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "coopreg/pkg/platform/audit"
)

const (
	HeaderEventType = "event_type"
	HeaderTenantID  = "tenant_id"
	HeaderEventID   = "event_id"
)

type Config struct {
	Brokers    []string
	Topic      string
	Partitions int32
	// Replication defaults to 1.
	Replication int16
	// EnsureTopic creates the topic on startup when it does not exist.
	EnsureTopic bool
}

type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}

	p := &Publisher{client: client, topic: cfg.Topic, logger: logger}
	if cfg.EnsureTopic {
		if err := p.ensureTopic(ctx, cfg); err != nil {
			client.Close()
			return nil, err
		}
	}
	return p, nil
}

func (p *Publisher) ensureTopic(ctx context.Context, cfg Config) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 3
	}
	replication := cfg.Replication
	if replication <= 0 {
		replication = 1
	}

	admin := kadm.NewClient(p.client)
	resp, err := admin.CreateTopic(ctx, partitions, replication, nil, cfg.Topic)
	if err == nil {
		err = resp.Err
	}
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("kafka: create topic %s: %w", cfg.Topic, err)
	}
	p.logger.InfoContext(ctx, "kafka topic ready", "topic", cfg.Topic, "partitions", partitions)
	return nil
}

// Record builds the Kafka record for an outbox event.
func Record(topic string, event audit.Event) *kgo.Record {
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderTenantID, Value: []byte(event.TenantID)},
			{Key: HeaderEventID, Value: []byte(event.ID.String())},
		},
		Timestamp: event.CreatedAt,
	}
}

// Publish blocks until the broker acknowledges the record.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	if err := p.client.ProduceSync(ctx, Record(p.topic, event)).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", event.ID, err)
	}
	return nil
}

// Ping checks broker connectivity for readiness probes.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Publisher) Close() error {
	p.client.Close()
	return nil
}
