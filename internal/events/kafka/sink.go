// Package kafka publishes domain events to a Kafka topic. The topic is the
// durable event log consumers tail; the registry only ever appends.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"attestry/internal/events"
)

// Sink produces events to Kafka, keyed by actor so per-account ordering is
// preserved within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// NewSink connects to the brokers and ensures the topic exists.
func NewSink(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure topic %q: %w", topic, err)
	}

	return &Sink{client: client, topic: topic}, nil
}

// Append produces one event synchronously. The worker in front of this sink
// keeps request handling off the produce path.
func (s *Sink) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Actor),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (s *Sink) Close() {
	s.client.Close()
}
