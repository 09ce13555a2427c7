// Package kstream publishes and tails catalog search events on Kafka.
package kstream

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront-catalog/internal/model"
)

// SearchTopic carries one SearchRequested event per catalog search.
const SearchTopic = "catalog.search.requests"

func kafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 200 * time.Millisecond,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Printf("Kstream: failed to deliver %d search events: %v", len(msgs), err)
			}
		},
	}
}

// Publisher emits search events. A nil *Publisher drops everything, which is
// how event publishing is disabled.
type Publisher struct {
	w *kafka.Writer
}

// NewPublisher returns a publisher for broker, or nil when broker is empty.
func NewPublisher(broker string) *Publisher {
	if broker == "" {
		return nil
	}
	return &Publisher{w: kafkaWriter(broker, SearchTopic)}
}

// PublishSearch queues evt. The writer is async so this never waits on the
// broker; delivery failures are logged by the writer.
func (p *Publisher) PublishSearch(ctx context.Context, evt model.SearchRequested) error {
	if p == nil {
		return nil
	}
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Kind),
		Value: data,
		Time:  time.Now(),
	})
}

// Close flushes pending events.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}
