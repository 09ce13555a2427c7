package kstream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront-catalog/internal/model"
)

func kafkaReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// ConsumeSearches reads search events until ctx is cancelled, handing each
// decodable event to handle. Cancellation is not an error.
func ConsumeSearches(ctx context.Context, broker, groupID string, handle func(model.SearchRequested)) error {
	reader := kafkaReader(broker, SearchTopic, groupID)
	defer reader.Close()

	log.Printf("Kstream: consuming from %s as %s", SearchTopic, groupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		var evt model.SearchRequested
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Printf("Kstream: skipping malformed event at offset %d: %v", msg.Offset, err)
			continue
		}
		handle(evt)
	}
}
