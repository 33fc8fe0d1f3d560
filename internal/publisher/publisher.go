package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "pos-sales"

// Publisher announces completed sales to downstream consumers.
type Publisher interface {
	PublishSale(ctx context.Context, event domain.SaleEvent) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

// PublishSale writes one message keyed by receipt id, so retries of the same sale land on the
// same partition.
func (p *KafkaPublisher) PublishSale(ctx context.Context, event domain.SaleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ReceiptID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(domain.SaleCompletedEventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish sale %s: %w", event.ReceiptID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSale(context.Context, domain.SaleEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
