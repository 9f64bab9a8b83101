package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/inkwellbooks/fulfillment/pkg/tracing"
)

type Writer struct {
	*kafka.Writer
}

func NewWriter(brokers []string, topic string) *Writer {
	return &Writer{
		Writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publisher emits fulfillment events (OrderFulfilled, StockBelowZero) for
// downstream consumers. Delivery is best-effort from the reconciler's point
// of view; the caller decides whether a failure matters.
type Publisher struct {
	log    *slog.Logger
	writer *Writer
}

func NewPublisher(log *slog.Logger, writer *Writer) *Publisher {
	return &Publisher{log: log, writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte(eventType)}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("event publish failed", "type", eventType, "key", key, "err", err)
		return err
	}
	p.log.Info("event published", "type", eventType, "key", key)
	return nil
}
