package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// QueuePublisher pushes order numbers to the public queue/display
// screen topic. Best-effort: callers queue a retry on failure.
type QueuePublisher struct {
	writer  *kafka.Writer
	brokers string
	logger  *zap.Logger
}

func NewQueuePublisher(brokers string, logger *zap.Logger) *QueuePublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    "queue-display",
		Balancer: &kafka.LeastBytes{},
	}
	return &QueuePublisher{writer: writer, brokers: brokers, logger: logger}
}

func (p *QueuePublisher) PublishOrderNumber(ctx context.Context, orderNumber string) error {
	event := QueueDisplayEvent{
		EventID:     uuid.New().String(),
		OrderNumber: orderNumber,
		Timestamp:   time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(orderNumber),
		Value: value,
	}); err != nil {
		p.logger.Error("queue display publish failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return err
	}

	p.logger.Info("order number on queue display",
		zap.String("order_number", orderNumber))
	return nil
}

// HealthCheck dials the broker; used by the health endpoint.
func (p *QueuePublisher) HealthCheck() error {
	conn, err := kafka.Dial("tcp", p.brokers)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p *QueuePublisher) Close() error {
	return p.writer.Close()
}
