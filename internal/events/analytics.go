package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AnalyticsPublisher is the fire-and-forget analytics sink. Track never
// blocks and never fails from the caller's perspective; events are
// buffered and dropped when the buffer is full.
type AnalyticsPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
	ch     chan AnalyticsEvent
}

func NewAnalyticsPublisher(brokers string, logger *zap.Logger) *AnalyticsPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    "kiosk-analytics",
		Balancer: &kafka.LeastBytes{},
	}
	return &AnalyticsPublisher{
		writer: writer,
		logger: logger,
		ch:     make(chan AnalyticsEvent, 256),
	}
}

func (p *AnalyticsPublisher) Track(event string, props map[string]any) {
	e := AnalyticsEvent{
		EventID:    uuid.New().String(),
		Name:       event,
		Properties: props,
		Timestamp:  time.Now(),
	}
	select {
	case p.ch <- e:
	default:
		// Buffer full; analytics never gates anything.
	}
}

// Run drains the buffer until the context is cancelled. Delivery
// failures are logged and swallowed.
func (p *AnalyticsPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-p.ch:
			value, err := json.Marshal(e)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = p.writer.WriteMessages(writeCtx, kafka.Message{
				Key:   []byte(e.Name),
				Value: value,
			})
			cancel()
			if err != nil {
				p.logger.Debug("analytics publish dropped",
					zap.String("event", e.Name),
					zap.Error(err))
			}
		}
	}
}

func (p *AnalyticsPublisher) Close() error {
	return p.writer.Close()
}
