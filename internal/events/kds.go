package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
	"github.com/Ashhhad/kiosk-flow-master/internal/gateway"
)

// KDSPublisher sends orders to the kitchen display over Kafka and
// listens for estimated-prep-time acks on a reply topic. When no ack
// arrives within the timeout the publish still counts as delivered and
// the configured default prep time is reported.
type KDSPublisher struct {
	writer *kafka.Writer
	reader *kafka.Reader
	logger *zap.Logger

	ackTimeout  time.Duration
	defaultPrep int

	mu      sync.Mutex
	pending map[string]chan int
}

func NewKDSPublisher(brokers string, ackTimeout time.Duration, defaultPrep int, logger *zap.Logger) *KDSPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    "kds-orders",
		Balancer: &kafka.LeastBytes{},
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{brokers},
		Topic:   "kds-acks",
		GroupID: "kiosk-" + uuid.New().String(),
	})

	return &KDSPublisher{
		writer:      writer,
		reader:      reader,
		logger:      logger,
		ackTimeout:  ackTimeout,
		defaultPrep: defaultPrep,
		pending:     make(map[string]chan int),
	}
}

// Run consumes kitchen acks until the context is cancelled.
func (p *KDSPublisher) Run(ctx context.Context) {
	for {
		msg, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("kds ack read failed", zap.Error(err))
			continue
		}

		var ack KitchenAckEvent
		if err := json.Unmarshal(msg.Value, &ack); err != nil {
			p.logger.Warn("malformed kds ack", zap.Error(err))
			continue
		}

		p.mu.Lock()
		ch, ok := p.pending[ack.OrderNumber]
		if ok {
			delete(p.pending, ack.OrderNumber)
		}
		p.mu.Unlock()

		if ok {
			ch <- ack.EstimatedMinutes
		}
	}
}

func (p *KDSPublisher) PublishOrder(ctx context.Context, orderNumber string, orderType domain.OrderType, lines []domain.CartLine) (gateway.KDSResult, error) {
	event := KitchenOrderEvent{
		EventID:     uuid.New().String(),
		OrderNumber: orderNumber,
		OrderType:   orderType,
		Lines:       lines,
		Timestamp:   time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return gateway.KDSResult{}, err
	}

	ackCh := make(chan int, 1)
	p.mu.Lock()
	p.pending[orderNumber] = ackCh
	p.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(orderNumber),
		Value: value,
	}); err != nil {
		p.mu.Lock()
		delete(p.pending, orderNumber)
		p.mu.Unlock()
		p.logger.Error("kds publish failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return gateway.KDSResult{}, err
	}

	select {
	case minutes := <-ackCh:
		return gateway.KDSResult{Success: true, EstimatedMinutes: minutes}, nil
	case <-time.After(p.ackTimeout):
		p.mu.Lock()
		delete(p.pending, orderNumber)
		p.mu.Unlock()
		p.logger.Warn("no kds ack, using default prep time",
			zap.String("order_number", orderNumber))
		return gateway.KDSResult{Success: true, EstimatedMinutes: p.defaultPrep}, nil
	case <-ctx.Done():
		p.mu.Lock()
		delete(p.pending, orderNumber)
		p.mu.Unlock()
		return gateway.KDSResult{}, ctx.Err()
	}
}

func (p *KDSPublisher) Close() error {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("kds reader close failed", zap.Error(err))
	}
	return p.writer.Close()
}
