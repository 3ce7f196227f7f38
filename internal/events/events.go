package events

import (
	"time"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

type KitchenOrderEvent struct {
	EventID     string            `json:"event_id"`
	OrderNumber string            `json:"order_number"`
	OrderType   domain.OrderType  `json:"order_type"`
	Lines       []domain.CartLine `json:"lines"`
	Timestamp   time.Time         `json:"timestamp"`
}

// KitchenAckEvent comes back from the kitchen display with the
// estimated preparation time for a published order.
type KitchenAckEvent struct {
	OrderNumber      string    `json:"order_number"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	Timestamp        time.Time `json:"timestamp"`
}

type QueueDisplayEvent struct {
	EventID     string    `json:"event_id"`
	OrderNumber string    `json:"order_number"`
	Timestamp   time.Time `json:"timestamp"`
}

type AnalyticsEvent struct {
	EventID    string         `json:"event_id"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
