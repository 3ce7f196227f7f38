// Package gateway defines the external operations the checkout pipeline
// drives. Every operation is independently fallible; implementations
// live behind these interfaces so deterministic fault injection stays
// possible in tests.
package gateway

import (
	"context"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

type PaymentMethod string

const (
	MethodCard        PaymentMethod = "card"
	MethodContactless PaymentMethod = "contactless"
)

type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	// PartialAuth marks the distinguished partial-authorization outcome:
	// the charge did not complete but is recoverable by retrying or
	// switching methods.
	PartialAuth  bool   `json:"partial_auth,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type KDSResult struct {
	Success          bool   `json:"success"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
	Message          string `json:"message,omitempty"`
}

type PrintResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PaymentProcessor authorizes a charge. A non-nil error means the
// gateway could not be reached; a declined charge comes back as a
// result with Success false. chargeKey is stable across retries of the
// same charge so the gateway can deduplicate an attempt whose outcome
// was lost in transit.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, chargeKey string, method PaymentMethod, amount domain.Money, lines []domain.CartLine) (PaymentResult, error)
}

// KitchenDisplay publishes an order to the kitchen and reports the
// estimated preparation time.
type KitchenDisplay interface {
	PublishOrder(ctx context.Context, orderNumber string, orderType domain.OrderType, lines []domain.CartLine) (KDSResult, error)
}

// CloudPOS records the order and its payment transaction upstream.
type CloudPOS interface {
	UpdateOrder(ctx context.Context, orderNumber, transactionID string, lines []domain.CartLine, total domain.Money) error
}

type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, orderNumber string, orderType domain.OrderType, lines []domain.CartLine, total domain.Money) (PrintResult, error)
}

// QueueDisplay shows the order number on the public pickup screen.
type QueueDisplay interface {
	PublishOrderNumber(ctx context.Context, orderNumber string) error
}
