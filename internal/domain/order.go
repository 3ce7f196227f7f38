package domain

import "time"

// Order is the immutable snapshot produced when payment authorization
// succeeds. It is never mutated afterward.
type Order struct {
	OrderID          string     `json:"order_id"`
	OrderNumber      string     `json:"order_number"`
	Lines            []CartLine `json:"lines"`
	Totals           CartTotals `json:"totals"`
	OrderType        OrderType  `json:"order_type"`
	TransactionID    string     `json:"transaction_id"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	PaidAt           time.Time  `json:"paid_at"`
}
