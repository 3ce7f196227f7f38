// Package repository persists the kiosk session: a durable local
// snapshot written synchronously on every mutation, plus a debounced
// push to the remote store.
package repository

import (
	"time"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

const SchemaVersion = 1

// PersistedSession is the durable record of an in-progress session.
type PersistedSession struct {
	SessionID        string            `json:"session_id" dynamodbav:"session_id"`
	Cart             []domain.CartLine `json:"cart" dynamodbav:"cart"`
	OrderType        domain.OrderType  `json:"order_type,omitempty" dynamodbav:"order_type"`
	SelectedCategory string            `json:"selected_category,omitempty" dynamodbav:"selected_category"`
	SelectedItemID   string            `json:"selected_item_id,omitempty" dynamodbav:"selected_item_id"`
	Timestamp        time.Time         `json:"timestamp" dynamodbav:"timestamp"`
	SchemaVersion    int               `json:"schema_version" dynamodbav:"schema_version"`
	Revision         uint64            `json:"revision" dynamodbav:"revision"`
}

// Stale reports whether the snapshot is older than the TTL and must be
// discarded rather than silently restored.
func (ps *PersistedSession) Stale(ttl time.Duration, now time.Time) bool {
	return now.Sub(ps.Timestamp) > ttl
}
