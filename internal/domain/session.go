package domain

import "time"

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
)

type Screen string

const (
	ScreenIdle         Screen = "idle"
	ScreenOrderType    Screen = "order-type"
	ScreenMenu         Screen = "menu"
	ScreenItemDetail   Screen = "item-detail"
	ScreenCart         Screen = "cart"
	ScreenUpsell       Screen = "upsell"
	ScreenPayment      Screen = "payment"
	ScreenConfirmation Screen = "confirmation"
)

// MonitorState is the inactivity machine layered on top of the screen.
type MonitorState string

const (
	MonitorInactive MonitorState = "inactive"
	MonitorActive   MonitorState = "active"
	MonitorWarning  MonitorState = "warning"
	MonitorExpiring MonitorState = "expiring"
)

// Session exists from the moment the idle screen is exited until reset,
// timeout, or the post-confirmation countdown hits zero.
type Session struct {
	SessionID        string    `json:"session_id"`
	StartedAt        time.Time `json:"started_at"`
	LastActivity     time.Time `json:"last_activity"`
	OrderType        OrderType `json:"order_type,omitempty"`
	CurrentScreen    Screen    `json:"current_screen"`
	PreviousScreen   Screen    `json:"previous_screen"`
	SelectedCategory string    `json:"selected_category,omitempty"`
	SelectedItemID   string    `json:"selected_item_id,omitempty"`
}
