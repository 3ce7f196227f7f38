// Package state owns the kiosk's session, cart and screen state. The
// Store is the single writer; every other component reads snapshots and
// issues intent operations.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

// Tracker is the fire-and-forget analytics sink. Implementations must
// never block the caller.
type Tracker interface {
	Track(event string, props map[string]any)
}

type nopTracker struct{}

func (nopTracker) Track(string, map[string]any) {}

// Snapshot is a read-only projection of the store. Slices and the
// session are copies; holding a snapshot never aliases live state.
type Snapshot struct {
	Revision       uint64
	Session        *domain.Session
	Cart           []domain.CartLine
	Totals         domain.CartTotals
	Monitor        domain.MonitorState
	Countdown      int
	Err            *domain.PipelineError
	CompletedOrder *domain.Order
}

type Store struct {
	logger    *zap.Logger
	tracker   Tracker
	taxRateBP int64
	onChange  func(Snapshot)

	mu        sync.Mutex
	revision  uint64
	session   *domain.Session
	cart      []domain.CartLine
	monitor   domain.MonitorState
	countdown int
	lastErr   *domain.PipelineError
	completed *domain.Order
}

func New(taxRateBP int64, logger *zap.Logger, tracker Tracker) *Store {
	if tracker == nil {
		tracker = nopTracker{}
	}
	return &Store{
		logger:    logger,
		tracker:   tracker,
		taxRateBP: taxRateBP,
		monitor:   domain.MonitorInactive,
	}
}

// SetOnChange registers the persistence observer. It is invoked after
// every session or cart mutation, outside the store lock. Must be set
// before background workers start.
func (s *Store) SetOnChange(fn func(Snapshot)) {
	s.onChange = fn
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Revision:       s.revision,
		Cart:           domain.CloneLines(s.cart),
		Totals:         domain.ComputeCartTotals(s.cart, s.taxRateBP),
		Monitor:        s.monitor,
		Countdown:      s.countdown,
		Err:            s.lastErr,
		CompletedOrder: s.completed,
	}
	if s.session != nil {
		sess := *s.session
		snap.Session = &sess
	}
	return snap
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// StartSession creates a fresh session and moves off the idle screen.
// Called when the customer touches the idle screen.
func (s *Store) StartSession() domain.Session {
	now := time.Now()
	s.mu.Lock()
	sess := domain.Session{
		SessionID:      uuid.New().String(),
		StartedAt:      now,
		LastActivity:   now,
		CurrentScreen:  domain.ScreenOrderType,
		PreviousScreen: domain.ScreenIdle,
	}
	s.session = &sess
	s.cart = nil
	s.completed = nil
	s.lastErr = nil
	s.monitor = domain.MonitorActive
	s.countdown = 0
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("session_started", map[string]any{"session_id": sess.SessionID})
	s.notify(snap)
	return sess
}

// Navigate transitions to the named screen. The navigator never rejects
// a transition; validity is the caller's responsibility. previousScreen
// always reflects the screen immediately prior.
func (s *Store) Navigate(screen domain.Screen) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	prev := s.session.CurrentScreen
	s.session.PreviousScreen = prev
	s.session.CurrentScreen = screen
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("screen_view", map[string]any{
		"screen_name": string(screen),
		"previous":    string(prev),
	})
	s.notify(snap)
}

func (s *Store) SetOrderType(t domain.OrderType) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.session.OrderType = t
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("order_type_selected", map[string]any{"order_type": string(t)})
	s.notify(snap)
}

// SelectCategory records the browsed category. Changing category drops
// any selected item.
func (s *Store) SelectCategory(categoryID string) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.session.SelectedCategory = categoryID
	s.session.SelectedItemID = ""
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("category_selected", map[string]any{"category_id": categoryID})
	s.notify(snap)
}

func (s *Store) SelectItem(itemID string) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.session.SelectedItemID = itemID
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("item_selected", map[string]any{"item_id": itemID})
	s.notify(snap)
}

// AddLine appends a new cart line with a fresh identity. Selections are
// normalized against the item's customizations first.
func (s *Store) AddLine(item *domain.MenuItem, quantity int, selections []domain.SelectedCustomization) (domain.CartLine, error) {
	if quantity > domain.MaxLineQuantity {
		quantity = domain.MaxLineQuantity
	}
	normalized, err := domain.NormalizeSelections(item, selections)
	if err != nil {
		return domain.CartLine{}, err
	}
	total, err := domain.ComputeLineTotal(item, quantity, normalized)
	if err != nil {
		return domain.CartLine{}, err
	}

	line := domain.CartLine{
		LineID:     uuid.New().String(),
		Item:       *item,
		Quantity:   quantity,
		Selections: normalized,
		TotalPrice: total,
	}

	s.mu.Lock()
	s.cart = append(s.cart, line)
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("cart_add", map[string]any{
		"item_name": item.Name,
		"quantity":  quantity,
		"value":     int64(total),
	})
	s.notify(snap)
	return line, nil
}

// UpdateQuantity changes a line's quantity in place, recomputing its
// total. A quantity of zero or less removes the line. Unknown line ids
// are a no-op.
func (s *Store) UpdateQuantity(lineID string, quantity int) error {
	if quantity <= 0 {
		s.RemoveLine(lineID)
		return nil
	}
	if quantity > domain.MaxLineQuantity {
		quantity = domain.MaxLineQuantity
	}

	s.mu.Lock()
	var updated *domain.CartLine
	for i := range s.cart {
		if s.cart[i].LineID == lineID {
			total, err := domain.ComputeLineTotal(&s.cart[i].Item, quantity, s.cart[i].Selections)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			s.cart[i].Quantity = quantity
			s.cart[i].TotalPrice = total
			updated = &s.cart[i]
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		return nil
	}
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	name := updated.Item.Name
	s.mu.Unlock()

	s.tracker.Track("cart_update", map[string]any{
		"item_name": name,
		"quantity":  quantity,
	})
	s.notify(snap)
	return nil
}

// RemoveLine removes the line permanently. Idempotent: absent ids are a
// no-op. Identities are never reused.
func (s *Store) RemoveLine(lineID string) {
	s.mu.Lock()
	idx := -1
	for i := range s.cart {
		if s.cart[i].LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	name := s.cart[idx].Item.Name
	s.cart = append(s.cart[:idx], s.cart[idx+1:]...)
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("cart_remove", map[string]any{"item_name": name})
	s.notify(snap)
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	s.cart = nil
	s.recordActivityLocked()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) Totals() domain.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeCartTotals(s.cart, s.taxRateBP)
}

// RecordActivity refreshes the last-activity timestamp. The idle screen
// is never monitored and the confirmation countdown always runs out, so
// both are excluded.
func (s *Store) RecordActivity() {
	s.mu.Lock()
	s.recordActivityLocked()
	s.mu.Unlock()
}

func (s *Store) recordActivityLocked() {
	if s.session == nil {
		return
	}
	switch s.session.CurrentScreen {
	case domain.ScreenIdle, domain.ScreenConfirmation:
		return
	}
	s.session.LastActivity = time.Now()
	if s.monitor == domain.MonitorWarning {
		s.monitor = domain.MonitorActive
		s.countdown = 0
	}
}

func (s *Store) SetError(err *domain.PipelineError) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.tracker.Track("error", map[string]any{
			"error_type":    string(err.Kind),
			"error_message": err.Message,
		})
	}
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *Store) LastError() *domain.PipelineError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CompleteOrder records the paid order and moves to confirmation. The
// confirmation screen's shorter inactivity timeout starts counting from
// here.
func (s *Store) CompleteOrder(order *domain.Order) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.completed = order
	s.session.PreviousScreen = s.session.CurrentScreen
	s.session.CurrentScreen = domain.ScreenConfirmation
	s.session.LastActivity = time.Now()
	s.monitor = domain.MonitorActive
	s.countdown = 0
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("order_completed", map[string]any{
		"order_number": order.OrderNumber,
		"total":        int64(order.Totals.GrandTotal),
	})
	s.notify(snap)
}

// Reset tears the session down: cart cleared, session destroyed, screen
// back to idle.
func (s *Store) Reset(reason string) {
	s.mu.Lock()
	sessionID := ""
	if s.session != nil {
		sessionID = s.session.SessionID
	}
	s.session = nil
	s.cart = nil
	s.completed = nil
	s.lastErr = nil
	s.monitor = domain.MonitorInactive
	s.countdown = 0
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("session_reset", map[string]any{
		"session_id": sessionID,
		"reason":     reason,
	})
	s.notify(snap)
}

// Restore rebuilds session and cart from a persisted snapshot. The
// session keeps its original id and browsing position; the customer
// resumes on the menu.
func (s *Store) Restore(sessionID string, orderType domain.OrderType, category, itemID string, cart []domain.CartLine) {
	now := time.Now()
	s.mu.Lock()
	s.session = &domain.Session{
		SessionID:        sessionID,
		StartedAt:        now,
		LastActivity:     now,
		OrderType:        orderType,
		CurrentScreen:    domain.ScreenMenu,
		PreviousScreen:   domain.ScreenIdle,
		SelectedCategory: category,
		SelectedItemID:   itemID,
	}
	s.cart = domain.CloneLines(cart)
	s.completed = nil
	s.lastErr = nil
	s.monitor = domain.MonitorActive
	s.countdown = 0
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.tracker.Track("session_restored", map[string]any{
		"session_id":      sessionID,
		"cart_item_count": len(cart),
	})
	s.notify(snap)
}

// applyMonitor is the inactivity monitor's only write path besides
// expiry. Monitor transitions do not bump the persisted revision.
func (s *Store) applyMonitor(state domain.MonitorState, countdown int) {
	s.mu.Lock()
	if s.session == nil && state != domain.MonitorInactive {
		s.mu.Unlock()
		return
	}
	s.monitor = state
	s.countdown = countdown
	s.mu.Unlock()
}

func (s *Store) expire() {
	s.applyMonitor(domain.MonitorExpiring, 0)
	s.tracker.Track("session_expired", nil)
	s.Reset("inactivity_timeout")
}
