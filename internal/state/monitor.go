package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

type MonitorConfig struct {
	// Timeout applies to every monitored screen except confirmation.
	Timeout time.Duration
	// ConfirmationTimeout is the shorter auto-return countdown after an
	// order completes.
	ConfirmationTimeout time.Duration
	// WarningThreshold is how much remaining time is left when the
	// warning state activates.
	WarningThreshold time.Duration
	Tick             time.Duration
}

// Monitor drives the inactivity state machine. Remaining time is always
// recomputed from the absolute last-activity timestamp, never from an
// elapsed-tick counter, so a suspended and resumed host still times out
// at the right wall-clock moment.
type Monitor struct {
	store  *Store
	cfg    MonitorConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewMonitor(store *Store, cfg MonitorConfig, logger *zap.Logger) *Monitor {
	return &Monitor{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Run ticks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}

func (m *Monitor) check() {
	snap := m.store.Snapshot()
	if snap.Session == nil || snap.Session.CurrentScreen == domain.ScreenIdle {
		m.store.applyMonitor(domain.MonitorInactive, 0)
		return
	}

	timeout := m.cfg.Timeout
	if snap.Session.CurrentScreen == domain.ScreenConfirmation {
		timeout = m.cfg.ConfirmationTimeout
	}

	remaining := timeout - m.now().Sub(snap.Session.LastActivity)
	switch {
	case remaining <= 0:
		m.logger.Info("session timed out",
			zap.String("session_id", snap.Session.SessionID),
			zap.String("screen", string(snap.Session.CurrentScreen)))
		m.store.expire()
	case remaining <= m.cfg.WarningThreshold:
		secs := int((remaining + time.Second - 1) / time.Second)
		if secs < 1 {
			secs = 1
		}
		m.store.applyMonitor(domain.MonitorWarning, secs)
	default:
		m.store.applyMonitor(domain.MonitorActive, 0)
	}
}
