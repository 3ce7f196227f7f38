package repository

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
	"github.com/Ashhhad/kiosk-flow-master/internal/state"
)

// RemoteStore is the remote sync endpoint. All failures are treated as
// recoverable.
type RemoteStore interface {
	PutSnapshot(ctx context.Context, ps PersistedSession) error
}

// Syncer observes store changes. The local snapshot is written
// synchronously on every change; the remote push is debounced. A
// monotonic revision on each snapshot guarantees a stale in-flight push
// never supersedes newer state: pushes are serialized and only ever
// advance the last-pushed revision.
type Syncer struct {
	local    *LocalSnapshotStore
	remote   RemoteStore
	debounce time.Duration
	logger   *zap.Logger

	onError func(*domain.PipelineError)
	onOK    func()

	mu           sync.Mutex
	pending      *PersistedSession
	lastObserved uint64
	lastPushed   uint64

	kick chan struct{}
}

func NewSyncer(local *LocalSnapshotStore, remote RemoteStore, debounce time.Duration, logger *zap.Logger) *Syncer {
	return &Syncer{
		local:    local,
		remote:   remote,
		debounce: debounce,
		logger:   logger,
		kick:     make(chan struct{}, 1),
	}
}

// SetCallbacks wires the transient error surface: onError reports a
// degraded "saved locally" state, onOK clears it after a successful
// push.
func (s *Syncer) SetCallbacks(onError func(*domain.PipelineError), onOK func()) {
	s.onError = onError
	s.onOK = onOK
}

// Observe is the store's onChange hook. Never blocks on the network.
// Notifications run outside the store lock and can arrive out of order;
// anything at or below the newest revision already seen is dropped so a
// late delivery cannot roll the local file back.
func (s *Syncer) Observe(snap state.Snapshot) {
	s.mu.Lock()
	if snap.Revision <= s.lastObserved {
		s.mu.Unlock()
		return
	}
	s.lastObserved = snap.Revision
	s.mu.Unlock()

	if snap.Session == nil {
		// Session ended; a durable snapshot would only invite a bogus
		// restore.
		if err := s.local.Clear(); err != nil {
			s.logger.Warn("failed to clear local snapshot", zap.Error(err))
		}
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		return
	}

	ps := PersistedSession{
		SessionID:        snap.Session.SessionID,
		Cart:             snap.Cart,
		OrderType:        snap.Session.OrderType,
		SelectedCategory: snap.Session.SelectedCategory,
		SelectedItemID:   snap.Session.SelectedItemID,
		Timestamp:        time.Now(),
		SchemaVersion:    SchemaVersion,
		Revision:         snap.Revision,
	}

	if err := s.local.Save(ps); err != nil {
		s.logger.Error("local snapshot write failed", zap.Error(err))
	}

	s.mu.Lock()
	s.pending = &ps
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run debounces remote pushes: each change restarts the window, and the
// push happens once the window closes quietly.
func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}

		timer := time.NewTimer(s.debounce)
	debouncing:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.kick:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(s.debounce)
			case <-timer.C:
				break debouncing
			}
		}

		s.push(ctx)
	}
}

// Flush pushes any pending snapshot immediately; used on shutdown.
func (s *Syncer) Flush(ctx context.Context) {
	s.push(ctx)
}

func (s *Syncer) push(ctx context.Context) {
	s.mu.Lock()
	ps := s.pending
	last := s.lastPushed
	s.mu.Unlock()

	if ps == nil || ps.Revision <= last {
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := s.remote.PutSnapshot(pushCtx, *ps)
	cancel()

	if err != nil {
		s.logger.Warn("remote sync failed, will retry",
			zap.String("session_id", ps.SessionID),
			zap.Uint64("revision", ps.Revision),
			zap.Error(err))
		if s.onError != nil {
			s.onError(&domain.PipelineError{
				Kind:    domain.ErrorNetwork,
				Message: "Changes saved locally. Will sync when online.",
			})
		}
		// Re-arm the debounce path.
		select {
		case s.kick <- struct{}{}:
		default:
		}
		return
	}

	s.mu.Lock()
	if ps.Revision > s.lastPushed {
		s.lastPushed = ps.Revision
	}
	if s.pending != nil && s.pending.Revision == ps.Revision {
		s.pending = nil
	}
	s.mu.Unlock()

	s.logger.Debug("session synced",
		zap.String("session_id", ps.SessionID),
		zap.Uint64("revision", ps.Revision))
	if s.onOK != nil {
		s.onOK()
	}
}
