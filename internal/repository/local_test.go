package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

func newLocalStore(t *testing.T) *LocalSnapshotStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewLocalSnapshotStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	return s
}

func sampleSession(age time.Duration) PersistedSession {
	return PersistedSession{
		SessionID: "sess-1",
		Cart: []domain.CartLine{
			{LineID: "line-1", Item: domain.MenuItem{ItemID: "smash-single", Name: "Smash Single", Price: 1000}, Quantity: 2, TotalPrice: 2000},
			{LineID: "line-2", Item: domain.MenuItem{ItemID: "fries", Name: "Fries", Price: 450}, Quantity: 1, TotalPrice: 450},
		},
		OrderType:        domain.OrderTypeTakeaway,
		SelectedCategory: "burgers",
		Timestamp:        time.Now().Add(-age),
		SchemaVersion:    SchemaVersion,
		Revision:         12,
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := newLocalStore(t)
	ps, err := s.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ps != nil {
		t.Fatal("missing file must load as nil")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newLocalStore(t)
	if err := s.Save(sampleSession(4 * time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}

	ps, err := s.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ps == nil {
		t.Fatal("fresh snapshot must load")
	}
	if ps.SessionID != "sess-1" {
		t.Errorf("session id = %s, want sess-1", ps.SessionID)
	}
	if len(ps.Cart) != 2 {
		t.Fatalf("cart lines = %d, want 2", len(ps.Cart))
	}
	if ps.Cart[0].Quantity != 2 || ps.Cart[0].TotalPrice != 2000 {
		t.Errorf("line 0 = %+v, want qty 2, total 2000", ps.Cart[0])
	}
	if ps.OrderType != domain.OrderTypeTakeaway {
		t.Errorf("order type = %s, want takeaway", ps.OrderType)
	}
	if ps.SelectedCategory != "burgers" {
		t.Errorf("category = %s, want burgers", ps.SelectedCategory)
	}
}

func TestLoadDiscardsEmptyCart(t *testing.T) {
	s := newLocalStore(t)
	ps := sampleSession(time.Minute)
	ps.Cart = nil
	if err := s.Save(ps); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatal("a snapshot without cart lines must not be offered back")
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("empty-cart snapshot file must be removed")
	}
}

func TestLoadDiscardsStaleSnapshot(t *testing.T) {
	s := newLocalStore(t)
	if err := s.Save(sampleSession(6 * time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}

	ps, err := s.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ps != nil {
		t.Fatal("stale snapshot must not be restored")
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("stale snapshot file must be removed")
	}
}

func TestLoadDiscardsSchemaMismatch(t *testing.T) {
	s := newLocalStore(t)
	ps := sampleSession(time.Minute)
	ps.SchemaVersion = SchemaVersion + 1
	if err := s.Save(ps); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatal("mismatched schema must be discarded")
	}
}

func TestLoadDiscardsCorruptFile(t *testing.T) {
	s := newLocalStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.Load(5 * time.Minute)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatal("corrupt snapshot must be discarded")
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("corrupt snapshot file must be removed")
	}
}
