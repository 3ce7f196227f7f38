package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/catalog"
	"github.com/Ashhhad/kiosk-flow-master/internal/checkout"
	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
	"github.com/Ashhhad/kiosk-flow-master/internal/gateway"
	"github.com/Ashhhad/kiosk-flow-master/internal/repository"
	"github.com/Ashhhad/kiosk-flow-master/internal/state"
)

type stubGateways struct {
	declinePayment bool
	partialAuth    bool
}

func (s *stubGateways) ProcessPayment(context.Context, string, gateway.PaymentMethod, domain.Money, []domain.CartLine) (gateway.PaymentResult, error) {
	if s.partialAuth {
		return gateway.PaymentResult{PartialAuth: true, ErrorMessage: "Partial authorization."}, nil
	}
	if s.declinePayment {
		return gateway.PaymentResult{Success: false, ErrorMessage: "Payment was declined."}, nil
	}
	return gateway.PaymentResult{Success: true, TransactionID: "txn-test"}, nil
}

func (s *stubGateways) PublishOrder(context.Context, string, domain.OrderType, []domain.CartLine) (gateway.KDSResult, error) {
	return gateway.KDSResult{Success: true, EstimatedMinutes: 6}, nil
}

func (s *stubGateways) UpdateOrder(context.Context, string, string, []domain.CartLine, domain.Money) error {
	return nil
}

func (s *stubGateways) PrintReceipt(context.Context, string, domain.OrderType, []domain.CartLine, domain.Money) (gateway.PrintResult, error) {
	return gateway.PrintResult{Success: true}, nil
}

func (s *stubGateways) PublishOrderNumber(context.Context, string) error {
	return nil
}

const handlerMenu = `{
  "categories": [{"category_id": "burgers", "name": "Burgers"}],
  "items": [
    {"item_id": "smash-single", "name": "Smash Single", "category": "burgers", "price": 1000}
  ]
}`

func newRouter(t *testing.T, restore *repository.PersistedSession, stubs *stubGateways) (*gin.Engine, *state.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	menuPath := filepath.Join(t.TempDir(), "menu.json")
	if err := os.WriteFile(menuPath, []byte(handlerMenu), 0o644); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	cat, err := catalog.Load(menuPath)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	store := state.New(800, zap.NewNop(), nil)
	retries := checkout.NewRetryQueue(time.Minute, zap.NewNop())
	pipeline := checkout.New(store, stubs, stubs, stubs, stubs, stubs, retries, nil, 8, zap.NewNop())
	h := NewKioskHandler(store, pipeline, cat, restore, zap.NewNop())

	r := gin.New()
	r.GET("/menu", h.GetMenu)
	r.GET("/state", h.GetState)
	r.POST("/session", h.StartSession)
	r.POST("/session/restore", h.RestoreSession)
	r.POST("/category", h.SelectCategory)
	r.POST("/item", h.SelectItem)
	r.POST("/cart/lines", h.AddLine)
	r.POST("/checkout", h.Checkout)
	return r, store
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetMenu(t *testing.T) {
	r, _ := newRouter(t, nil, &stubGateways{})

	w := doJSON(r, http.MethodGet, "/menu", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Items []domain.MenuItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ItemID != "smash-single" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestAddLineUnknownItem(t *testing.T) {
	r, store := newRouter(t, nil, &stubGateways{})
	store.StartSession()

	w := doJSON(r, http.MethodPost, "/cart/lines", `{"item_id": "nope", "quantity": 1}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAddLineAndCheckout(t *testing.T) {
	r, store := newRouter(t, nil, &stubGateways{})

	if w := doJSON(r, http.MethodPost, "/session", ""); w.Code != http.StatusCreated {
		t.Fatalf("start session status = %d", w.Code)
	}
	store.SetOrderType(domain.OrderTypeDineIn)

	w := doJSON(r, http.MethodPost, "/cart/lines", `{"item_id": "smash-single", "quantity": 2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add line status = %d: %s", w.Code, w.Body.String())
	}
	var line domain.CartLine
	if err := json.Unmarshal(w.Body.Bytes(), &line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if line.TotalPrice != 2000 {
		t.Errorf("line total = %d, want 2000", line.TotalPrice)
	}

	w = doJSON(r, http.MethodPost, "/checkout", `{"method": "card"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout status = %d: %s", w.Code, w.Body.String())
	}
	var order domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.TransactionID != "txn-test" {
		t.Errorf("transaction = %s, want txn-test", order.TransactionID)
	}
	// $20.00 at 8% tax.
	if order.Totals.GrandTotal != 2160 {
		t.Errorf("grand total = %d, want 2160", order.Totals.GrandTotal)
	}
}

func TestCheckoutDeclineReturns402(t *testing.T) {
	stubs := &stubGateways{declinePayment: true}
	r, store := newRouter(t, nil, stubs)
	store.StartSession()
	store.SetOrderType(domain.OrderTypeDineIn)
	doJSON(r, http.MethodPost, "/cart/lines", `{"item_id": "smash-single", "quantity": 1}`)

	w := doJSON(r, http.MethodPost, "/checkout", `{"method": "card"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}
	var resp struct {
		Error struct {
			Kind      domain.ErrorKind `json:"kind"`
			Retryable bool             `json:"retryable"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Kind != domain.ErrorPayment || !resp.Error.Retryable {
		t.Errorf("error = %+v, want retryable payment", resp.Error)
	}
}

func TestCheckoutPartialAuthFlagged(t *testing.T) {
	stubs := &stubGateways{partialAuth: true}
	r, store := newRouter(t, nil, stubs)
	store.StartSession()
	store.SetOrderType(domain.OrderTypeDineIn)
	doJSON(r, http.MethodPost, "/cart/lines", `{"item_id": "smash-single", "quantity": 1}`)

	w := doJSON(r, http.MethodPost, "/checkout", `{"method": "contactless"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}
	var resp struct {
		Error struct {
			Kind        domain.ErrorKind `json:"kind"`
			Retryable   bool             `json:"retryable"`
			PartialAuth bool             `json:"partial_auth"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Error.PartialAuth {
		t.Error("partial auth must reach the front-end as a distinct flag")
	}
	if !resp.Error.Retryable {
		t.Error("partial auth must remain retryable")
	}
}

func TestSelectCategoryAndItem(t *testing.T) {
	r, store := newRouter(t, nil, &stubGateways{})
	store.StartSession()

	if w := doJSON(r, http.MethodPost, "/category", `{"category_id": "burgers"}`); w.Code != http.StatusOK {
		t.Fatalf("select category status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/item", `{"item_id": "smash-single"}`); w.Code != http.StatusOK {
		t.Fatalf("select item status = %d", w.Code)
	}

	sess := store.Snapshot().Session
	if sess.SelectedCategory != "burgers" {
		t.Errorf("category = %s, want burgers", sess.SelectedCategory)
	}
	if sess.SelectedItemID != "smash-single" {
		t.Errorf("item = %s, want smash-single", sess.SelectedItemID)
	}

	if w := doJSON(r, http.MethodPost, "/item", `{"item_id": "nope"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", w.Code)
	}
}

func TestRestoreOfferIsSingleUse(t *testing.T) {
	offer := &repository.PersistedSession{
		SessionID:        "sess-old",
		OrderType:        domain.OrderTypeTakeaway,
		SelectedCategory: "burgers",
		Cart: []domain.CartLine{
			{LineID: "line-1", Item: domain.MenuItem{ItemID: "smash-single", Price: 1000}, Quantity: 1, TotalPrice: 1000},
		},
		Timestamp:     time.Now(),
		SchemaVersion: repository.SchemaVersion,
	}
	r, store := newRouter(t, offer, &stubGateways{})

	w := doJSON(r, http.MethodGet, "/state", "")
	var st struct {
		RestoreOffer bool `json:"restore_offer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.RestoreOffer {
		t.Fatal("state must advertise the restore offer")
	}

	w = doJSON(r, http.MethodPost, "/session/restore", `{"accept": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("restore status = %d: %s", w.Code, w.Body.String())
	}

	snap := store.Snapshot()
	if snap.Session == nil || snap.Session.SessionID != "sess-old" {
		t.Fatal("session not restored")
	}
	if len(snap.Cart) != 1 {
		t.Errorf("cart lines = %d, want 1", len(snap.Cart))
	}
	if snap.Session.SelectedCategory != "burgers" {
		t.Errorf("category = %s, want burgers", snap.Session.SelectedCategory)
	}

	// The offer is consumed.
	w = doJSON(r, http.MethodPost, "/session/restore", `{"accept": true}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("second restore status = %d, want 404", w.Code)
	}
}

func TestDeclinedRestoreConsumesOffer(t *testing.T) {
	offer := &repository.PersistedSession{
		SessionID:     "sess-old",
		Timestamp:     time.Now(),
		SchemaVersion: repository.SchemaVersion,
		Cart: []domain.CartLine{
			{LineID: "line-1", Item: domain.MenuItem{ItemID: "smash-single", Price: 1000}, Quantity: 1, TotalPrice: 1000},
		},
	}
	r, store := newRouter(t, offer, &stubGateways{})

	w := doJSON(r, http.MethodPost, "/session/restore", `{"accept": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("decline status = %d", w.Code)
	}
	if store.Snapshot().Session != nil {
		t.Error("declined restore must not start a session")
	}
	if w = doJSON(r, http.MethodGet, "/state", ""); strings.Contains(w.Body.String(), `"restore_offer":true`) {
		t.Error("declined offer must be consumed")
	}
}
