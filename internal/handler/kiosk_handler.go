package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/catalog"
	"github.com/Ashhhad/kiosk-flow-master/internal/checkout"
	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
	"github.com/Ashhhad/kiosk-flow-master/internal/gateway"
	"github.com/Ashhhad/kiosk-flow-master/internal/repository"
	"github.com/Ashhhad/kiosk-flow-master/internal/state"
)

// KioskHandler is the thin HTTP layer the touch front-end drives. All
// state lives in the store; handlers only translate requests into
// intents.
type KioskHandler struct {
	store    *state.Store
	pipeline *checkout.Pipeline
	catalog  *catalog.Catalog
	logger   *zap.Logger

	mu      sync.Mutex
	restore *repository.PersistedSession
}

func NewKioskHandler(store *state.Store, pipeline *checkout.Pipeline, cat *catalog.Catalog, restore *repository.PersistedSession, logger *zap.Logger) *KioskHandler {
	return &KioskHandler{
		store:    store,
		pipeline: pipeline,
		catalog:  cat,
		restore:  restore,
		logger:   logger,
	}
}

func (h *KioskHandler) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalog.Categories(),
		"items":      h.catalog.Items(),
	})
}

type stateResponse struct {
	Session        *domain.Session     `json:"session"`
	Cart           []domain.CartLine   `json:"cart"`
	Totals         domain.CartTotals   `json:"totals"`
	Monitor        domain.MonitorState `json:"monitor"`
	Countdown      int                 `json:"countdown,omitempty"`
	Error          *errorPayload       `json:"error,omitempty"`
	CompletedOrder *domain.Order       `json:"completed_order,omitempty"`
	RestoreOffer   bool                `json:"restore_offer,omitempty"`
}

type errorPayload struct {
	Kind        domain.ErrorKind `json:"kind"`
	Message     string           `json:"message"`
	Retryable   bool             `json:"retryable"`
	PartialAuth bool             `json:"partial_auth,omitempty"`
}

func newErrorPayload(perr *domain.PipelineError) *errorPayload {
	return &errorPayload{
		Kind:        perr.Kind,
		Message:     perr.Message,
		Retryable:   perr.Retryable(),
		PartialAuth: perr.PartialAuth,
	}
}

func (h *KioskHandler) GetState(c *gin.Context) {
	snap := h.store.Snapshot()
	resp := stateResponse{
		Session:        snap.Session,
		Cart:           snap.Cart,
		Totals:         snap.Totals,
		Monitor:        snap.Monitor,
		Countdown:      snap.Countdown,
		CompletedOrder: snap.CompletedOrder,
		RestoreOffer:   h.pendingRestore() != nil,
	}
	if snap.Err != nil {
		resp.Error = newErrorPayload(snap.Err)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *KioskHandler) StartSession(c *gin.Context) {
	sess := h.store.StartSession()
	c.JSON(http.StatusCreated, sess)
}

func (h *KioskHandler) CancelSession(c *gin.Context) {
	h.store.Reset("cancelled")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (h *KioskHandler) pendingRestore() *repository.PersistedSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restore
}

type restoreRequest struct {
	Accept bool `json:"accept"`
}

// RestoreSession accepts or declines the boot-time restore offer. The
// offer is single-use either way.
func (h *KioskHandler) RestoreSession(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	h.mu.Lock()
	offer := h.restore
	h.restore = nil
	h.mu.Unlock()

	if offer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session to restore"})
		return
	}
	if !req.Accept {
		c.JSON(http.StatusOK, gin.H{"status": "declined"})
		return
	}

	h.store.Restore(offer.SessionID, offer.OrderType, offer.SelectedCategory, offer.SelectedItemID, offer.Cart)
	c.JSON(http.StatusOK, gin.H{
		"status":     "restored",
		"session_id": offer.SessionID,
		"cart_lines": len(offer.Cart),
	})
}

func (h *KioskHandler) RecordActivity(c *gin.Context) {
	h.store.RecordActivity()
	c.Status(http.StatusNoContent)
}

type navigateRequest struct {
	Screen domain.Screen `json:"screen" binding:"required"`
}

func (h *KioskHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	h.store.Navigate(req.Screen)
	c.JSON(http.StatusOK, gin.H{"screen": req.Screen})
}

type orderTypeRequest struct {
	OrderType domain.OrderType `json:"order_type" binding:"required"`
}

func (h *KioskHandler) SetOrderType(c *gin.Context) {
	var req orderTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	h.store.SetOrderType(req.OrderType)
	c.JSON(http.StatusOK, gin.H{"order_type": req.OrderType})
}

type selectCategoryRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
}

func (h *KioskHandler) SelectCategory(c *gin.Context) {
	var req selectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	h.store.SelectCategory(req.CategoryID)
	c.JSON(http.StatusOK, gin.H{"category_id": req.CategoryID})
}

type selectItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

func (h *KioskHandler) SelectItem(c *gin.Context) {
	var req selectItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	if h.catalog.ItemByID(req.ItemID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown menu item", "item_id": req.ItemID})
		return
	}
	h.store.SelectItem(req.ItemID)
	c.JSON(http.StatusOK, gin.H{"item_id": req.ItemID})
}

type addLineRequest struct {
	ItemID     string                         `json:"item_id" binding:"required"`
	Quantity   int                            `json:"quantity" binding:"required,min=1"`
	Selections []domain.SelectedCustomization `json:"selections"`
}

func (h *KioskHandler) AddLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	item := h.catalog.ItemByID(req.ItemID)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown menu item", "item_id": req.ItemID})
		return
	}

	line, err := h.store.AddLine(item, req.Quantity, req.Selections)
	if err != nil {
		h.logger.Warn("add line rejected",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("item_id", req.ItemID),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, line)
}

type updateLineRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *KioskHandler) UpdateLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	if err := h.store.UpdateQuantity(c.Param("id"), *req.Quantity); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *KioskHandler) RemoveLine(c *gin.Context) {
	h.store.RemoveLine(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *KioskHandler) ClearCart(c *gin.Context) {
	h.store.ClearCart()
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	Method gateway.PaymentMethod `json:"method" binding:"required"`
}

func (h *KioskHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	requestID := c.GetString("request_id")
	order, perr := h.pipeline.Checkout(c.Request.Context(), req.Method)
	if perr != nil {
		h.logger.Error("checkout failed",
			zap.String("request_id", requestID),
			zap.String("kind", string(perr.Kind)),
			zap.String("message", perr.Message))

		status := http.StatusPaymentRequired
		if perr.Kind == domain.ErrorNetwork {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"error":      newErrorPayload(perr),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// RetryCheckout re-runs the retry action carried by the surfaced error.
func (h *KioskHandler) RetryCheckout(c *gin.Context) {
	perr := h.store.LastError()
	if perr == nil || !perr.Retryable() {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing to retry"})
		return
	}
	if err := perr.Retry(c.Request.Context()); err != nil {
		var pe *domain.PipelineError
		if errors.As(err, &pe) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": newErrorPayload(pe)})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot().CompletedOrder)
}
