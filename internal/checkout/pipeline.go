// Package checkout drives the ordered, partially recoverable sequence
// that turns a priced cart into a paid, kitchen-queued order. Payment
// is the sole gating step; everything after it degrades to queued
// retries rather than stranding a customer who has already paid.
package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
	"github.com/Ashhhad/kiosk-flow-master/internal/gateway"
	"github.com/Ashhhad/kiosk-flow-master/internal/state"
)

type Pipeline struct {
	store    *state.Store
	payments gateway.PaymentProcessor
	kitchen  gateway.KitchenDisplay
	pos      gateway.CloudPOS
	printer  gateway.ReceiptPrinter
	queue    gateway.QueueDisplay
	retries  *RetryQueue
	tracker  state.Tracker
	logger   *zap.Logger

	defaultPrep int
	seq         atomic.Uint64
	seqOffset   uint64
}

func New(
	store *state.Store,
	payments gateway.PaymentProcessor,
	kitchen gateway.KitchenDisplay,
	pos gateway.CloudPOS,
	printer gateway.ReceiptPrinter,
	queue gateway.QueueDisplay,
	retries *RetryQueue,
	tracker state.Tracker,
	defaultPrep int,
	logger *zap.Logger,
) *Pipeline {
	if tracker == nil {
		tracker = noTrack{}
	}
	return &Pipeline{
		store:       store,
		payments:    payments,
		kitchen:     kitchen,
		pos:         pos,
		printer:     printer,
		queue:       queue,
		retries:     retries,
		tracker:     tracker,
		logger:      logger,
		defaultPrep: defaultPrep,
		seqOffset:   uint64(time.Now().UnixNano() % 900),
	}
}

type noTrack struct{}

func (noTrack) Track(string, map[string]any) {}

// nextOrderNumber yields the 3-digit display number shown to the
// customer and the kitchen.
func (p *Pipeline) nextOrderNumber() string {
	n := p.seq.Add(1)
	return fmt.Sprintf("%03d", 100+(n+p.seqOffset)%900)
}

// Checkout runs the full commit sequence for the current cart. On a
// payment failure the cart and session are left intact and the returned
// error carries a retry action for the same method. Failures after
// payment never block completion.
//
// Each call starts a new charge attempt-series with its own charge key;
// the retry action reuses the key, so an attempt whose outcome was lost
// in transit is deduplicated by the gateway rather than charged again.
func (p *Pipeline) Checkout(ctx context.Context, method gateway.PaymentMethod) (*domain.Order, *domain.PipelineError) {
	return p.checkout(ctx, method, uuid.New().String())
}

func (p *Pipeline) checkout(ctx context.Context, method gateway.PaymentMethod, chargeKey string) (*domain.Order, *domain.PipelineError) {
	snap := p.store.Snapshot()
	if snap.Session == nil {
		return nil, &domain.PipelineError{
			Kind:    domain.ErrorPayment,
			Message: "No active session.",
		}
	}
	if len(snap.Cart) == 0 {
		return nil, &domain.PipelineError{
			Kind:    domain.ErrorPayment,
			Message: "Cart is empty.",
		}
	}
	totals := snap.Totals

	// Step 1: authorize payment. Blocking; sole gate for completion.
	p.tracker.Track("payment_initiated", map[string]any{
		"payment_method": string(method),
		"amount":         int64(totals.GrandTotal),
	})
	payRes, err := p.payments.ProcessPayment(ctx, chargeKey, method, totals.GrandTotal, snap.Cart)
	if err != nil {
		perr := &domain.PipelineError{
			Kind:    domain.ErrorNetwork,
			Message: "Could not reach the payment service. Please try again.",
			Retry:   p.retrySameMethod(method, chargeKey),
		}
		p.failPayment(method, perr)
		return nil, perr
	}
	if payRes.PartialAuth {
		perr := &domain.PipelineError{
			Kind:        domain.ErrorPayment,
			Message:     payRes.ErrorMessage,
			PartialAuth: true,
			Retry:       p.retrySameMethod(method, chargeKey),
		}
		p.failPayment(method, perr)
		return nil, perr
	}
	if !payRes.Success {
		perr := &domain.PipelineError{
			Kind:    domain.ErrorPayment,
			Message: payRes.ErrorMessage,
			Retry:   p.retrySameMethod(method, chargeKey),
		}
		p.failPayment(method, perr)
		return nil, perr
	}

	p.store.ClearError()
	p.tracker.Track("payment_success", map[string]any{
		"payment_method": string(method),
		"amount":         int64(totals.GrandTotal),
	})

	orderNumber := p.nextOrderNumber()
	orderType := snap.Session.OrderType
	lines := snap.Cart

	// Step 2: kitchen publish. Blocking only to learn the estimated
	// prep time; failure is queued, surfaced as a kds error, and the
	// pipeline proceeds. An authorized payment is never discarded.
	estimated := p.defaultPrep
	kdsRes, err := p.kitchen.PublishOrder(ctx, orderNumber, orderType, lines)
	switch {
	case err != nil, !kdsRes.Success:
		p.logger.Error("kds publish failed, queueing retry",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		p.retries.Enqueue("kds-publish-"+orderNumber, func(rctx context.Context) error {
			res, rerr := p.kitchen.PublishOrder(rctx, orderNumber, orderType, lines)
			if rerr != nil {
				return rerr
			}
			if !res.Success {
				return fmt.Errorf("kds rejected order %s: %s", orderNumber, res.Message)
			}
			return nil
		})
		p.store.SetError(&domain.PipelineError{
			Kind:    domain.ErrorKDS,
			Message: "Kitchen display is unreachable. Your order is queued and will be sent automatically.",
		})
	default:
		estimated = kdsRes.EstimatedMinutes
	}

	// Steps 3-5 are fire-and-forget from the customer's perspective;
	// they must not inherit a request-scoped cancellation.
	bg := context.WithoutCancel(ctx)
	go p.finishUpstream(bg, orderNumber, payRes.TransactionID, orderType, lines, totals.GrandTotal)

	order := &domain.Order{
		OrderID:          uuid.New().String(),
		OrderNumber:      orderNumber,
		Lines:            lines,
		Totals:           totals,
		OrderType:        orderType,
		TransactionID:    payRes.TransactionID,
		EstimatedMinutes: estimated,
		PaidAt:           time.Now(),
	}

	// Step 6: completion is gated on payment alone.
	p.store.CompleteOrder(order)
	p.logger.Info("order completed",
		zap.String("order_number", orderNumber),
		zap.String("transaction_id", payRes.TransactionID),
		zap.String("total", totals.GrandTotal.String()))
	return order, nil
}

func (p *Pipeline) retrySameMethod(method gateway.PaymentMethod, chargeKey string) func(context.Context) error {
	return func(ctx context.Context) error {
		p.tracker.Track("payment_retry", map[string]any{"payment_method": string(method)})
		if _, perr := p.checkout(ctx, method, chargeKey); perr != nil {
			return perr
		}
		return nil
	}
}

func (p *Pipeline) failPayment(method gateway.PaymentMethod, perr *domain.PipelineError) {
	p.tracker.Track("payment_failed", map[string]any{
		"payment_method": string(method),
		"error_kind":     string(perr.Kind),
	})
	p.store.SetError(perr)
}

// finishUpstream runs POS update, receipt print and queue publish. POS
// is attempted before printing so the receipt references a transaction
// the upstream already knows about; the queue publish is independent.
func (p *Pipeline) finishUpstream(ctx context.Context, orderNumber, transactionID string, orderType domain.OrderType, lines []domain.CartLine, total domain.Money) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.queue.PublishOrderNumber(ctx, orderNumber); err != nil {
			p.retries.Enqueue("queue-publish-"+orderNumber, func(rctx context.Context) error {
				return p.queue.PublishOrderNumber(rctx, orderNumber)
			})
		}
	}()

	// Step 3: POS update.
	if err := p.pos.UpdateOrder(ctx, orderNumber, transactionID, lines, total); err != nil {
		p.logger.Error("pos update failed, queueing retry",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		p.retries.Enqueue("pos-update-"+orderNumber, func(rctx context.Context) error {
			return p.pos.UpdateOrder(rctx, orderNumber, transactionID, lines, total)
		})
	}

	// Step 4: print, never blocking completion.
	res, err := p.printer.PrintReceipt(ctx, orderNumber, orderType, lines, total)
	if err != nil || !res.Success {
		p.logger.Warn("receipt print failed, queueing retry",
			zap.String("order_number", orderNumber),
			zap.String("printer_message", res.Message),
			zap.Error(err))
		p.retries.Enqueue("print-receipt-"+orderNumber, func(rctx context.Context) error {
			r, perr := p.printer.PrintReceipt(rctx, orderNumber, orderType, lines, total)
			if perr != nil {
				return perr
			}
			if !r.Success {
				return fmt.Errorf("printer rejected job for order %s: %s", orderNumber, r.Message)
			}
			return nil
		})
	}

	<-done
}
