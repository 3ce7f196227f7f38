package gateway

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

// MidtransProcessor charges through the Midtrans core API. Card reads
// come in pre-tokenized from the kiosk's terminal.
type MidtransProcessor struct {
	client coreapi.Client
	logger *zap.Logger
}

func NewMidtransProcessor(serverKey string, logger *zap.Logger) *MidtransProcessor {
	p := &MidtransProcessor{logger: logger}
	p.client.New(serverKey, midtrans.Sandbox)
	return p
}

func (p *MidtransProcessor) ProcessPayment(ctx context.Context, chargeKey string, method PaymentMethod, amount domain.Money, lines []domain.CartLine) (PaymentResult, error) {
	// The charge key doubles as the gateway order id: a retried charge
	// carries the same id, so Midtrans rejects a duplicate instead of
	// charging twice.
	req := &coreapi.ChargeReq{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  "kiosk-" + chargeKey,
			GrossAmt: int64(amount),
		},
	}
	switch method {
	case MethodContactless:
		req.PaymentType = coreapi.PaymentTypeQris
	default:
		req.PaymentType = coreapi.PaymentTypeCreditCard
	}

	p.client.Options.SetContext(ctx)
	resp, mErr := p.client.ChargeTransaction(req)
	if mErr != nil {
		p.logger.Error("payment gateway unreachable",
			zap.String("method", string(method)),
			zap.Error(mErr.RawError))
		return PaymentResult{}, fmt.Errorf("charge transaction: %w", mErr.RawError)
	}

	switch resp.TransactionStatus {
	case "capture", "settlement":
		return PaymentResult{
			Success:       true,
			TransactionID: resp.TransactionID,
		}, nil
	case "pending":
		return PaymentResult{
			PartialAuth:  true,
			ErrorCode:    resp.StatusCode,
			ErrorMessage: "Payment was only partially authorized. Retry or choose another method.",
		}, nil
	default:
		p.logger.Warn("payment declined",
			zap.String("status", resp.TransactionStatus),
			zap.String("status_code", resp.StatusCode))
		return PaymentResult{
			ErrorCode:    resp.StatusCode,
			ErrorMessage: "Payment was declined. Please try again or use a different card.",
		}, nil
	}
}
