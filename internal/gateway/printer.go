package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

// HTTPReceiptPrinter talks to the receipt printer's network endpoint.
// Print failure never blocks order completion; the customer collects
// the receipt at the counter.
type HTTPReceiptPrinter struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewHTTPReceiptPrinter(endpoint string, logger *zap.Logger) *HTTPReceiptPrinter {
	return &HTTPReceiptPrinter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type printJob struct {
	OrderNumber string            `json:"order_number"`
	OrderType   domain.OrderType  `json:"order_type"`
	Lines       []domain.CartLine `json:"lines"`
	Total       domain.Money      `json:"total"`
	PrintedAt   time.Time         `json:"printed_at"`
}

func (p *HTTPReceiptPrinter) PrintReceipt(ctx context.Context, orderNumber string, orderType domain.OrderType, lines []domain.CartLine, total domain.Money) (PrintResult, error) {
	body, err := json.Marshal(printJob{
		OrderNumber: orderNumber,
		OrderType:   orderType,
		Lines:       lines,
		Total:       total,
		PrintedAt:   time.Now(),
	})
	if err != nil {
		return PrintResult{}, fmt.Errorf("marshal print job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return PrintResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return PrintResult{}, fmt.Errorf("print receipt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return PrintResult{
			Message: fmt.Sprintf("printer returned status %d", resp.StatusCode),
		}, nil
	}
	return PrintResult{Success: true}, nil
}
