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

// HTTPCloudPOS pushes completed orders to the cloud point-of-sale over
// JSON/HTTP.
type HTTPCloudPOS struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewHTTPCloudPOS(endpoint string, logger *zap.Logger) *HTTPCloudPOS {
	return &HTTPCloudPOS{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type posUpdate struct {
	OrderNumber   string            `json:"order_number"`
	TransactionID string            `json:"transaction_id"`
	Lines         []domain.CartLine `json:"lines"`
	Total         domain.Money      `json:"total"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (p *HTTPCloudPOS) UpdateOrder(ctx context.Context, orderNumber, transactionID string, lines []domain.CartLine, total domain.Money) error {
	body, err := json.Marshal(posUpdate{
		OrderNumber:   orderNumber,
		TransactionID: transactionID,
		Lines:         lines,
		Total:         total,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal pos update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pos update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("pos update: unexpected status %d", resp.StatusCode)
	}

	p.logger.Info("pos updated",
		zap.String("order_number", orderNumber),
		zap.String("transaction_id", transactionID))
	return nil
}
