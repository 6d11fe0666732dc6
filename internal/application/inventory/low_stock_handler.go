package inventory

import (
	"context"
	"fmt"

	"github.com/dukapos/backend/internal/domain/inventory"
	"github.com/dukapos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockNotifier is the interface for delivering low-stock alerts.
// Implementations can support different channels (in-app, SMS, email).
type LowStockNotifier interface {
	// Notify delivers a low-stock alert
	Notify(ctx context.Context, alert LowStockAlert) error
}

// LowStockAlert is the notification payload for a product whose stock
// crossed its minimum threshold
type LowStockAlert struct {
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	CurrentStock  int64  `json:"current_stock"`
	MinStockLevel int64  `json:"min_stock_level"`
	AlertType     string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// LowStockAlertHandler reacts to LowStockAlertRaised events. Without a
// notifier it still logs the alert, which is enough for operators tailing
// the service logs.
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier LowStockNotifier
}

// NewLowStockAlertHandler creates a new handler for low stock alert events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockAlertHandler{logger: logger}
}

// WithNotifier sets the notifier for delivering alerts
func (h *LowStockAlertHandler) WithNotifier(notifier LowStockNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStockAlertRaised}
}

// Handle processes a LowStockAlertRaisedEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	alertEvent, ok := event.(*inventory.LowStockAlertRaisedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeLowStockAlertRaised),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStockAlertRaised, event.EventType())
	}

	alertType := "low_stock"
	if alertEvent.CurrentStock <= 0 {
		alertType = "out_of_stock"
	}

	h.logger.Warn("low stock alert",
		zap.String("product_id", alertEvent.ProductID.String()),
		zap.String("sku", alertEvent.SKU),
		zap.Int64("current_stock", alertEvent.CurrentStock),
		zap.Int64("min_stock_level", alertEvent.MinStockLevel),
		zap.String("alert_type", alertType),
	)

	if h.notifier == nil {
		return nil
	}

	alert := LowStockAlert{
		ProductID:     alertEvent.ProductID.String(),
		SKU:           alertEvent.SKU,
		CurrentStock:  alertEvent.CurrentStock,
		MinStockLevel: alertEvent.MinStockLevel,
		AlertType:     alertType,
	}
	if err := h.notifier.Notify(ctx, alert); err != nil {
		return fmt.Errorf("failed to deliver low stock alert for %s: %w", alert.SKU, err)
	}
	return nil
}
