package handler

import (
	"context"
	"net/http"
	"time"

	paymentapp "github.com/dukapos/backend/internal/application/payment"
	"github.com/dukapos/backend/internal/domain/payment"
	mpesa "github.com/dukapos/backend/internal/infrastructure/payment"
	"github.com/dukapos/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoticeHandler applies a normalized settlement notice
type NoticeHandler interface {
	HandleNotice(ctx context.Context, notice paymentapp.SettlementNotice) error
}

// PaymentCallbackHandler receives asynchronous payment results from the
// mobile-money gateway. The endpoint is unauthenticated; authenticity is
// established by correlating the checkout request id with a known payment.
//
// The gateway retries deliveries it considers failed, so this handler
// acknowledges every well-formed request even when processing fails.
// Reconciliation (poll and sweep) covers anything lost that way.
type PaymentCallbackHandler struct {
	BaseHandler
	notices NoticeHandler
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(notices NoticeHandler) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{
		notices: notices,
	}
}

// HandleCallback handles POST /payments/callback
func (h *PaymentCallbackHandler) HandleCallback(c *gin.Context) {
	log := logger.GetGinLogger(c)

	var envelope mpesa.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		// Malformed body. Rejecting makes the gateway retry the same
		// garbage, so acknowledge and log.
		log.Warn("malformed gateway callback", zap.Error(err))
		h.ack(c)
		return
	}

	cb := envelope.Body.StkCallback
	notice := paymentapp.SettlementNotice{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDescription: cb.ResultDesc,
	}

	if cb.ResultCode == payment.ResultCodeSuccess {
		notice.Receipt = cb.CallbackMetadata.LookupString("MpesaReceiptNumber")
		notice.Amount = cb.CallbackMetadata.LookupDecimal("Amount")
		if raw := cb.CallbackMetadata.Lookup("TransactionDate"); raw != nil {
			if ts, err := payment.ParseGatewayTime(raw); err == nil {
				notice.PaidAt = ts
			}
		}
		if notice.PaidAt.IsZero() {
			notice.PaidAt = time.Now()
		}
	}

	if err := h.notices.HandleNotice(c.Request.Context(), notice); err != nil {
		log.Error("gateway callback processing failed",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.Int("result_code", cb.ResultCode),
			zap.Error(err))
	}

	h.ack(c)
}

// ack sends the acknowledgement the gateway expects
func (h *PaymentCallbackHandler) ack(c *gin.Context) {
	c.JSON(http.StatusOK, mpesa.CallbackAck{
		ResultCode: 0,
		ResultDesc: "Accepted",
	})
}
