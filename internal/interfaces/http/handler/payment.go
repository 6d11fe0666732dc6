package handler

import (
	paymentapp "github.com/dukapos/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	reconService *paymentapp.ReconciliationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(reconService *paymentapp.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{
		reconService: reconService,
	}
}

// InitiateMobile handles POST /payments/mobile. The payment stays PENDING
// until the gateway reports an outcome, so the response is 202.
func (h *PaymentHandler) InitiateMobile(c *gin.Context) {
	var req paymentapp.InitiateMobilePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	p, err := h.reconService.InitiateMobilePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, p)
}

// RecordCash handles POST /payments/cash
func (h *PaymentHandler) RecordCash(c *gin.Context) {
	var req paymentapp.RecordCashPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	p, err := h.reconService.RecordCashPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	p, err := h.reconService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListByOrder handles GET /payments/order/:id
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	payments, err := h.reconService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Poll handles POST /payments/:id/poll. It asks the gateway for the current
// state of a pending push and applies the outcome if one is final.
func (h *PaymentHandler) Poll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	p, err := h.reconService.Poll(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// SweepStale handles POST /payments/sweep, the manual trigger for the
// reconciliation sweep
func (h *PaymentHandler) SweepStale(c *gin.Context) {
	result, err := h.reconService.SweepStale(c.Request.Context(), 0)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
