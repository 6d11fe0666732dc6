package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukapos/backend/internal/domain/payment"
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: shared.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "already exists", err: shared.ErrAlreadyExists, wantStatus: http.StatusConflict},
		{name: "concurrency conflict", err: shared.ErrConcurrencyConflict, wantStatus: http.StatusConflict},
		{name: "insufficient stock", err: shared.ErrInsufficientStock, wantStatus: http.StatusUnprocessableEntity},
		{name: "invalid transition", err: shared.ErrInvalidTransition, wantStatus: http.StatusUnprocessableEntity},
		{name: "custom domain error", err: shared.NewDomainError("INVALID_PHONE", "bad phone"), wantStatus: http.StatusUnprocessableEntity},
		{name: "gateway unavailable", err: fmt.Errorf("%w: connection refused", payment.ErrGatewayUnavailable), wantStatus: http.StatusBadGateway},
		{name: "gateway rejected", err: payment.ErrGatewayRejected, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown checkout", err: payment.ErrUnknownCheckout, wantStatus: http.StatusNotFound},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}
