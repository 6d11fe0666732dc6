package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	paymentapp "github.com/dukapos/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingNoticeHandler struct {
	notices []paymentapp.SettlementNotice
	err     error
}

func (h *capturingNoticeHandler) HandleNotice(_ context.Context, notice paymentapp.SettlementNotice) error {
	h.notices = append(h.notices, notice)
	return h.err
}

func newCallbackRouter(notices *capturingNoticeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewPaymentCallbackHandler(notices).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postCallback(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func assertAcked(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var ack map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, float64(0), ack["ResultCode"])
}

func TestPaymentCallbackHandler_HandleCallback(t *testing.T) {
	successBody := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 1500.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20260115103045},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`

	t.Run("success callback is normalized and acked", func(t *testing.T) {
		notices := &capturingNoticeHandler{}
		w := postCallback(t, newCallbackRouter(notices), successBody)

		assertAcked(t, w)
		require.Len(t, notices.notices, 1)

		notice := notices.notices[0]
		assert.Equal(t, "ws_CO_191220191020363925", notice.CheckoutRequestID)
		assert.Equal(t, 0, notice.ResultCode)
		assert.Equal(t, "NLJ7RT61SV", notice.Receipt)
		assert.True(t, notice.Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, 2026, notice.PaidAt.Year())
	})

	t.Run("cancellation callback carries no metadata", func(t *testing.T) {
		notices := &capturingNoticeHandler{}
		w := postCallback(t, newCallbackRouter(notices), `{
			"Body": {
				"stkCallback": {
					"MerchantRequestID": "29115-34620561-2",
					"CheckoutRequestID": "ws_CO_191220191020363926",
					"ResultCode": 1032,
					"ResultDesc": "Request cancelled by user"
				}
			}
		}`)

		assertAcked(t, w)
		require.Len(t, notices.notices, 1)

		notice := notices.notices[0]
		assert.Equal(t, 1032, notice.ResultCode)
		assert.Empty(t, notice.Receipt)
		assert.True(t, notice.Amount.IsZero())
	})

	t.Run("malformed body is acked without a notice", func(t *testing.T) {
		notices := &capturingNoticeHandler{}
		w := postCallback(t, newCallbackRouter(notices), `{not json`)

		assertAcked(t, w)
		assert.Empty(t, notices.notices)
	})

	t.Run("processing failure is still acked", func(t *testing.T) {
		// The database CAS is the safety net for replays; refusing the ack
		// would only make the gateway hammer the endpoint
		notices := &capturingNoticeHandler{err: errors.New("database down")}
		w := postCallback(t, newCallbackRouter(notices), successBody)

		assertAcked(t, w)
		require.Len(t, notices.notices, 1)
	})
}
