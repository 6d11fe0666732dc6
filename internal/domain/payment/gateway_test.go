package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackMetadata_Lookup(t *testing.T) {
	// the gateway sends metadata items in no particular order
	meta := CallbackMetadata{Items: []MetadataItem{
		{Name: "MpesaReceiptNumber", Value: "SHM31XYZ9A"},
		{Name: "TransactionDate", Value: float64(20260830140500)},
		{Name: "Amount", Value: float64(500)},
		{Name: "PhoneNumber", Value: float64(254712345678)},
	}}

	assert.Equal(t, "SHM31XYZ9A", meta.LookupString("MpesaReceiptNumber"))
	assert.True(t, meta.LookupDecimal("Amount").Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "254712345678", meta.LookupString("PhoneNumber"))
	assert.Nil(t, meta.Lookup("Balance"))
	assert.Equal(t, "", meta.LookupString("Balance"))
	assert.True(t, meta.LookupDecimal("Balance").IsZero())
}

func TestCallbackMetadata_LookupDecimal_String(t *testing.T) {
	meta := CallbackMetadata{Items: []MetadataItem{
		{Name: "Amount", Value: "499.99"},
		{Name: "Garbage", Value: "not-a-number"},
	}}

	assert.True(t, meta.LookupDecimal("Amount").Equal(decimal.NewFromFloat(499.99)))
	assert.True(t, meta.LookupDecimal("Garbage").IsZero())
}

func TestParseGatewayTime(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
	}{
		{"string timestamp", "20260830140500", false},
		{"numeric timestamp", float64(20260830140500), false},
		{"short string", "2026", true},
		{"garbage", "not-a-time", true},
		{"unsupported type", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGatewayTime(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2026, got.Year())
			assert.Equal(t, time.August, got.Month())
			assert.Equal(t, 30, got.Day())
			assert.Equal(t, 14, got.Hour())
		})
	}
}

func TestFormatGatewayTime_RoundTrip(t *testing.T) {
	orig := time.Date(2026, 8, 30, 14, 5, 0, 0, time.FixedZone("EAT", 3*60*60))
	parsed, err := ParseGatewayTime(FormatGatewayTime(orig))
	require.NoError(t, err)
	assert.True(t, orig.Equal(parsed))
}

func TestStatusResult_Outcomes(t *testing.T) {
	settled := StatusResult{Pending: false, ResultCode: ResultCodeSuccess}
	assert.True(t, settled.Settled())
	assert.False(t, settled.Cancelled())

	cancelled := StatusResult{Pending: false, ResultCode: ResultCodeUserCancelled}
	assert.False(t, cancelled.Settled())
	assert.True(t, cancelled.Cancelled())

	pending := StatusResult{Pending: true}
	assert.False(t, pending.Settled())
	assert.False(t, pending.Cancelled())
}
