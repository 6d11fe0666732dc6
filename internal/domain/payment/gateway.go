package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway-side result codes. The gateway reports 0 for success and a
// non-zero code for every failure mode; 1032 specifically means the
// customer dismissed the payment prompt.
const (
	ResultCodeSuccess       = 0
	ResultCodeUserCancelled = 1032
)

var (
	// ErrGatewayUnavailable indicates a transport or gateway-side outage.
	// Callers may retry; the payment stays PENDING.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected indicates the gateway refused the request
	// outright (bad credentials, invalid number, amount limits). Not
	// retryable with the same input.
	ErrGatewayRejected = errors.New("payment gateway rejected request")

	// ErrUnknownCheckout indicates the gateway does not recognize the
	// checkout request id being queried
	ErrUnknownCheckout = errors.New("unknown checkout request")
)

// PushRequest asks the gateway to prompt the customer's phone for payment
type PushRequest struct {
	Amount           decimal.Decimal
	PhoneNumber      string
	AccountReference string
	Description      string
}

// PushResponse carries the gateway correlation ids for a accepted push
type PushResponse struct {
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
}

// StatusResult is the gateway's answer to a status query. Pending is true
// while the customer has not yet acted on the prompt; once false, ResultCode
// carries the final outcome.
type StatusResult struct {
	CheckoutRequestID string
	Pending           bool
	ResultCode        int
	ResultDescription string
	Receipt           string
	Amount            decimal.Decimal
	PhoneNumber       string
	TransactionTime   time.Time
}

// Settled returns true for a final successful outcome
func (r StatusResult) Settled() bool {
	return !r.Pending && r.ResultCode == ResultCodeSuccess
}

// Cancelled returns true when the customer dismissed the prompt
func (r StatusResult) Cancelled() bool {
	return !r.Pending && r.ResultCode == ResultCodeUserCancelled
}

// Gateway is the port to the mobile-money provider. Implementations handle
// authentication, signing and transport; the reconciliation service never
// sees provider wire formats.
type Gateway interface {
	// InitiateSTKPush starts a customer-present payment prompt
	InitiateSTKPush(ctx context.Context, req PushRequest) (*PushResponse, error)

	// QueryStatus asks the gateway for the current state of a push
	QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error)
}

// MetadataItem is one name/value pair from a gateway callback. The gateway
// sends metadata as an unordered list, so consumers must look items up by
// name rather than position.
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// CallbackMetadata is the unordered item list from a success callback
type CallbackMetadata struct {
	Items []MetadataItem `json:"Item"`
}

// Lookup returns the value for a named item, or nil if absent
func (m CallbackMetadata) Lookup(name string) interface{} {
	for _, item := range m.Items {
		if item.Name == name {
			return item.Value
		}
	}
	return nil
}

// LookupString returns a named item coerced to string, or "" if absent
func (m CallbackMetadata) LookupString(name string) string {
	v := m.Lookup(name)
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return decimal.NewFromFloat(s).String()
	default:
		return fmt.Sprintf("%v", s)
	}
}

// LookupDecimal returns a named item coerced to decimal, or zero if absent
// or unparseable
func (m CallbackMetadata) LookupDecimal(name string) decimal.Decimal {
	v := m.Lookup(name)
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// compactTimeLayout is the gateway's timestamp format, local to Nairobi
const compactTimeLayout = "20060102150405"

// ParseGatewayTime parses the gateway's compact yyyymmddhhmmss timestamp.
// The gateway sends numeric timestamps in callbacks, so both string and
// float64 JSON values are accepted.
func ParseGatewayTime(v interface{}) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = decimal.NewFromFloat(t).StringFixed(0)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		loc = time.FixedZone("EAT", 3*60*60)
	}
	ts, err := time.ParseInLocation(compactTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse gateway timestamp %q: %w", s, err)
	}
	return ts, nil
}

// FormatGatewayTime renders a time in the gateway's compact layout
func FormatGatewayTime(t time.Time) string {
	return t.Format(compactTimeLayout)
}
