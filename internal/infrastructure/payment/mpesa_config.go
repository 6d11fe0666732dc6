package payment

import (
	"errors"
	"time"
)

const (
	mpesaSandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	mpesaProductionBaseURL = "https://api.safaricom.co.ke"

	mpesaOAuthPath    = "/oauth/v1/generate?grant_type=client_credentials"
	mpesaSTKPushPath  = "/mpesa/stkpush/v1/processrequest"
	mpesaSTKQueryPath = "/mpesa/stkpushquery/v1/query"
)

// Errors for configuration validation
var (
	ErrMpesaMissingConsumerKey    = errors.New("mpesa: missing consumer key")
	ErrMpesaMissingConsumerSecret = errors.New("mpesa: missing consumer secret")
	ErrMpesaMissingShortCode      = errors.New("mpesa: missing business short code")
	ErrMpesaMissingPasskey        = errors.New("mpesa: missing passkey")
	ErrMpesaMissingCallbackURL    = errors.New("mpesa: missing callback URL")
)

// MpesaConfig contains configuration for the Daraja STK push API
type MpesaConfig struct {
	// BaseURL is the API host. Defaults to the sandbox host; tests point it
	// at a local server.
	BaseURL string
	// ConsumerKey is the app's OAuth consumer key
	ConsumerKey string
	// ConsumerSecret is the app's OAuth consumer secret
	ConsumerSecret string
	// ShortCode is the business short code (paybill or till number)
	ShortCode string
	// Passkey is the Lipa Na M-Pesa online passkey for the short code
	Passkey string
	// CallbackURL receives the asynchronous payment result
	CallbackURL string
	// Timeout bounds each HTTP call to the gateway
	Timeout time.Duration
	// QueryRetries is how many extra attempts a status query gets when the
	// gateway is unreachable. Push requests are never retried.
	QueryRetries int
}

// Validate validates the configuration
func (c *MpesaConfig) Validate() error {
	if c.ConsumerKey == "" {
		return ErrMpesaMissingConsumerKey
	}
	if c.ConsumerSecret == "" {
		return ErrMpesaMissingConsumerSecret
	}
	if c.ShortCode == "" {
		return ErrMpesaMissingShortCode
	}
	if c.Passkey == "" {
		return ErrMpesaMissingPasskey
	}
	if c.CallbackURL == "" {
		return ErrMpesaMissingCallbackURL
	}
	return nil
}

// applyDefaults fills in the values that have sensible defaults
func (c *MpesaConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = mpesaSandboxBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.QueryRetries < 0 {
		c.QueryRetries = 0
	}
}
