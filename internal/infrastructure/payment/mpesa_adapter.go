package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	domain "github.com/dukapos/backend/internal/domain/payment"
)

// MpesaAdapter implements the payment Gateway port against the Daraja STK
// push API. It handles OAuth token caching and the short code password
// scheme; callers only see the domain-level request and result types.
type MpesaAdapter struct {
	config     *MpesaConfig
	httpClient *http.Client

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewMpesaAdapter creates a new M-Pesa adapter
func NewMpesaAdapter(config *MpesaConfig) (*MpesaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &MpesaAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// InitiateSTKPush starts a customer-present payment prompt
func (a *MpesaAdapter) InitiateSTKPush(ctx context.Context, req domain.PushRequest) (*domain.PushResponse, error) {
	timestamp := domain.FormatGatewayTime(time.Now())

	// The gateway only accepts whole shillings
	body := stkPushRequest{
		BusinessShortCode: a.config.ShortCode,
		Password:          a.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            req.Amount.Round(0).String(),
		PartyA:            req.PhoneNumber,
		PartyB:            a.config.ShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       a.config.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.Description,
	}

	respBody, err := a.doRequest(ctx, mpesaSTKPushPath, body)
	if err != nil {
		return nil, err
	}

	var resp stkPushResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("mpesa: failed to parse push response: %w", err)
	}
	if resp.ResponseCode != "0" {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, resp.ResponseDescription)
	}

	return &domain.PushResponse{
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}

// QueryStatus asks the gateway for the current state of a push. Transport
// failures are retried up to QueryRetries times; a definitive gateway answer
// (including "still processing") is never retried.
func (a *MpesaAdapter) QueryStatus(ctx context.Context, checkoutRequestID string) (*domain.StatusResult, error) {
	timestamp := domain.FormatGatewayTime(time.Now())

	body := stkQueryRequest{
		BusinessShortCode: a.config.ShortCode,
		Password:          a.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var respBody []byte
	var err error
	for attempt := 0; ; attempt++ {
		respBody, err = a.doRequest(ctx, mpesaSTKQueryPath, body)
		if err == nil {
			break
		}
		if pending, ok := pendingFromError(err, checkoutRequestID); ok {
			return pending, nil
		}
		if !errors.Is(err, domain.ErrGatewayUnavailable) || attempt >= a.config.QueryRetries {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}

	var resp stkQueryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("mpesa: failed to parse query response: %w", err)
	}

	resultCode, err := strconv.Atoi(resp.ResultCode)
	if err != nil {
		return nil, fmt.Errorf("mpesa: unexpected result code %q: %w", resp.ResultCode, err)
	}

	return &domain.StatusResult{
		CheckoutRequestID: resp.CheckoutRequestID,
		Pending:           false,
		ResultCode:        resultCode,
		ResultDescription: resp.ResultDesc,
	}, nil
}

// password derives the request password for a timestamp
func (a *MpesaAdapter) password(timestamp string) string {
	raw := a.config.ShortCode + a.config.Passkey + timestamp
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// doRequest performs an authenticated POST and returns the response body.
// Non-2xx responses are mapped to the domain gateway errors.
func (a *MpesaAdapter) doRequest(ctx context.Context, path string, body interface{}) ([]byte, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mpesa: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("mpesa: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	var apiErr apiError
	_ = json.Unmarshal(respBody, &apiErr)

	return nil, &gatewayHTTPError{
		status:  resp.StatusCode,
		api:     apiErr,
		wrapped: classifyStatus(resp.StatusCode, apiErr),
	}
}

// accessToken returns a cached OAuth token, refreshing it when it is within
// thirty seconds of expiry
func (a *MpesaAdapter) accessToken(ctx context.Context) (string, error) {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-30*time.Second)) {
		return a.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+mpesaOAuthPath, nil)
	if err != nil {
		return "", fmt.Errorf("mpesa: failed to build token request: %w", err)
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("%w: token request returned %d", domain.ErrGatewayRejected, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: token request returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var tokenResp oauthResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("mpesa: failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrGatewayRejected)
	}

	ttl := 3600
	if n, err := strconv.Atoi(tokenResp.ExpiresIn); err == nil && n > 0 {
		ttl = n
	}

	a.token = tokenResp.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(ttl) * time.Second)
	return a.token, nil
}

// gatewayHTTPError wraps a non-2xx gateway response while keeping the
// domain sentinel reachable through errors.Is
type gatewayHTTPError struct {
	status  int
	api     apiError
	wrapped error
}

func (e *gatewayHTTPError) Error() string {
	if e.api.ErrorCode != "" {
		return fmt.Sprintf("mpesa: %s (%s, HTTP %d)", e.api.ErrorMessage, e.api.ErrorCode, e.status)
	}
	return fmt.Sprintf("mpesa: HTTP %d", e.status)
}

func (e *gatewayHTTPError) Unwrap() error {
	return e.wrapped
}

// classifyStatus maps a gateway error response onto the domain sentinels
func classifyStatus(status int, apiErr apiError) error {
	if apiErr.ErrorCode == errorCodeProcessing {
		return nil
	}
	switch {
	case status == http.StatusNotFound:
		return domain.ErrUnknownCheckout
	case status >= 400 && status < 500:
		return domain.ErrGatewayRejected
	default:
		return domain.ErrGatewayUnavailable
	}
}

// pendingFromError recognizes the "transaction is being processed" error the
// query endpoint returns while the customer has not yet acted on the prompt
func pendingFromError(err error, checkoutRequestID string) (*domain.StatusResult, bool) {
	httpErr, ok := err.(*gatewayHTTPError)
	if !ok || httpErr.api.ErrorCode != errorCodeProcessing {
		return nil, false
	}
	return &domain.StatusResult{
		CheckoutRequestID: checkoutRequestID,
		Pending:           true,
	}, true
}

var _ domain.Gateway = (*MpesaAdapter)(nil)
