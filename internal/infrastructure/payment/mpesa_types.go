package payment

import (
	domain "github.com/dukapos/backend/internal/domain/payment"
)

// oauthResponse is the token endpoint response. ExpiresIn arrives as a
// string of seconds.
type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// stkPushRequest is the wire format for initiating an STK push
type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// stkPushResponse is the synchronous acknowledgement of a push request
type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// stkQueryRequest is the wire format for querying a push's outcome
type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// stkQueryResponse is the query endpoint response. ResultCode is a string
// here even though the callback sends it as a number.
type stkQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// apiError is the error envelope the gateway returns with non-2xx statuses
type apiError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// errorCodeProcessing is returned by the query endpoint while the customer
// has not yet acted on the prompt
const errorCodeProcessing = "500.001.1001"

// CallbackEnvelope is the asynchronous payment result posted to the
// callback URL
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback carries the outcome of one push. CallbackMetadata is only
// present when ResultCode is 0.
type StkCallback struct {
	MerchantRequestID string                  `json:"MerchantRequestID"`
	CheckoutRequestID string                  `json:"CheckoutRequestID"`
	ResultCode        int                     `json:"ResultCode"`
	ResultDesc        string                  `json:"ResultDesc"`
	CallbackMetadata  domain.CallbackMetadata `json:"CallbackMetadata"`
}

// CallbackAck is the acknowledgement body the gateway expects. Anything
// other than ResultCode 0 makes the gateway retry the delivery.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
