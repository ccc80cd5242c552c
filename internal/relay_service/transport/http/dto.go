package http

import "github.com/relaygate/sms_relay/internal/relay_service/adapters/smsprovider"

// SendSMSRequest is the body of POST /send-sms (role -> client).
type SendSMSRequest struct {
	Message    string `json:"message" validate:"required"`
	SenderRole string `json:"sender_role" validate:"required"`
	ContactID  string `json:"contactId,omitempty"`
	DealID     string `json:"dealId,omitempty"`
}

// ReceiveSMSRequest is the body of POST /receive-sms (client -> role).
// Field casing follows the provider's inbound webhook payload.
type ReceiveSMSRequest struct {
	From          string `json:"From" validate:"required"`
	Body          string `json:"Body" validate:"required"`
	RecipientRole string `json:"recipientRole" validate:"required"`
	ContactID     string `json:"contactId" validate:"required"`
	DealID        string `json:"dealId" validate:"required"`
}

// ProxySMSRequest is the body of POST /proxy-sms.
type ProxySMSRequest struct {
	PersonOne string `json:"personOne"`
	PersonTwo string `json:"personTwo" validate:"required"`
}

// RelaySuccessResponse is the 200 envelope for both relay directions.
type RelaySuccessResponse struct {
	Status           string                       `json:"status"`
	Message          string                       `json:"message"`
	ProviderResponse *smsprovider.SMSResponseData `json:"providerResponse"`
}

// ProxySessionResponse is the 200 envelope for POST /proxy-sms.
type ProxySessionResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// BindingResponse is the body of GET /bindings/{number}.
type BindingResponse struct {
	RealNumber   string `json:"real_number"`
	MaskedNumber string `json:"masked_number"`
	Role         string `json:"role"`
}

// ErrorResponse is the envelope for every failure status.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
