package smsprovider

import "context"

// SMSRequestData holds the data for sending one SMS via a provider.
type SMSRequestData struct {
	InternalMessageID string // Our relay's message ID, for log correlation
	From              string // Masked number the message is sent from
	To                string // Resolved destination number
	Content           string
}

// SMSResponseData holds the outcome of a send attempt. It is also the
// providerResponse payload echoed in HTTP success bodies, so field names
// are part of the API surface.
type SMSResponseData struct {
	ProviderMessageID string `json:"provider_message_id"`
	ProviderStatus    string `json:"provider_status"` // Raw provider token, e.g. "queued"
	Success           bool   `json:"success"`
	StatusCode        int    `json:"status_code"`
	ErrorMessage      string `json:"error_message,omitempty"`
	ProviderName      string `json:"provider_name"`
}

// ProxySessionData describes a provider-managed anonymizing proxy session.
type ProxySessionData struct {
	SessionID  string `json:"session_id"`
	UniqueName string `json:"unique_name"`
}

// Adapter defines the interface for an SMS provider adapter.
type Adapter interface {
	Send(ctx context.Context, request SMSRequestData) (*SMSResponseData, error)
	GetName() string
}

// ProxySessionCreator is implemented by adapters whose provider offers a
// managed number-masking proxy, as an alternative to the relay's own table.
type ProxySessionCreator interface {
	CreateProxySession(ctx context.Context, participant string) (*ProxySessionData, error)
}
