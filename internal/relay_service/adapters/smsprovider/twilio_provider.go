package smsprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TwilioProvider sends messages through Twilio's Messages REST API and can
// create Proxy sessions. The account SID / auth token pair is chosen by the
// caller (live or test credentials) at construction time.
type TwilioProvider struct {
	logger       *slog.Logger
	httpClient   *http.Client
	apiBaseURL   string
	proxyBaseURL string
	accountSID   string
	authToken    string
	proxySvcSID  string
}

func NewTwilioProvider(logger *slog.Logger, apiBaseURL, accountSID, authToken, proxyServiceSID string, httpClient *http.Client) *TwilioProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TwilioProvider{
		logger:       logger.With("provider", "twilio"),
		httpClient:   httpClient,
		apiBaseURL:   strings.TrimRight(apiBaseURL, "/"),
		proxyBaseURL: "https://proxy.twilio.com",
		accountSID:   accountSID,
		authToken:    authToken,
		proxySvcSID:  proxyServiceSID,
	}
}

// twilioMessageResponse is the subset of Twilio's message resource we use.
type twilioMessageResponse struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// twilioErrorResponse is Twilio's error body for non-2xx responses.
type twilioErrorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	MoreInfo string `json:"more_info"`
}

func (p *TwilioProvider) Send(ctx context.Context, request SMSRequestData) (*SMSResponseData, error) {
	p.logger.InfoContext(ctx, "TwilioProvider: Send called",
		"to", request.To, "internal_message_id", request.InternalMessageID)

	form := url.Values{}
	form.Set("From", request.From)
	form.Set("To", request.To)
	form.Set("Body", request.Content)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.apiBaseURL, p.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request for Twilio: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(p.accountSID, p.authToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to send request to Twilio", "error", err, "internal_message_id", request.InternalMessageID)
		return nil, fmt.Errorf("failed to send request to Twilio: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Twilio response body (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		var msgResp twilioMessageResponse
		if err := json.Unmarshal(respBody, &msgResp); err != nil {
			p.logger.WarnContext(ctx, "Sent via Twilio but failed to parse response body",
				"status_code", httpResp.StatusCode, "error", err, "internal_message_id", request.InternalMessageID)
			return &SMSResponseData{
				Success:        true,
				ProviderStatus: "queued",
				StatusCode:     httpResp.StatusCode,
				ProviderName:   p.GetName(),
			}, nil
		}

		p.logger.InfoContext(ctx, "SMS submitted to Twilio",
			"provider_message_id", msgResp.Sid, "provider_status", msgResp.Status, "internal_message_id", request.InternalMessageID)
		return &SMSResponseData{
			ProviderMessageID: msgResp.Sid,
			ProviderStatus:    msgResp.Status,
			Success:           true,
			StatusCode:        httpResp.StatusCode,
			ProviderName:      p.GetName(),
		}, nil
	}

	errMsg := fmt.Sprintf("Twilio API error: status %d", httpResp.StatusCode)
	var errResp twilioErrorResponse
	if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
		errMsg = fmt.Sprintf("Twilio API error: status %d, code %d, message: %s", httpResp.StatusCode, errResp.Code, errResp.Message)
	}

	p.logger.WarnContext(ctx, "Twilio send failed",
		"status_code", httpResp.StatusCode, "error_message", errMsg, "internal_message_id", request.InternalMessageID)
	return &SMSResponseData{
		Success:        false,
		ProviderStatus: "failed",
		StatusCode:     httpResp.StatusCode,
		ErrorMessage:   errMsg,
		ProviderName:   p.GetName(),
	}, fmt.Errorf("%s", errMsg)
}

// CreateProxySession creates a Twilio Proxy session and registers the given
// participant, delegating number masking to the provider.
func (p *TwilioProvider) CreateProxySession(ctx context.Context, participant string) (*ProxySessionData, error) {
	if p.proxySvcSID == "" {
		return nil, fmt.Errorf("twilio proxy service SID not configured")
	}

	uniqueName := "session-" + uuid.NewString()
	sessionForm := url.Values{}
	sessionForm.Set("UniqueName", uniqueName)

	sessionURL := fmt.Sprintf("%s/v1/Services/%s/Sessions", p.proxyBaseURL, p.proxySvcSID)
	var sessionResp struct {
		Sid string `json:"sid"`
	}
	if err := p.postForm(ctx, sessionURL, sessionForm, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to create proxy session: %w", err)
	}

	participantForm := url.Values{}
	participantForm.Set("Identifier", participant)
	participantURL := fmt.Sprintf("%s/v1/Services/%s/Sessions/%s/Participants", p.proxyBaseURL, p.proxySvcSID, sessionResp.Sid)
	if err := p.postForm(ctx, participantURL, participantForm, nil); err != nil {
		return nil, fmt.Errorf("failed to add proxy participant: %w", err)
	}

	p.logger.InfoContext(ctx, "Proxy session created", "session_id", sessionResp.Sid, "unique_name", uniqueName)
	return &ProxySessionData{SessionID: sessionResp.Sid, UniqueName: uniqueName}, nil
}

func (p *TwilioProvider) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(p.accountSID, p.authToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response (status %d): %w", httpResp.StatusCode, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var errResp twilioErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Message != "" {
			return fmt.Errorf("twilio API error: status %d, message: %s", httpResp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("twilio API error: status %d", httpResp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SetProxyBaseURL overrides the Proxy API host, used by tests.
func (p *TwilioProvider) SetProxyBaseURL(baseURL string) {
	p.proxyBaseURL = strings.TrimRight(baseURL, "/")
}

func (p *TwilioProvider) GetName() string {
	return "twilio"
}
