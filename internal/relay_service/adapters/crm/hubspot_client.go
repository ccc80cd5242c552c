package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/relaygate/sms_relay/internal/relay_service/domain"
)

// HubSpotClient writes relayed message metadata into HubSpot contact and
// deal records.
type HubSpotClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiBaseURL string
	apiKey     string
}

func NewHubSpotClient(logger *slog.Logger, apiBaseURL, apiKey string, httpClient *http.Client) *HubSpotClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HubSpotClient{
		logger:     logger.With("crm", "hubspot"),
		httpClient: httpClient,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		apiKey:     apiKey,
	}
}

type propertiesEnvelope struct {
	Properties map[string]string `json:"properties"`
}

// LogEvent records one message event against a contact and, when a deal ID
// is given, appends it to the deal's running message log.
//
// A missing contact ID is a warning, not a failure: the relay must not fail
// a delivered message because the caller had no CRM record for it.
func (c *HubSpotClient) LogEvent(ctx context.Context, contactID, dealID string, event domain.MessageEvent) error {
	if contactID == "" {
		c.logger.WarnContext(ctx, "Missing CRM contact ID for message logging, skipping")
		return nil
	}

	contactProps := propertiesEnvelope{Properties: map[string]string{
		"sms_timestamp":    event.Timestamp,
		"sms_status":       string(event.Status),
		"sms_message_text": event.Message,
		"sms_sender":       event.Sender,
	}}
	contactURL := fmt.Sprintf("%s/crm/v3/objects/contacts/%s", c.apiBaseURL, contactID)
	if err := c.patch(ctx, contactURL, contactProps); err != nil {
		return fmt.Errorf("failed to update contact %s: %w", contactID, err)
	}

	if dealID == "" {
		return nil
	}

	dealURL := fmt.Sprintf("%s/crm/v3/objects/deals/%s", c.apiBaseURL, dealID)
	existingLog, err := c.fetchDealLog(ctx, dealURL)
	if err != nil {
		return fmt.Errorf("failed to read deal %s message log: %w", dealID, err)
	}

	logEntry := fmt.Sprintf("%s - %s: %s\n", event.Timestamp, event.Sender, event.Message)
	dealProps := propertiesEnvelope{Properties: map[string]string{
		"sms_timestamp__deal_":     event.Timestamp,
		"sms_status__cloned_":      string(event.Status),
		"sms_message_text__deals_": event.Message,
		"sms_sender__cloned_":      event.Sender,
		"sms_log":                  existingLog + logEntry,
	}}
	if err := c.patch(ctx, dealURL, dealProps); err != nil {
		return fmt.Errorf("failed to update deal %s: %w", dealID, err)
	}

	c.logger.InfoContext(ctx, "Message event logged to CRM", "contact_id", contactID, "deal_id", dealID, "sender", event.Sender)
	return nil
}

func (c *HubSpotClient) fetchDealLog(ctx context.Context, dealURL string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, dealURL+"?properties=sms_log", nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response (status %d): %w", httpResp.StatusCode, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", fmt.Errorf("HubSpot API error: status %d, body: %s", httpResp.StatusCode, truncate(respBody, 200))
	}

	var dealResp struct {
		Properties struct {
			SMSLog string `json:"sms_log"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(respBody, &dealResp); err != nil {
		return "", fmt.Errorf("decode deal response: %w", err)
	}
	// Property may be empty or absent for deals with no prior messages.
	return dealResp.Properties.SMSLog, nil
}

func (c *HubSpotClient) patch(ctx context.Context, endpoint string, payload propertiesEnvelope) error {
	reqBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response (status %d): %w", httpResp.StatusCode, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "HubSpot update failed", "status_code", httpResp.StatusCode, "url", endpoint)
		return fmt.Errorf("HubSpot API error: status %d, body: %s", httpResp.StatusCode, truncate(respBody, 200))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
