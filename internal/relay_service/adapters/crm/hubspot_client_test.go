package crm_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaygate/sms_relay/internal/relay_service/adapters/crm"
	"github.com/relaygate/sms_relay/internal/relay_service/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() domain.MessageEvent {
	return domain.MessageEvent{
		Timestamp: "2024-01-03 09:05:07",
		Status:    domain.DeliveryLabelPending,
		Message:   "Hi",
		Sender:    "project_manager",
	}
}

type recordedRequest struct {
	method string
	path   string
	auth   string
	props  map[string]string
}

func TestLogEvent(t *testing.T) {
	t.Run("contact update only when no deal given", func(t *testing.T) {
		var requests []recordedRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recordedRequest{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
			if r.Method == http.MethodPatch {
				var body struct {
					Properties map[string]string `json:"properties"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				rec.props = body.Properties
			}
			requests = append(requests, rec)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := crm.NewHubSpotClient(discardLogger(), server.URL, "hs-key", server.Client())

		err := client.LogEvent(context.Background(), "contact-1", "", testEvent())
		require.NoError(t, err)

		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPatch, requests[0].method)
		assert.Equal(t, "/crm/v3/objects/contacts/contact-1", requests[0].path)
		assert.Equal(t, "Bearer hs-key", requests[0].auth)
		assert.Equal(t, map[string]string{
			"sms_timestamp":    "2024-01-03 09:05:07",
			"sms_status":       "Pending",
			"sms_message_text": "Hi",
			"sms_sender":       "project_manager",
		}, requests[0].props)
	})

	t.Run("deal log is appended, not overwritten", func(t *testing.T) {
		var dealProps map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case r.Method == http.MethodPatch && r.URL.Path == "/crm/v3/objects/contacts/contact-1":
				_, _ = w.Write([]byte(`{}`))
			case r.Method == http.MethodGet && r.URL.Path == "/crm/v3/objects/deals/deal-1":
				assert.Equal(t, "sms_log", r.URL.Query().Get("properties"))
				_, _ = w.Write([]byte(`{"properties":{"sms_log":"2024-01-02 10:00:00 - client: Earlier\n"}}`))
			case r.Method == http.MethodPatch && r.URL.Path == "/crm/v3/objects/deals/deal-1":
				var body struct {
					Properties map[string]string `json:"properties"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				dealProps = body.Properties
				_, _ = w.Write([]byte(`{}`))
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		client := crm.NewHubSpotClient(discardLogger(), server.URL, "hs-key", server.Client())

		err := client.LogEvent(context.Background(), "contact-1", "deal-1", testEvent())
		require.NoError(t, err)

		require.NotNil(t, dealProps)
		assert.Equal(t, "2024-01-02 10:00:00 - client: Earlier\n2024-01-03 09:05:07 - project_manager: Hi\n", dealProps["sms_log"])
		assert.Equal(t, "2024-01-03 09:05:07", dealProps["sms_timestamp__deal_"])
		assert.Equal(t, "Pending", dealProps["sms_status__cloned_"])
		assert.Equal(t, "Hi", dealProps["sms_message_text__deals_"])
		assert.Equal(t, "project_manager", dealProps["sms_sender__cloned_"])
	})

	t.Run("empty prior deal log", func(t *testing.T) {
		var dealProps map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case r.Method == http.MethodGet:
				_, _ = w.Write([]byte(`{"properties":{}}`))
			case r.Method == http.MethodPatch && r.URL.Path == "/crm/v3/objects/deals/deal-1":
				var body struct {
					Properties map[string]string `json:"properties"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				dealProps = body.Properties
				_, _ = w.Write([]byte(`{}`))
			default:
				_, _ = w.Write([]byte(`{}`))
			}
		}))
		defer server.Close()

		client := crm.NewHubSpotClient(discardLogger(), server.URL, "hs-key", server.Client())

		require.NoError(t, client.LogEvent(context.Background(), "contact-1", "deal-1", testEvent()))
		assert.Equal(t, "2024-01-03 09:05:07 - project_manager: Hi\n", dealProps["sms_log"])
	})

	t.Run("missing contact ID is a no-op", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made without a contact ID")
		}))
		defer server.Close()

		client := crm.NewHubSpotClient(discardLogger(), server.URL, "hs-key", server.Client())

		assert.NoError(t, client.LogEvent(context.Background(), "", "deal-1", testEvent()))
	})

	t.Run("API error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
		}))
		defer server.Close()

		client := crm.NewHubSpotClient(discardLogger(), server.URL, "bad-key", server.Client())

		err := client.LogEvent(context.Background(), "contact-1", "", testEvent())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}
