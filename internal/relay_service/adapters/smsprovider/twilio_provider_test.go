package smsprovider_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaygate/sms_relay/internal/relay_service/adapters/smsprovider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTwilioProviderSend(t *testing.T) {
	t.Run("successful submission", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

			sid, token, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "AC123", sid)
			assert.Equal(t, "secret", token)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "+15559990000", r.PostForm.Get("From"))
			assert.Equal(t, "+15550001111", r.PostForm.Get("To"))
			assert.Equal(t, "Hi", r.PostForm.Get("Body"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"sid":"SM987","status":"queued"}`))
		}))
		defer server.Close()

		provider := smsprovider.NewTwilioProvider(discardLogger(), server.URL, "AC123", "secret", "", server.Client())

		resp, err := provider.Send(context.Background(), smsprovider.SMSRequestData{
			InternalMessageID: "msg-1",
			From:              "+15559990000",
			To:                "+15550001111",
			Content:           "Hi",
		})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "SM987", resp.ProviderMessageID)
		assert.Equal(t, "queued", resp.ProviderStatus)
		assert.Equal(t, "twilio", resp.ProviderName)
	})

	t.Run("provider rejects the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' phone number","status":400}`))
		}))
		defer server.Close()

		provider := smsprovider.NewTwilioProvider(discardLogger(), server.URL, "AC123", "secret", "", server.Client())

		resp, err := provider.Send(context.Background(), smsprovider.SMSRequestData{
			InternalMessageID: "msg-2",
			From:              "+15559990000",
			To:                "bogus",
			Content:           "Hi",
		})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "failed", resp.ProviderStatus)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, resp.ErrorMessage, "21211")
	})

	t.Run("unreachable provider", func(t *testing.T) {
		provider := smsprovider.NewTwilioProvider(discardLogger(), "http://127.0.0.1:1", "AC123", "secret", "", nil)

		resp, err := provider.Send(context.Background(), smsprovider.SMSRequestData{
			InternalMessageID: "msg-3",
			From:              "+15559990000",
			To:                "+15550001111",
			Content:           "Hi",
		})
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestTwilioProviderCreateProxySession(t *testing.T) {
	var participantIdentifier string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/Services/KS123/Sessions":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"sid":"KC456"}`))
		case "/v1/Services/KS123/Sessions/KC456/Participants":
			require.NoError(t, r.ParseForm())
			participantIdentifier = r.PostForm.Get("Identifier")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"sid":"KP789"}`))
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := smsprovider.NewTwilioProvider(discardLogger(), server.URL, "AC123", "secret", "KS123", server.Client())
	provider.SetProxyBaseURL(server.URL)

	session, err := provider.CreateProxySession(context.Background(), "+15553334444")
	require.NoError(t, err)
	assert.Equal(t, "KC456", session.SessionID)
	assert.NotEmpty(t, session.UniqueName)
	assert.Equal(t, "+15553334444", participantIdentifier)
}

func TestTwilioProviderProxyRequiresServiceSID(t *testing.T) {
	provider := smsprovider.NewTwilioProvider(discardLogger(), "http://example.invalid", "AC123", "secret", "", nil)

	_, err := provider.CreateProxySession(context.Background(), "+15553334444")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
