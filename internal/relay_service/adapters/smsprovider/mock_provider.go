package smsprovider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a test implementation of Adapter.
type MockProvider struct {
	logger         *slog.Logger
	FailSend       bool          // Control whether Send should simulate failure
	SimulatedDelay time.Duration // To simulate network latency
	ReturnedStatus string        // Provider status token on success, defaults to "queued"
}

// NewMockProvider creates a new MockProvider.
func NewMockProvider(logger *slog.Logger) *MockProvider {
	return &MockProvider{
		logger:         logger.With("provider", "mock"),
		ReturnedStatus: "queued",
	}
}

// Send simulates submitting an SMS to a provider.
func (p *MockProvider) Send(ctx context.Context, request SMSRequestData) (*SMSResponseData, error) {
	p.logger.InfoContext(ctx, "MockProvider: Send called",
		"internal_message_id", request.InternalMessageID,
		"from", request.From,
		"to", request.To,
		"content_length", len(request.Content))

	if p.SimulatedDelay > 0 {
		time.Sleep(p.SimulatedDelay)
	}

	if p.FailSend {
		errMsg := "mock provider simulated send failure"
		p.logger.WarnContext(ctx, errMsg, "to", request.To)
		return &SMSResponseData{
			Success:        false,
			ProviderStatus: "failed",
			ErrorMessage:   errMsg,
			ProviderName:   p.GetName(),
		}, fmt.Errorf("%s", errMsg)
	}

	return &SMSResponseData{
		ProviderMessageID: "mock-" + uuid.NewString(),
		ProviderStatus:    p.ReturnedStatus,
		Success:           true,
		StatusCode:        201,
		ProviderName:      p.GetName(),
	}, nil
}

// GetName returns the name of the provider.
func (p *MockProvider) GetName() string {
	return "mock"
}
