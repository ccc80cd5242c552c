package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relaygate/sms_relay/internal/relay_service/adapters/smsprovider"
	"github.com/relaygate/sms_relay/internal/relay_service/domain"
	"github.com/relaygate/sms_relay/internal/relay_service/registry"
)

// EventLogger records a message event against CRM contact and deal records.
type EventLogger interface {
	LogEvent(ctx context.Context, contactID, dealID string, event domain.MessageEvent) error
}

// SendToClientInput is the outbound (role -> client) relay request.
type SendToClientInput struct {
	Message    string
	SenderRole domain.RoleID
	ContactID  string
	DealID     string
}

// ForwardFromClientInput is the inbound (client -> role) relay request.
type ForwardFromClientInput struct {
	From          string
	Body          string
	RecipientRole domain.RoleID
	ContactID     string
	DealID        string
}

// RelayService orchestrates both relay directions: it keeps the masking
// registry fresh, invokes message delivery through the provider adapter and
// records every exchange in the CRM. It holds no binding state of its own;
// the registry is the single owner.
type RelayService struct {
	registry        *registry.BindingRegistry
	roleDirectory   *domain.RoleDirectory
	provider        smsprovider.Adapter
	crmLogger       EventLogger
	clientPhone     string
	maskedNumber    string
	providerTimeout time.Duration
	crmTimeout      time.Duration
	logger          *slog.Logger
}

func NewRelayService(
	reg *registry.BindingRegistry,
	roleDirectory *domain.RoleDirectory,
	provider smsprovider.Adapter,
	crmLogger EventLogger,
	clientPhone string,
	maskedNumber string,
	providerTimeout time.Duration,
	crmTimeout time.Duration,
	logger *slog.Logger,
) *RelayService {
	if providerTimeout <= 0 {
		providerTimeout = 10 * time.Second
	}
	if crmTimeout <= 0 {
		crmTimeout = 15 * time.Second
	}
	return &RelayService{
		registry:        reg,
		roleDirectory:   roleDirectory,
		provider:        provider,
		crmLogger:       crmLogger,
		clientPhone:     clientPhone,
		maskedNumber:    maskedNumber,
		providerTimeout: providerTimeout,
		crmTimeout:      crmTimeout,
		logger:          logger.With("service", "relay_app"),
	}
}

// SendToClient relays a message from an internal role to the client through
// the masked number. Delivery failures abort before any CRM write; a CRM
// failure after a successful send is surfaced without rolling the send back.
func (s *RelayService) SendToClient(ctx context.Context, input SendToClientInput) (*smsprovider.SMSResponseData, error) {
	if input.Message == "" || input.SenderRole == "" {
		messagesRelayedCounter.WithLabelValues("outbound", "error_validation").Inc()
		return nil, fmt.Errorf("%w: message and sender_role are required", domain.ErrMissingParameter)
	}

	if !s.roleDirectory.Contains(input.SenderRole) {
		messagesRelayedCounter.WithLabelValues("outbound", "error_validation").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRole, input.SenderRole)
	}

	if err := s.registry.Upsert(s.clientPhone, s.maskedNumber, input.SenderRole); err != nil {
		messagesRelayedCounter.WithLabelValues("outbound", "error_validation").Inc()
		return nil, err
	}
	activeBindingsGauge.Set(float64(s.registry.Len()))

	messageID := uuid.NewString()
	s.logger.InfoContext(ctx, "Relaying message to client",
		"message_id", messageID, "sender_role", string(input.SenderRole), "to", s.clientPhone)

	providerResp, err := s.deliver(ctx, smsprovider.SMSRequestData{
		InternalMessageID: messageID,
		From:              s.maskedNumber,
		To:                s.clientPhone,
		Content:           input.Message,
	})
	if err != nil {
		messagesRelayedCounter.WithLabelValues("outbound", "error_delivery").Inc()
		s.logger.ErrorContext(ctx, "Delivery to client failed", "error", err, "message_id", messageID)
		return nil, fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	event := domain.MessageEvent{
		Timestamp: domain.FormatTimestamp(time.Now()),
		Status:    domain.TranslateProviderStatus(providerResp.ProviderStatus),
		Message:   input.Message,
		Sender:    string(input.SenderRole),
	}
	if err := s.logToCRM(ctx, input.ContactID, input.DealID, event); err != nil {
		messagesRelayedCounter.WithLabelValues("outbound", "error_logging").Inc()
		s.logger.ErrorContext(ctx, "CRM logging failed after delivery", "error", err, "message_id", messageID)
		// The message is already sent; no compensating action exists.
		return providerResp, fmt.Errorf("%w: %v", domain.ErrLoggingFailed, err)
	}

	messagesRelayedCounter.WithLabelValues("outbound", "success").Inc()
	return providerResp, nil
}

// ForwardFromClient routes an inbound client message to the role the sending
// number is currently bound to.
//
// The registry is re-bound with the recipient role BEFORE the sender lookup.
// The two steps look redundant in the single-client topology but the order
// is observable when they diverge; it must not be swapped.
func (s *RelayService) ForwardFromClient(ctx context.Context, input ForwardFromClientInput) (*smsprovider.SMSResponseData, error) {
	if input.From == "" || input.Body == "" || input.RecipientRole == "" || input.ContactID == "" || input.DealID == "" {
		messagesRelayedCounter.WithLabelValues("inbound", "error_validation").Inc()
		return nil, fmt.Errorf("%w: From, Body, recipientRole, contactId and dealId are required", domain.ErrMissingParameter)
	}

	if err := s.registry.Upsert(s.clientPhone, s.maskedNumber, input.RecipientRole); err != nil {
		messagesRelayedCounter.WithLabelValues("inbound", "error_validation").Inc()
		return nil, err
	}
	activeBindingsGauge.Set(float64(s.registry.Len()))

	boundRole, err := s.registry.LookupRole(input.From)
	if err != nil {
		messagesRelayedCounter.WithLabelValues("inbound", "error_validation").Inc()
		s.logger.WarnContext(ctx, "Inbound message from unbound number", "from", input.From)
		return nil, err
	}

	destination, err := s.roleDirectory.ResolveNumber(boundRole)
	if err != nil {
		messagesRelayedCounter.WithLabelValues("inbound", "error_validation").Inc()
		s.logger.WarnContext(ctx, "Bound role has no directory number", "role", string(boundRole))
		return nil, err
	}

	messageID := uuid.NewString()
	s.logger.InfoContext(ctx, "Forwarding client message",
		"message_id", messageID, "from", input.From, "role", string(boundRole), "to", destination)

	providerResp, err := s.deliver(ctx, smsprovider.SMSRequestData{
		InternalMessageID: messageID,
		From:              s.maskedNumber,
		To:                destination,
		Content:           input.Body,
	})
	if err != nil {
		messagesRelayedCounter.WithLabelValues("inbound", "error_delivery").Inc()
		s.logger.ErrorContext(ctx, "Forwarding failed", "error", err, "message_id", messageID)
		return nil, fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	// Inbound events are logged as Delivered regardless of the provider's
	// own status token: a successful forward is treated as delivery, the
	// provider's asynchronous status callback is not consulted.
	event := domain.MessageEvent{
		Timestamp: domain.FormatTimestamp(time.Now()),
		Status:    domain.DeliveryLabelDelivered,
		Message:   input.Body,
		Sender:    "client",
	}
	if err := s.logToCRM(ctx, input.ContactID, input.DealID, event); err != nil {
		messagesRelayedCounter.WithLabelValues("inbound", "error_logging").Inc()
		s.logger.ErrorContext(ctx, "CRM logging failed after forwarding", "error", err, "message_id", messageID)
		return providerResp, fmt.Errorf("%w: %v", domain.ErrLoggingFailed, err)
	}

	messagesRelayedCounter.WithLabelValues("inbound", "success").Inc()
	return providerResp, nil
}

// CreateProxySession delegates masking to the provider's proxy API when the
// adapter supports it.
func (s *RelayService) CreateProxySession(ctx context.Context, personOne, personTwo string) (*smsprovider.ProxySessionData, error) {
	creator, ok := s.provider.(smsprovider.ProxySessionCreator)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support proxy sessions", s.provider.GetName())
	}
	if personTwo == "" {
		return nil, fmt.Errorf("%w: personTwo is required", domain.ErrMissingParameter)
	}

	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	// Only the second participant is registered; personOne reaches the
	// session through the provider-assigned number.
	_ = personOne
	return creator.CreateProxySession(ctx, personTwo)
}

func (s *RelayService) deliver(ctx context.Context, request smsprovider.SMSRequestData) (*smsprovider.SMSResponseData, error) {
	providerCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	timer := prometheus.NewTimer(providerRequestDurationHist.WithLabelValues(s.provider.GetName()))
	defer timer.ObserveDuration()

	return s.provider.Send(providerCtx, request)
}

func (s *RelayService) logToCRM(ctx context.Context, contactID, dealID string, event domain.MessageEvent) error {
	crmCtx, cancel := context.WithTimeout(ctx, s.crmTimeout)
	defer cancel()

	timer := prometheus.NewTimer(crmRequestDurationHist.WithLabelValues("log_event"))
	defer timer.ObserveDuration()

	return s.crmLogger.LogEvent(crmCtx, contactID, dealID, event)
}
