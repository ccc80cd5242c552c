package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/relaygate/sms_relay/internal/relay_service/app"
	"github.com/relaygate/sms_relay/internal/relay_service/domain"
	"github.com/relaygate/sms_relay/internal/relay_service/registry"
)

// RelayHandler exposes the relay flows over HTTP.
type RelayHandler struct {
	relay    *app.RelayService
	registry *registry.BindingRegistry
	logger   *slog.Logger
	validate *validator.Validate
}

func NewRelayHandler(relay *app.RelayService, reg *registry.BindingRegistry, logger *slog.Logger, validate *validator.Validate) *RelayHandler {
	return &RelayHandler{
		relay:    relay,
		registry: reg,
		logger:   logger.With("handler", "relay"),
		validate: validate,
	}
}

// RegisterRoutes registers relay routes with the given router.
func (h *RelayHandler) RegisterRoutes(r chi.Router) {
	r.Post("/send-sms", h.handleSendSMS)
	r.Post("/receive-sms", h.handleReceiveSMS)
	r.Post("/proxy-sms", h.handleProxySMS)
	r.Get("/bindings/{number}", h.handleGetBinding)
}

func (h *RelayHandler) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode send-sms request", "error", err)
		h.respondError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "send-sms request failed validation", "error", err)
		h.respondError(w, http.StatusBadRequest, "Missing required parameters (message, sender_role)", "")
		return
	}

	providerResp, err := h.relay.SendToClient(ctx, app.SendToClientInput{
		Message:    req.Message,
		SenderRole: domain.RoleID(req.SenderRole),
		ContactID:  req.ContactID,
		DealID:     req.DealID,
	})
	if err != nil {
		logger.ErrorContext(ctx, "send-sms failed", "error", err, "sender_role", req.SenderRole)
		h.respondRelayError(w, err, "Failed to send SMS")
		return
	}

	h.respondJSON(w, http.StatusOK, RelaySuccessResponse{
		Status:           "success",
		Message:          "SMS sent successfully",
		ProviderResponse: providerResp,
	})
}

func (h *RelayHandler) handleReceiveSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req ReceiveSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode receive-sms request", "error", err)
		h.respondError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "receive-sms request failed validation", "error", err)
		h.respondError(w, http.StatusBadRequest, "Missing required parameters (From, Body, recipientRole, contactId, dealId)", "")
		return
	}

	providerResp, err := h.relay.ForwardFromClient(ctx, app.ForwardFromClientInput{
		From:          req.From,
		Body:          req.Body,
		RecipientRole: domain.RoleID(req.RecipientRole),
		ContactID:     req.ContactID,
		DealID:        req.DealID,
	})
	if err != nil {
		logger.ErrorContext(ctx, "receive-sms failed", "error", err, "from", req.From)
		h.respondRelayError(w, err, "Failed to process incoming SMS")
		return
	}

	h.respondJSON(w, http.StatusOK, RelaySuccessResponse{
		Status:           "success",
		Message:          "Message received and forwarded successfully",
		ProviderResponse: providerResp,
	})
}

func (h *RelayHandler) handleProxySMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req ProxySMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode proxy-sms request", "error", err)
		h.respondError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "proxy-sms request failed validation", "error", err)
		h.respondError(w, http.StatusBadRequest, "Missing required parameters (personTwo)", "")
		return
	}

	session, err := h.relay.CreateProxySession(ctx, req.PersonOne, req.PersonTwo)
	if err != nil {
		logger.ErrorContext(ctx, "proxy-sms failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create proxy session", err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, ProxySessionResponse{
		Message:   "Proxy session created successfully",
		SessionID: session.SessionID,
	})
}

func (h *RelayHandler) handleGetBinding(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	binding, ok := h.registry.Lookup(number)
	if !ok {
		h.respondError(w, http.StatusNotFound, "No binding for number", "")
		return
	}

	h.respondJSON(w, http.StatusOK, BindingResponse{
		RealNumber:   binding.RealNumber,
		MaskedNumber: binding.MaskedNumber,
		Role:         string(binding.Role),
	})
}

// respondRelayError maps the relay error taxonomy to HTTP statuses.
func (h *RelayHandler) respondRelayError(w http.ResponseWriter, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, domain.ErrMissingParameter):
		h.respondError(w, http.StatusBadRequest, "Missing required parameters", err.Error())
	case errors.Is(err, domain.ErrInvalidRole):
		h.respondError(w, http.StatusBadRequest, "Invalid sender role", err.Error())
	case errors.Is(err, domain.ErrUnknownSender):
		h.respondError(w, http.StatusNotFound, "Client number not found in mapping. Unable to determine role.", err.Error())
	case errors.Is(err, domain.ErrRoleNotFound):
		h.respondError(w, http.StatusNotFound, "No recipient found for the specified role.", err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallbackMessage, err.Error())
	}
}

func (h *RelayHandler) respondError(w http.ResponseWriter, statusCode int, message, errDetail string) {
	h.respondJSON(w, statusCode, ErrorResponse{
		Status:  "error",
		Message: message,
		Error:   errDetail,
	})
}

func (h *RelayHandler) respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
