package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/relaygate/sms_relay/internal/relay_service/domain"
)

// BindingRegistry is the masking table: real client number -> current
// masked number and active role. It is the single owner of all bindings.
// Bindings live for the process lifetime; there is no TTL or eviction,
// which is sufficient while one masking session per number is supported.
type BindingRegistry struct {
	mu       sync.RWMutex
	bindings map[string]domain.MaskedBinding
	logger   *slog.Logger
}

// New creates an empty BindingRegistry.
func New(logger *slog.Logger) *BindingRegistry {
	return &BindingRegistry{
		bindings: make(map[string]domain.MaskedBinding),
		logger:   logger.With("component", "binding_registry"),
	}
}

// Upsert replaces the binding for realNumber. Last write wins and the new
// binding is visible to the next lookup immediately.
func (r *BindingRegistry) Upsert(realNumber, maskedNumber string, role domain.RoleID) error {
	if realNumber == "" || maskedNumber == "" || role == "" {
		return fmt.Errorf("%w: realNumber, maskedNumber and role are all required", domain.ErrMissingParameter)
	}

	binding := domain.MaskedBinding{
		RealNumber:   realNumber,
		MaskedNumber: maskedNumber,
		Role:         role,
	}

	r.mu.Lock()
	r.bindings[realNumber] = binding
	r.mu.Unlock()

	r.logger.Debug("binding updated", "real_number", realNumber, "masked_number", maskedNumber, "role", string(role))
	return nil
}

// LookupRole returns the role currently bound to realNumber.
func (r *BindingRegistry) LookupRole(realNumber string) (domain.RoleID, error) {
	r.mu.RLock()
	binding, ok := r.bindings[realNumber]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownSender, realNumber)
	}
	return binding.Role, nil
}

// Lookup returns the full binding for realNumber.
func (r *BindingRegistry) Lookup(realNumber string) (domain.MaskedBinding, bool) {
	r.mu.RLock()
	binding, ok := r.bindings[realNumber]
	r.mu.RUnlock()
	return binding, ok
}

// Len returns the number of active bindings.
func (r *BindingRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
