package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaygate/sms_relay/internal/relay_service/domain"
)

func TestTranslateProviderStatus(t *testing.T) {
	tests := []struct {
		token string
		want  domain.DeliveryLabel
	}{
		{"queued", domain.DeliveryLabelPending},
		{"sent", domain.DeliveryLabelDelivered},
		{"failed", domain.DeliveryLabelFailed},
		{"accepted", domain.DeliveryLabelPending},
		{"undelivered", domain.DeliveryLabelPending},
		{"", domain.DeliveryLabelPending},
	}

	for _, tc := range tests {
		t.Run("token_"+tc.token, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.TranslateProviderStatus(tc.token))
		})
	}
}
