package domain

// DeliveryLabel is the CRM-facing delivery status vocabulary.
type DeliveryLabel string

const (
	DeliveryLabelPending   DeliveryLabel = "Pending"
	DeliveryLabelDelivered DeliveryLabel = "Delivered"
	DeliveryLabelFailed    DeliveryLabel = "Failed"
)

// providerStatusLabels maps the provider's status tokens to CRM labels.
var providerStatusLabels = map[string]DeliveryLabel{
	"queued": DeliveryLabelPending,
	"sent":   DeliveryLabelDelivered,
	"failed": DeliveryLabelFailed,
}

// TranslateProviderStatus maps a provider delivery-status token to the CRM
// vocabulary. Unrecognized tokens default to Pending.
func TranslateProviderStatus(token string) DeliveryLabel {
	if label, ok := providerStatusLabels[token]; ok {
		return label
	}
	return DeliveryLabelPending
}
