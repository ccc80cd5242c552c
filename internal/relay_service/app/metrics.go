package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesRelayedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "messages_relayed_total",
			Help:      "Total messages processed by the relay engine.",
		},
		[]string{"direction", "status"}, // direction: "outbound"/"inbound"; status: "success", "error_validation", "error_delivery", "error_logging"
	)

	providerRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of HTTP requests to the SMS provider.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider_name"},
	)

	crmRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "crm_request_duration_seconds",
			Help:      "Duration of CRM logging calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	activeBindingsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "relay",
			Name:      "active_bindings",
			Help:      "Number of entries in the masking registry.",
		},
	)
)
