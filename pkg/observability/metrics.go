package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway exchange metrics
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total number of payment gateway operations by outcome",
	}, []string{
		"gateway",      // express, express-tokenized
		"operation",    // authorize, capture, auth_capture, cancel, credit, status, ...
		"payment_type", // CC, ACH
		"outcome",      // success, decline, transport_failure
	})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "gateway_request_duration_seconds",
		Help: "Duration of payment gateway HTTP exchanges in seconds",
		// Buckets: 50ms to 30s (the overall call timeout)
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"gateway",
		"operation",
	})

	gatewayDeclinesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_declines_total",
		Help: "Total vendor declines by canonical decline reason",
	}, []string{
		"gateway",
		"reason",
	})

	gatewayTransportFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_transport_failures_total",
		Help: "Total transport failures by class",
	}, []string{
		"gateway",
		"class", // connect, client_error, server_error, generic
	})

	gatewayUnmappedCodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_unmapped_response_codes_total",
		Help: "Vendor response codes that fell back to the default decline reason",
	}, []string{
		"gateway",
		"code",
	})
)

// RecordGatewayExchange records the outcome and duration of one gateway HTTP exchange
func RecordGatewayExchange(gateway, operation, paymentType, outcome string, durationSeconds float64) {
	gatewayRequestsTotal.WithLabelValues(gateway, operation, paymentType, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(gateway, operation).Observe(durationSeconds)
}

// RecordGatewayDecline records a decline by canonical reason
func RecordGatewayDecline(gateway, reason string) {
	gatewayDeclinesTotal.WithLabelValues(gateway, reason).Inc()
}

// RecordTransportFailure records a transport failure by class
func RecordTransportFailure(gateway, class string) {
	gatewayTransportFailuresTotal.WithLabelValues(gateway, class).Inc()
}

// RecordUnmappedResponseCode records a vendor code missing from the decline table
func RecordUnmappedResponseCode(gateway, code string) {
	gatewayUnmappedCodesTotal.WithLabelValues(gateway, code).Inc()
}
