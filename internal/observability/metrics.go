// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Request metrics
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RateLimitedTotal   *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	// Builder metrics
	TransactionsBuilt      prometheus.Counter
	MintAuthoritiesKept    prometheus.Counter
	MintAuthoritiesRevoked prometheus.Counter

	// Pinning metrics
	UploadsTotal     *prometheus.CounterVec
	UploadDuration   *prometheus.HistogramVec
	ImageUploadSkips prometheus.Counter

	// Verification metrics
	VerificationsTotal   *prometheus.CounterVec
	VerificationAttempts prometheus.Histogram
	PaymentsVerifiedSOL  prometheus.Counter

	// RPC metrics
	RPCCallLatency    *prometheus.HistogramVec
	RPCEndpointErrors *prometheus.CounterVec

	// Health metrics
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_forge"
	}

	return &Metrics{
		// Request metrics
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint"}),
		RateLimitedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}, []string{"endpoint"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "validation_failures_total",
			Help:      "Total number of requests rejected by input validation",
		}, []string{"endpoint"}),

		// Builder metrics
		TransactionsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "transactions_built_total",
			Help:      "Total number of token creation transactions assembled",
		}),
		MintAuthoritiesKept: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "mint_authorities_kept_total",
			Help:      "Transactions built with the mint authority retained",
		}),
		MintAuthoritiesRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "mint_authorities_revoked_total",
			Help:      "Transactions built with a trailing mint authority revocation",
		}),

		// Pinning metrics
		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "uploads_total",
			Help:      "Total number of IPFS uploads by kind and status",
		}, []string{"kind", "status"}),
		UploadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "upload_duration_seconds",
			Help:      "IPFS upload duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		ImageUploadSkips: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "image_upload_skips_total",
			Help:      "Metadata documents published without an image after an upload failure",
		}),

		// Verification metrics
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "verifications_total",
			Help:      "Total number of payment verifications by outcome",
		}, []string{"outcome"}),
		VerificationAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "polling_attempts",
			Help:      "Number of polling attempts needed per verification",
			Buckets:   []float64{1, 2, 3, 5, 8, 12, 16, 20},
		}),
		PaymentsVerifiedSOL: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "payments_verified_sol_total",
			Help:      "Cumulative verified payment volume in SOL",
		}),

		// RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCEndpointErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_endpoint_errors_total",
			Help:      "Total number of RPC failures by endpoint",
		}, []string{"endpoint"}),

		// Health metrics
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRequest records a completed request.
func RecordRequest(endpoint, status string, seconds float64) {
	DefaultMetrics.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	DefaultMetrics.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordRateLimited increments the rate-limited counter for an endpoint.
func RecordRateLimited(endpoint string) {
	DefaultMetrics.RateLimitedTotal.WithLabelValues(endpoint).Inc()
}

// RecordValidationFailure increments the validation failure counter.
func RecordValidationFailure(endpoint string) {
	DefaultMetrics.ValidationFailures.WithLabelValues(endpoint).Inc()
}

// RecordTransactionBuilt records an assembled transaction.
func RecordTransactionBuilt(mintRevoked bool) {
	DefaultMetrics.TransactionsBuilt.Inc()
	if mintRevoked {
		DefaultMetrics.MintAuthoritiesRevoked.Inc()
	} else {
		DefaultMetrics.MintAuthoritiesKept.Inc()
	}
}

// RecordUpload records an IPFS upload.
func RecordUpload(kind string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.UploadsTotal.WithLabelValues(kind, status).Inc()
	DefaultMetrics.UploadDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordVerification records a payment verification outcome.
func RecordVerification(outcome string, amountSOL float64) {
	DefaultMetrics.VerificationsTotal.WithLabelValues(outcome).Inc()
	if amountSOL > 0 {
		DefaultMetrics.PaymentsVerifiedSOL.Add(amountSOL)
	}
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordRPCEndpointError records a failed call against an endpoint.
func RecordRPCEndpointError(endpoint string) {
	DefaultMetrics.RPCEndpointErrors.WithLabelValues(endpoint).Inc()
}
