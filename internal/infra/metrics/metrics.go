package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Inbound updates by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	updatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_updates_rate_limited_total",
			Help: "Inbound updates silently dropped by the rate limiter",
		},
	)

	leadTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_status_transitions_total",
			Help: "Lead status changes by target status",
		},
		[]string{"status"},
	)

	remindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trial_reminders_total",
			Help: "Trial reminders by kind and result",
		},
		[]string{"which", "result"},
	)

	broadcastMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Broadcast deliveries by result",
		},
		[]string{"result"},
	)

	storageRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_retries_total",
			Help: "Retried spreadsheet calls by operation",
		},
		[]string{"op"},
	)

	paymentsReviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_reviewed_total",
			Help: "Payment proofs reviewed by admins",
		},
		[]string{"status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordUpdate(kind, outcome string) {
	updatesProcessed.WithLabelValues(kind, outcome).Inc()
}

func RecordDropped() {
	updatesDropped.Inc()
}

func RecordTransition(status string) {
	leadTransitions.WithLabelValues(status).Inc()
}

func RecordReminder(which, result string) {
	remindersSent.WithLabelValues(which, result).Inc()
}

func RecordBroadcast(result string) {
	broadcastMessages.WithLabelValues(result).Inc()
}

func RecordStorageRetry(op string) {
	storageRetries.WithLabelValues(op).Inc()
}

func RecordPaymentReview(status string) {
	paymentsReviewed.WithLabelValues(status).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
