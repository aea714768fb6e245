// Package metrics defines the Prometheus instruments for the chat ledger.
// Everything registers on the default registry and is served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsRecorded counts chat messages committed to the ledger.
	TransactionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitchat_transactions_recorded_total",
		Help: "Total number of transactions (messages) recorded",
	})

	// ExpensesAttached counts transactions that gained expense details.
	ExpensesAttached = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitchat_expenses_attached_total",
		Help: "Total number of expenses attached to transactions",
	})

	// ClaimsRejected counts expense claims discarded before any write,
	// partitioned by reason.
	ClaimsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitchat_claims_rejected_total",
		Help: "Total number of expense claims rejected during validation",
	}, []string{"reason"})

	// ExtractionFailures counts webhook calls that errored or timed out.
	ExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitchat_extraction_failures_total",
		Help: "Total number of failed extraction webhook calls",
	})

	// EventsPublished counts real-time events fanned out to subscribers.
	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitchat_events_published_total",
		Help: "Total number of real-time events published",
	})

	// SubscribersDropped counts websocket subscribers removed after a
	// failed delivery.
	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitchat_subscribers_dropped_total",
		Help: "Total number of websocket subscribers dropped on send failure",
	})
)
