// Package metrics defines and registers all custom Prometheus metrics for the
// helpdesk portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpdesk"

// ── Session & directory metrics ───────────────────────────────────────────────

// AuthOperationsTotal counts session and directory operations.
// Labels:
//   - operation: "login", "register", "logout", "create_user", "update_user",
//     "delete_user", "reset_password"
//   - result: "ok" or a short failure reason (e.g. "invalid_credentials", "forbidden")
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of session and directory operations, by outcome.",
	},
	[]string{"operation", "result"},
)

// SessionsOpen tracks the number of sessions holding a notification ledger.
var SessionsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_open",
		Help:      "Current number of authenticated sessions with an open notification ledger.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsAddedTotal counts notifications added to any ledger.
// Labels:
//   - category: "ticket", "chat", "system", "user"
//   - type: "info", "success", "warning", "error"
var NotificationsAddedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_added_total",
		Help:      "Total number of notifications added to session ledgers.",
	},
	[]string{"category", "type"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivitiesProcessedTotal counts activities that completed processing successfully.
// Label:
//   - type: the activity type (e.g. "ticket_created")
var ActivitiesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activities_processed_total",
		Help:      "Total number of activities successfully processed.",
	},
	[]string{"type"},
)

// ActivitiesErrorsTotal counts activities that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "insert_failed", "ticket_lookup_failed")
var ActivitiesErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activities_errors_total",
		Help:      "Total number of activities that failed processing.",
	},
	[]string{"reason"},
)

// ActivitiesDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new activity, processed)
var ActivitiesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activities_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ActivitiesQueueDepth tracks the current number of activities waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivitiesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activities_queue_depth",
		Help:      "Current number of activities pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityProcessingDuration measures how long a single activity takes to process end-to-end.
// Label:
//   - type: the activity type, or "error" on failure
var ActivityProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_processing_duration_seconds",
		Help:      "Duration of activity processing from dequeue to notification fan-out.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── Ticket metrics ────────────────────────────────────────────────────────────

// TicketsCreatedTotal counts newly opened tickets.
// Label:
//   - priority: "low", "medium", "high", or "critical"
var TicketsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created, by priority.",
	},
	[]string{"priority"},
)

// TicketStatusChangesTotal counts applied status transitions.
// Label:
//   - status: the new ticket status
var TicketStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_status_changes_total",
		Help:      "Total number of ticket status transitions, by resulting status.",
	},
	[]string{"status"},
)
