// Package metrics defines the custom Prometheus metrics of the service CRM.
// It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aquaflow/servicecrm/internal/core/account"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
)

const namespace = "servicecrm"

// ── Maintenance metrics ───────────────────────────────────────────────────────

// AlertsByPriority holds the size of the latest alert report.
// Label:
//   - priority: "overdue", "urgent" or "upcoming"
var AlertsByPriority = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "maintenance_alerts",
		Help:      "Assets currently needing maintenance, by alert priority.",
	},
	[]string{"priority"},
)

// ObserveAlerts publishes a freshly computed report. Priorities absent from
// the report are reset to zero.
func ObserveAlerts(r maintenance.Report) {
	for _, p := range []maintenance.Priority{
		maintenance.PriorityOverdue,
		maintenance.PriorityUrgent,
		maintenance.PriorityUpcoming,
	} {
		AlertsByPriority.WithLabelValues(string(p)).Set(float64(r.ByPriority[p]))
	}
}

// CustomerRecomputesTotal counts finished customer recomputes.
// Label:
//   - needs_maintenance: "true" when the customer owns an overdue or urgent asset
var CustomerRecomputesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "customer_recomputes_total",
		Help:      "Total number of customer summaries recomputed, by whether an asset needs maintenance.",
	},
	[]string{"needs_maintenance"},
)

// ObserveSummary publishes a recomputed customer summary. Global scans carry
// no summary and are ignored.
func ObserveSummary(s *account.Summary) {
	if s == nil {
		return
	}
	needs := "false"
	if s.AssetsNeedingMaintenance > 0 {
		needs = "true"
	}
	CustomerRecomputesTotal.WithLabelValues(needs).Inc()
}

// ── Service order metrics ─────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created service orders.
// Label:
//   - service_type: e.g. "maintenance", "filter_change"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_orders_created_total",
		Help:      "Total number of service orders created, by service type.",
	},
	[]string{"service_type"},
)

// OrdersCompletedTotal counts orders moved to completed.
var OrdersCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_orders_completed_total",
		Help:      "Total number of service orders completed, by service type.",
	},
	[]string{"service_type"},
)

// ── Recompute metrics ─────────────────────────────────────────────────────────

// RecomputeDuration measures a single recompute job.
// Label:
//   - scope: "customer" or "global"
//   - result: "ok" or "error"
var RecomputeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recompute_duration_seconds",
		Help:      "Duration of recompute jobs from dequeue to finished aggregation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"scope", "result"},
)

// RecomputeQueueDepth tracks the jobs waiting in each dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var RecomputeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "recompute_queue_depth",
		Help:      "Current number of recompute jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// RecomputeDroppedTotal counts signals discarded because a worker was full.
var RecomputeDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recompute_dropped_total",
		Help:      "Total number of recompute signals dropped on a full worker channel.",
	},
)
