// Package metrics provides Prometheus metrics for the cell store: query
// planning outcomes, physical read counts, decompaction volume and plan
// cache activity.
//
// All metrics register themselves on the default registry via promauto,
// so exposing them only requires mounting promhttp.Handler().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesPlanned counts resolved query plans.
	// Labels: tableset (basename), outcome (direct/uncompact/relaxed/rejected)
	QueriesPlanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "h3cellstore_queries_planned_total",
			Help: "Total number of query plans resolved",
		},
		[]string{"tableset", "outcome"},
	)

	// ReadsExecuted counts physical table reads.
	// Labels: tableset, kind (base/compacted)
	ReadsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "h3cellstore_reads_executed_total",
			Help: "Total number of physical table reads",
		},
		[]string{"tableset", "kind"},
	)

	// RowsReturned counts rows delivered to callers after merging.
	RowsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "h3cellstore_rows_returned_total",
			Help: "Total number of rows returned to callers",
		},
		[]string{"tableset"},
	)

	// RowsUncompacted counts rows produced by client-side decompaction,
	// a measure of the broadcast overhead of compacted reads.
	RowsUncompacted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "h3cellstore_rows_uncompacted_total",
			Help: "Total number of rows produced by decompaction",
		},
		[]string{"tableset"},
	)

	// DecompactionFanout tracks the per-plan resolution distance between
	// the read table and the requested resolution.
	DecompactionFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "h3cellstore_decompaction_fanout_steps",
			Help:    "Resolution steps bridged by decompaction per plan",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
	)

	// QueryDuration tracks the end-to-end duration of cell queries.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "h3cellstore_query_duration_seconds",
			Help: "End-to-end cell query duration in seconds",
			Buckets: []float64{
				0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60,
			},
		},
		[]string{"tableset"},
	)

	// CacheOperations counts plan cache reads and writes.
	// Labels: operation (read/write), status (ok/error)
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "h3cellstore_plan_cache_operations_total",
			Help: "Total number of plan cache operations",
		},
		[]string{"operation", "status"},
	)
)

// ObserveSince records the elapsed time on a histogram observer.
func ObserveSince(observer prometheus.Observer, start time.Time) {
	observer.Observe(time.Since(start).Seconds())
}
