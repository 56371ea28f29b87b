package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	ProductsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "Total number of products deleted",
	})

	PurchasesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_recorded_total",
		Help: "Total number of purchases recorded",
	})

	PurchaseMutationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_mutations_failed_total",
		Help: "Total number of failed purchase mutations",
	}, []string{"reason"})

	RecomputeRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifespan_recompute_runs_total",
		Help: "Total number of product lifespan recomputations",
	})

	RecomputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lifespan_recompute_latency_seconds",
		Help:    "Latency of product lifespan recomputations",
		Buckets: prometheus.DefBuckets,
	})

	RestockAlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restock_alerts_total",
		Help: "Total number of restock alerts raised by the worker",
	}, []string{"urgency"})

	SnapshotExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_exports_total",
		Help: "Total number of snapshot exports",
	})

	SnapshotImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_imports_total",
		Help: "Total number of snapshot imports",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
