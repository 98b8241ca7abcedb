// Package metrics exposes Prometheus counters for ingestion and queries
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's collectors on a private registry
type Registry struct {
	reg              *prometheus.Registry
	Ingests          *prometheus.CounterVec
	RowsUpserted     prometheus.Counter
	RowsFailed       prometheus.Counter
	BatchFailures    prometheus.Counter
	AuditFailures    prometheus.Counter
	IngestDuration   prometheus.Histogram
	AnalyticsQueries *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	ingests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandsales_ingests_total",
		Help: "Ingestion requests by outcome status.",
	}, []string{"status"})
	upserted := prometheus.NewCounter(prometheus.CounterOpts{Name: "brandsales_rows_upserted_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "brandsales_rows_failed_total"})
	batchFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "brandsales_batch_failures_total"})
	auditFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "brandsales_audit_failures_total"})
	ingestDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "brandsales_ingest_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brandsales_analytics_queries_total",
		Help: "Analytics queries by result.",
	}, []string{"result"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brandsales_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	r.MustRegister(ingests, upserted, failed, batchFailures, auditFailures, ingestDuration, queries, requestDuration)
	return &Registry{
		reg:              r,
		Ingests:          ingests,
		RowsUpserted:     upserted,
		RowsFailed:       failed,
		BatchFailures:    batchFailures,
		AuditFailures:    auditFailures,
		IngestDuration:   ingestDuration,
		AnalyticsQueries: queries,
		RequestDuration:  requestDuration,
	}
}

// Gatherer exposes the underlying registry for tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
