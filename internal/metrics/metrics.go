// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clouddome"

// Status label values.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

var ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "scanner",
	Name:      "scans_total",
	Help:      "Count of finished scans by outcome",
}, []string{"status"})

var ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "scanner",
	Name:      "scan_duration_seconds",
	Help:      "Wall-clock duration of finished scans",
	Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
}, []string{"status"})

var ServiceEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "scanner",
	Name:      "service_evaluations_total",
	Help:      "Count of per-service evaluations by service and outcome",
}, []string{"service", "status"})

var ServiceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "scanner",
	Name:      "service_duration_seconds",
	Help:      "Duration of per-service collection and evaluation",
	Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
}, []string{"service"})

var StoredScans = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "scans",
	Help:      "Number of scan results currently held in the result store",
})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Count of served HTTP requests",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "Duration of served HTTP requests",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})
