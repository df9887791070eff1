// Package metrics provides Prometheus metrics for the price sniper
// backend. Scrape these at /metrics for Grafana dashboards and
// alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Sampling Metrics
	SamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_samples_total",
			Help: "Price sample jobs by result",
		},
		[]string{"result"}, // "success", "extraction_failed", "persist_failed", "timeout"
	)

	SampleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sniper_sample_duration_seconds",
			Help:    "Time taken to sample one product",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sniper_sweep_duration_seconds",
			Help:    "Time taken to sample every tracked product once",
			Buckets: []float64{1, 5, 15, 60, 300, 900},
		},
	)

	ProductsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_products_tracked",
			Help: "Number of products currently tracked",
		},
	)

	RefreshQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_refresh_queue_size",
			Help: "Number of products waiting in the urgent refresh queue",
		},
	)

	// Alert Metrics
	AlertsFiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_alerts_fired_total",
			Help: "Total alerts transitioned from active to triggered",
		},
	)

	AlertRacesLostTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_alert_races_lost_total",
			Help: "Alert evaluations that lost the trigger race (expected no-ops)",
		},
	)

	// Notification Metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_notifications_total",
			Help: "Notification delivery attempts by result",
		},
		[]string{"result"}, // "delivered", "failed"
	)

	OutboxPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_outbox_pending",
			Help: "Triggered alerts still awaiting confirmed delivery",
		},
	)
)
