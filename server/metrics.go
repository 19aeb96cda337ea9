package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kydenul/lotofacil"
)

// ServiceName is the metric namespace
const ServiceName = "lotofacil"

// generationCollector exports a GenerationMetrics snapshot on every scrape
type generationCollector struct {
	metrics func() lotofacil.GenerationMetrics
	breaker func() float64

	generations   *prometheus.Desc
	games         *prometheus.Desc
	rejections    *prometheus.Desc
	activations   *prometheus.Desc
	storeErrors   *prometheus.Desc
	avgDuration   *prometheus.Desc
	breakerStatus *prometheus.Desc
}

func newGenerationCollector(metrics func() lotofacil.GenerationMetrics, breaker func() float64) *generationCollector {
	return &generationCollector{
		metrics: metrics,
		breaker: breaker,
		generations: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "generation", "requests_total"),
			"Generation requests by outcome.", []string{"outcome"}, nil),
		games: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "generation", "games_total"),
			"Games produced.", nil, nil),
		rejections: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "generation", "rejections_total"),
			"Generation requests rejected before generating, by reason.", []string{"reason"}, nil),
		activations: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "activation", "redemptions_total"),
			"Activation codes redeemed.", nil, nil),
		storeErrors: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "store", "errors_total"),
			"Store operations that failed.", nil, nil),
		avgDuration: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "generation", "average_duration_seconds"),
			"Average generation request duration.", nil, nil),
		breakerStatus: prometheus.NewDesc(
			prometheus.BuildFQName(ServiceName, "store", "circuit_breaker_state"),
			"Store circuit breaker state: 0 closed, 1 half-open, 2 open, -1 disabled.", nil, nil),
	}
}

func (g *generationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- g.generations
	ch <- g.games
	ch <- g.rejections
	ch <- g.activations
	ch <- g.storeErrors
	ch <- g.avgDuration
	if g.breaker != nil {
		ch <- g.breakerStatus
	}
}

func (g *generationCollector) Collect(ch chan<- prometheus.Metric) {
	m := g.metrics()

	ch <- prometheus.MustNewConstMetric(g.generations, prometheus.CounterValue, float64(m.SuccessfulGenerations), "success")
	ch <- prometheus.MustNewConstMetric(g.generations, prometheus.CounterValue, float64(m.FailedGenerations), "failure")
	ch <- prometheus.MustNewConstMetric(g.games, prometheus.CounterValue, float64(m.GamesProduced))
	ch <- prometheus.MustNewConstMetric(g.rejections, prometheus.CounterValue, float64(m.QuotaRejections), "quota")
	ch <- prometheus.MustNewConstMetric(g.rejections, prometheus.CounterValue, float64(m.ValidationFailures), "validation")
	ch <- prometheus.MustNewConstMetric(g.activations, prometheus.CounterValue, float64(m.Activations))
	ch <- prometheus.MustNewConstMetric(g.storeErrors, prometheus.CounterValue, float64(m.StoreErrors))
	ch <- prometheus.MustNewConstMetric(g.avgDuration, prometheus.GaugeValue, time.Duration(m.AverageGenerationTime).Seconds())
	if g.breaker != nil {
		ch <- prometheus.MustNewConstMetric(g.breakerStatus, prometheus.GaugeValue, g.breaker())
	}
}

// Metrics owns the registry served on /metrics
type Metrics struct {
	Registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the runtime, HTTP and generation collectors on a fresh registry
func NewMetrics(svc lotofacil.GameService, breaker func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prometheus.BuildFQName(ServiceName, "http", "request_duration_seconds"),
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		newGenerationCollector(svc.Metrics, breaker),
	)
	return m
}

// Middleware observes the latency of every routed request
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
