package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge

	PostsCreated  prometheus.Counter
	LikesToggled  *prometheus.CounterVec
	FollowToggled *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_connections",
				Help: "Number of in-flight HTTP requests",
			},
		),

		PostsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pixaro_posts_created_total",
				Help: "Total number of posts uploaded",
			},
		),
		LikesToggled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixaro_likes_toggled_total",
				Help: "Like toggles by resulting action",
			},
			[]string{"action"},
		),
		FollowToggled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixaro_follows_toggled_total",
				Help: "Follow toggles by resulting action",
			},
			[]string{"action"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ActiveConnections,
		m.PostsCreated,
		m.LikesToggled,
		m.FollowToggled,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Nil-safe recorders so services can run without metrics in tests.

func (m *Metrics) PostCreated() {
	if m == nil {
		return
	}
	m.PostsCreated.Inc()
}

func (m *Metrics) LikeToggled(liked bool) {
	if m == nil {
		return
	}
	m.LikesToggled.WithLabelValues(action(liked, "like", "unlike")).Inc()
}

func (m *Metrics) FollowToggledTo(following bool) {
	if m == nil {
		return
	}
	m.FollowToggled.WithLabelValues(action(following, "follow", "unfollow")).Inc()
}

func action(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
