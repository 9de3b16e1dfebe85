package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds process-wide Prometheus metrics not owned by a domain package.
type Metrics struct {
	BackgroundRuns *prometheus.CounterVec
	BuildInfo      *prometheus.GaugeVec
}

// New creates and registers process-wide metrics.
func New() *Metrics {
	return &Metrics{
		BackgroundRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caregate_background_runs_total",
			Help: "Total background loop iterations by job and outcome",
		}, []string{"job", "outcome"}),
		BuildInfo: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "caregate_build_info",
			Help: "Static build and backend information",
		}, []string{"env", "directory_backend", "blacklist_backend", "event_sink"}),
	}
}

// IncrementBackgroundRun records one iteration of a background loop.
func (m *Metrics) IncrementBackgroundRun(job string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BackgroundRuns.WithLabelValues(job, outcome).Inc()
}

// SetBuildInfo publishes which backends the process selected at startup.
func (m *Metrics) SetBuildInfo(env, directory, blacklist, sink string) {
	m.BuildInfo.WithLabelValues(env, directory, blacklist, sink).Set(1)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
