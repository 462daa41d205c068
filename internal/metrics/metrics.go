// Package metrics provides Prometheus metrics for the showcase service.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsActive tracks open showcase sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "showcase",
			Name:      "sessions_active",
			Help:      "Number of open showcase sessions",
		},
	)

	// EventsTotal counts user events applied to sessions.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showcase",
			Name:      "events_total",
			Help:      "Total number of showcase events by type and outcome",
		},
		[]string{"event", "outcome"},
	)

	// QueryResults observes how many articles a stateless query matched.
	QueryResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "showcase",
			Name:      "query_results",
			Help:      "Distribution of matched articles per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// NewsletterSubmissions counts subscription attempts by result.
	NewsletterSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showcase",
			Name:      "newsletter_submissions_total",
			Help:      "Total number of newsletter submissions by result",
		},
		[]string{"result"},
	)
)

// RecordEvent records one session event
func RecordEvent(event string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EventsTotal.WithLabelValues(event, outcome).Inc()
}

// Handler exposes the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
