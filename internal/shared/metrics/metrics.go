package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// RunsStarted counts pipeline runs that passed the pre-flight checks.
	RunsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "demystifier",
		Subsystem: "pipeline",
		Name:      "runs_started_total",
		Help:      "Total number of analysis runs started.",
	})

	// RunsCompleted counts runs that reached the done state.
	RunsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "demystifier",
		Subsystem: "pipeline",
		Name:      "runs_completed_total",
		Help:      "Total number of analysis runs that rendered results.",
	})

	// RunsFailed counts failed runs by error code.
	RunsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demystifier",
		Subsystem: "pipeline",
		Name:      "runs_failed_total",
		Help:      "Total number of analysis runs that failed, labeled by error code.",
	}, []string{"code"})

	// RunsSuperseded counts runs whose results were dropped because a newer run started.
	RunsSuperseded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "demystifier",
		Subsystem: "pipeline",
		Name:      "runs_superseded_total",
		Help:      "Total number of analysis runs discarded in favour of a newer run.",
	})

	// StageDurationSeconds is time spent per pipeline stage.
	StageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demystifier",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each pipeline stage.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	// TranslateRequests counts translation calls by outcome.
	TranslateRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demystifier",
		Subsystem: "translate",
		Name:      "requests_total",
		Help:      "Total number of translation service calls, labeled by outcome.",
	}, []string{"outcome"})

	// LabelFallbacks counts label sets served from a static table after translation failed.
	LabelFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "demystifier",
		Subsystem: "translate",
		Name:      "label_set_fallbacks_total",
		Help:      "Total number of label sets that fell back to a static table.",
	})

	// ActiveSessions is the number of sessions currently held in memory.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "demystifier",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Number of sessions currently held in memory.",
	})
)

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsStarted,
			RunsCompleted,
			RunsFailed,
			RunsSuperseded,
			StageDurationSeconds,
			TranslateRequests,
			LabelFallbacks,
			ActiveSessions,
		)
	})
}

// ObserveStage records how long a stage took.
func ObserveStage(stage string, d time.Duration) {
	StageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// IncRunFailed records a failed run.
func IncRunFailed(code string) {
	RunsFailed.WithLabelValues(code).Inc()
}

// IncTranslate records a translation call outcome ("ok", "retry", "error").
func IncTranslate(outcome string) {
	TranslateRequests.WithLabelValues(outcome).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
