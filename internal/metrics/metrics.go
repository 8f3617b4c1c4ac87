package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixbrock/lpviz/internal/plot"
)

const namespace = "lpviz"

// Recorder registers its collectors on its own registry, not the global one.
type Recorder struct {
	registry        *prometheus.Registry
	solverRequests  *prometheus.CounterVec
	solverDuration  prometheus.Histogram
	projections     *prometheus.CounterVec
	rejectedSubmits prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		solverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solver_requests_total",
			Help:      "Solver exchanges by outcome.",
		}, []string{"outcome"}),
		solverDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_request_duration_seconds",
			Help:      "Duration of solver exchanges.",
			Buckets:   prometheus.DefBuckets,
		}),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "constraint_projections_total",
			Help:      "Constraint line projections by result.",
		}, []string{"result"}),
		rejectedSubmits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Submissions refused by the rate limiter.",
		}),
	}
	r.registry.MustRegister(r.solverRequests, r.solverDuration, r.projections, r.rejectedSubmits)
	return r
}

func (r *Recorder) ObserveSolve(started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "unavailable"
	}
	r.solverRequests.WithLabelValues(outcome).Inc()
	r.solverDuration.Observe(time.Since(started).Seconds())
}

func (r *Recorder) ObserveProjection(seg plot.Segment, err error) {
	switch {
	case err != nil:
		r.projections.WithLabelValues("rejected").Inc()
	case seg.Flagged():
		r.projections.WithLabelValues("flagged").Inc()
	default:
		r.projections.WithLabelValues("ok").Inc()
	}
}

func (r *Recorder) ObserveRejectedSubmission() {
	r.rejectedSubmits.Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
