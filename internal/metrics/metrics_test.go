package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/lpviz/internal/plot"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveSolve(time.Now(), nil)
	r.ObserveSolve(time.Now(), errors.New("down"))
	r.ObserveSolve(time.Now(), errors.New("down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.solverRequests.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.solverRequests.WithLabelValues("unavailable")))

	r.ObserveProjection(plot.Segment{}, nil)
	r.ObserveProjection(plot.Segment{Issues: []plot.ConstraintParseError{{Reason: "x"}}}, nil)
	r.ObserveProjection(plot.Segment{}, errors.New("bad"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.projections.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.projections.WithLabelValues("flagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.projections.WithLabelValues("rejected")))

	r.ObserveRejectedSubmission()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejectedSubmits))
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveSolve(time.Now(), nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lpviz_solver_requests_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), "lpviz_solver_request_duration_seconds_count 1")
}
