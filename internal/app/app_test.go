package app_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/lpviz/internal/app"
	"github.com/felixbrock/lpviz/internal/domain"
	"github.com/felixbrock/lpviz/internal/form"
	"github.com/felixbrock/lpviz/internal/metrics"
	"github.com/felixbrock/lpviz/internal/persistence"
	"github.com/felixbrock/lpviz/internal/presenter"
)

const optimalResponse = `{"status": "Optimal", "objective_value": 12, "solution": {"x": 4, "y": 0}}`

type stubSolver struct {
	srv      *httptest.Server
	failing  atomic.Bool
	response atomic.Value
	calls    atomic.Int32
}

func newStubSolver(t *testing.T) *stubSolver {
	s := &stubSolver{}
	s.response.Store(optimalResponse)
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if s.failing.Load() {
			http.Error(w, "solver crashed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, s.response.Load().(string))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func testConfig() app.Config {
	return app.Config{
		Port:        "0",
		SubmitRate:  100,
		SubmitBurst: 100,
		HistorySize: 100,
		LogLevel:    "info",
	}
}

type harness struct {
	solver *stubSolver
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, config app.Config) *harness {
	solver := newStubSolver(t)
	a := app.New(
		config,
		persistence.NewSolverRepo(solver.srv.URL+"/optimize"),
		persistence.NewMemoryHistoryRepo(config.HistorySize),
		persistence.WriteCSV,
		metrics.NewRecorder(),
	)

	server := httptest.NewServer(a.Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{solver: solver, server: server, client: &http.Client{Jar: jar}}
}

func (h *harness) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := h.client.Get(h.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (h *harness) postForm(t *testing.T, values url.Values) (int, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.server.URL+"/form", values)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (h *harness) postJSON(t *testing.T, body string) (int, []byte) {
	t.Helper()
	resp, err := h.client.Post(h.server.URL+"/api/solve", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func exampleForm() form.State {
	return form.State{
		Variables: []form.VariableRow{{Name: "x", Coef: "3"}, {Name: "y", Coef: "5"}},
		Constraints: []form.ConstraintRow{
			{LHS: "x + y", Operator: "<=", RHS: "4"},
			{LHS: "x + 3y", Operator: "<=", RHS: "6"},
		},
		ObjectiveType:     domain.Maximize,
		ObjectiveFunction: "3x + 5y",
	}
}

func withAction(values url.Values, action string) url.Values {
	values.Set("action", action)
	return values
}

func TestOptimalScenario(t *testing.T) {
	h := newHarness(t, testConfig())

	code, body := h.get(t, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "No result yet.")

	code, body = h.postForm(t, withAction(exampleForm().Values(), "solve"))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Optimal solution found to maximize the objective function value.")
	assert.Contains(t, body, "Objective function value: 12.00")
	assert.Contains(t, body, "x: 4.00")
	assert.Contains(t, body, "y: 0.00")
	traces := html.UnescapeString(body)
	assert.Contains(t, traces, `"name":"Constraint 1"`)
	assert.Contains(t, traces, `"name":"Constraint 2"`)
	assert.Contains(t, traces, `"name":"Optimal solution","marker":{"color":"red","size":10}`)
	assert.Contains(t, body, `value="x + 3y"`, "the form keeps what was typed")

	_, body = h.get(t, "/")
	assert.Contains(t, body, "Objective function value: 12.00", "the session keeps its last result")

	_, body = h.get(t, "/metrics")
	assert.Contains(t, body, `lpviz_solver_requests_total{outcome="ok"} 1`)
	assert.Contains(t, body, `lpviz_constraint_projections_total{result="ok"} 2`)
}

func TestNonOptimalScenario(t *testing.T) {
	h := newHarness(t, testConfig())
	h.solver.response.Store(`{"status": "Infeasible", "objective_value": 99}`)

	_, body := h.postForm(t, withAction(exampleForm().Values(), "solve"))

	assert.Contains(t, body, "Status: Infeasible")
	assert.Contains(t, body, "No feasible solution could be found with the given parameters. Check the constraints and try again.")
	assert.NotContains(t, body, "99")
	assert.NotContains(t, body, "Optimal solution")
}

func TestSolverFailureKeepsPreviousResult(t *testing.T) {
	h := newHarness(t, testConfig())

	_, body := h.postForm(t, withAction(exampleForm().Values(), "solve"))
	require.Contains(t, body, "Objective function value: 12.00")

	h.solver.failing.Store(true)
	code, body := h.postForm(t, withAction(exampleForm().Values(), "solve"))

	assert.Equal(t, http.StatusOK, code, "notifications render with 200")
	assert.Contains(t, body, "There was an error communicating with the backend!")
	assert.Contains(t, body, "Objective function value: 12.00")

	_, csvBody := h.get(t, "/history.csv")
	records, err := csv.NewReader(strings.NewReader(csvBody)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Contains(t, records[1][5], domain.ErrSolverUnavailable.Error(), "newest first")
	assert.Equal(t, domain.StatusOptimal, records[2][3])

	_, body = h.get(t, "/metrics")
	assert.Contains(t, body, `lpviz_solver_requests_total{outcome="unavailable"} 1`)
}

func TestFormEdits(t *testing.T) {
	h := newHarness(t, testConfig())

	_, body := h.postForm(t, withAction(exampleForm().Values(), "add-variable"))
	assert.Contains(t, body, `name="variables.2.name"`)

	_, body = h.postForm(t, withAction(exampleForm().Values(), "remove-constraint:0"))
	assert.NotContains(t, body, `name="constraints.1.lhs"`)
	assert.Contains(t, body, `value="x + 3y"`)

	assert.Zero(t, h.solver.calls.Load(), "edits never reach the solver")
}

func TestFormRejectsBadInput(t *testing.T) {
	h := newHarness(t, testConfig())

	_, body := h.postForm(t, withAction(exampleForm().Values(), "explode"))
	assert.Contains(t, body, "unknown action")

	state := exampleForm()
	state.Constraints[0].LHS = `{"x": "one"}`
	_, body = h.postForm(t, withAction(state.Values(), "solve"))
	assert.Contains(t, body, "ambiguous left-hand side")

	assert.Zero(t, h.solver.calls.Load())
}

func TestFormRateLimited(t *testing.T) {
	config := testConfig()
	config.SubmitRate = 0.0001
	config.SubmitBurst = 1
	h := newHarness(t, config)

	_, body := h.postForm(t, withAction(exampleForm().Values(), "solve"))
	assert.Contains(t, body, "Objective function value: 12.00")

	_, body = h.postForm(t, withAction(exampleForm().Values(), "solve"))
	assert.Contains(t, body, "Too many submissions")
	assert.Equal(t, int32(1), h.solver.calls.Load())

	_, body = h.get(t, "/metrics")
	assert.Contains(t, body, "lpviz_submissions_rejected_total 1")
}

func TestApiSolve(t *testing.T) {
	h := newHarness(t, testConfig())

	req, err := exampleForm().Payload()
	require.NoError(t, err)
	js, err := json.Marshal(req)
	require.NoError(t, err)

	code, body := h.postJSON(t, string(js))
	require.Equal(t, http.StatusOK, code, string(body))

	var pres presenter.Presentation
	require.NoError(t, json.Unmarshal(body, &pres))
	assert.True(t, pres.Optimal)
	assert.Equal(t, "12.00", pres.ObjectiveValue)
	assert.Equal(t, []string{"x: 4.00", "y: 0.00"}, []string{pres.Variables[0].String(), pres.Variables[1].String()})
	assert.Len(t, pres.Traces, 3)
	assert.NotEmpty(t, pres.SubmissionId)

	t.Run("bad body", func(t *testing.T) {
		for _, body := range []string{"", "null", "{not json", `{"variables": 3}`} {
			code, _ := h.postJSON(t, body)
			assert.Equal(t, http.StatusBadRequest, code, body)
		}
	})

	t.Run("solver unavailable", func(t *testing.T) {
		h.solver.failing.Store(true)
		defer h.solver.failing.Store(false)

		code, body := h.postJSON(t, string(js))
		assert.Equal(t, http.StatusBadGateway, code)
		assert.JSONEq(t, `{"error": "There was an error communicating with the backend!"}`, string(body))
	})
}

func TestApiSolveRateLimited(t *testing.T) {
	config := testConfig()
	config.SubmitRate = 0.0001
	config.SubmitBurst = 1
	h := newHarness(t, config)

	code, _ := h.postJSON(t, `{"variables": [], "constraints": [], "objectiveType": "maximize", "objectiveFunction": ""}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.postJSON(t, `{"variables": [], "constraints": [], "objectiveType": "maximize", "objectiveFunction": ""}`)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestHistoryAndHealth(t *testing.T) {
	h := newHarness(t, testConfig())

	_, body := h.get(t, "/history")
	assert.Contains(t, body, "No submissions yet.")

	_, _ = h.postForm(t, withAction(exampleForm().Values(), "solve"))

	_, body = h.get(t, "/history")
	assert.Contains(t, body, "<td>Optimal</td>")
	assert.Contains(t, body, "<td>12.00</td>")

	code, body := h.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = h.get(t, "/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "Page not found")
}

type brokenHistory struct{}

func (brokenHistory) Insert(ctx context.Context, submission domain.Submission) error {
	return errors.New("history store is down")
}

func (brokenHistory) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	return nil, errors.New("history store is down")
}

func TestHistoryFailureKeepsStatus(t *testing.T) {
	solver := newStubSolver(t)
	a := app.New(testConfig(), persistence.NewSolverRepo(solver.srv.URL), brokenHistory{}, persistence.WriteCSV, metrics.NewRecorder())
	server := httptest.NewServer(a.Routes())
	t.Cleanup(server.Close)
	h := &harness{solver: solver, server: server, client: server.Client()}

	code, body := h.get(t, "/history")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body, "Internal server error")

	code, _ = h.get(t, "/history.csv")
	assert.Equal(t, http.StatusInternalServerError, code)

	code, body = h.postForm(t, withAction(exampleForm().Values(), "solve"))
	assert.Equal(t, http.StatusOK, code, "a failed history write does not fail the submission")
	assert.Contains(t, body, "Objective function value: 12.00")
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newHarness(t, testConfig())

	_, _ = h.postForm(t, withAction(exampleForm().Values(), "solve"))

	other, err := cookiejar.New(nil)
	require.NoError(t, err)
	stranger := &harness{server: h.server, client: &http.Client{Jar: other}}

	_, body := stranger.get(t, "/")
	assert.Contains(t, body, "No result yet.")
}
