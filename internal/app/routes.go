package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/felixbrock/lpviz/internal/components"
	"github.com/felixbrock/lpviz/internal/domain"
	"github.com/felixbrock/lpviz/internal/form"
	"github.com/felixbrock/lpviz/internal/presenter"
)

const (
	sessionCookie = "lpviz_session"
	maxBodyBytes  = 1 << 20
)

func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", ComponentHandler(a.index))
	mux.Handle("POST /form", ComponentHandler(a.postForm))
	mux.HandleFunc("POST /api/solve", a.apiSolve)
	mux.Handle("GET /history", ComponentHandler(a.history))
	mux.HandleFunc("GET /history.csv", a.historyCSV)
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", a.Metrics.Handler())
	mux.Handle("/", ComponentHandler(notFound))

	return mux
}

func notFound(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	return errorPage(get404(), nil)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// session returns the caller's session id, issuing a cookie on first visit.
func session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (a *App) page(sessionId string, state form.State, notice *components.Notice) templ.Component {
	data := components.PageData{Form: state, Notice: notice}
	if p, ok := a.slot.Load(sessionId); ok {
		data.Result = &p
	}
	return components.Page(data)
}

func (a *App) index(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	sessionId := session(w, r)
	return ok(a.page(sessionId, form.Initial(), nil))
}

func (a *App) postForm(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	sessionId := session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := r.ParseForm(); err != nil {
		ctx := get400("")
		return failed(ctx, err, a.page(sessionId, form.Initial(), notice(ctx)))
	}

	state, action, err := form.Decode(r.PostForm)

	if err != nil {
		ctx := get400(err.Error())
		return failed(ctx, err, a.page(sessionId, form.Initial(), notice(ctx)))
	}

	if action.Kind != form.ActionSolve {
		return ok(a.page(sessionId, state.Apply(action), nil))
	}

	req, err := state.Payload()

	if err != nil {
		ctx := get400(err.Error())
		return failed(ctx, err, a.page(sessionId, state, notice(ctx)))
	}

	if !a.limiter.Allow() {
		a.Metrics.ObserveRejectedSubmission()
		ctx := get429()
		return failed(ctx, nil, a.page(sessionId, state, notice(ctx)))
	}

	pres, err := a.submit(r.Context(), req)

	if err != nil {
		ctx := get502()
		return failed(ctx, err, a.page(sessionId, state, notice(ctx)))
	}

	a.slot.Store(sessionId, pres)
	return ok(a.page(sessionId, state, nil))
}

func notice(ctx errCtx) *components.Notice {
	return &components.Notice{Title: ctx.Title, Msg: ctx.Msg}
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		http.Error(w, get500().Msg, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}

func (a *App) apiSolve(w http.ResponseWriter, r *http.Request) {
	body, err := Read(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: get400("").Msg})
		return
	}

	req, err := ReadJSON[domain.OptimizationRequest](bytes.TrimSpace(body))

	if err != nil {
		slog.Debug(fmt.Sprintf("rejecting solve request: %s", err.Error()))
		writeJSON(w, http.StatusBadRequest, apiError{Error: fmt.Sprintf("invalid optimization request: %s", err.Error())})
		return
	}

	if !a.limiter.Allow() {
		a.Metrics.ObserveRejectedSubmission()
		writeJSON(w, http.StatusTooManyRequests, apiError{Error: get429().Msg})
		return
	}

	var pres presenter.Presentation
	pres, err = a.submit(r.Context(), *req)

	if errors.Is(err, domain.ErrSolverUnavailable) {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		writeJSON(w, http.StatusBadGateway, apiError{Error: get502().Msg})
		return
	} else if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: get500().Msg})
		return
	}

	writeJSON(w, http.StatusOK, pres)
}

func (a *App) recent(r *http.Request) ([]domain.Submission, error) {
	if a.HistoryRepo == nil {
		return nil, nil
	}
	return a.HistoryRepo.Recent(r.Context(), a.Config.HistorySize)
}

func (a *App) history(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	submissions, err := a.recent(r)

	if err != nil {
		return errorPage(get500(), err)
	}

	return ok(components.History(submissions))
}

func (a *App) historyCSV(w http.ResponseWriter, r *http.Request) {
	submissions, err := a.recent(r)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		http.Error(w, get500().Msg, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := a.ExportHistory(&buf, submissions); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		http.Error(w, get500().Msg, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}
