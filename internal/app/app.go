package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/felixbrock/lpviz/internal/domain"
	"github.com/felixbrock/lpviz/internal/plot"
	"github.com/felixbrock/lpviz/internal/presenter"
)

type SolverRepo interface {
	Solve(ctx context.Context, optimization domain.OptimizationRequest) (*domain.OptimizationResult, error)
}

type HistoryRepo interface {
	Insert(ctx context.Context, submission domain.Submission) error
	Recent(ctx context.Context, limit int) ([]domain.Submission, error)
}

type HistoryExporter func(w io.Writer, submissions []domain.Submission) error

type Metrics interface {
	presenter.ProjectionObserver
	ObserveSolve(started time.Time, err error)
	ObserveRejectedSubmission()
	Handler() http.Handler
}

type App struct {
	SolverRepo    SolverRepo
	HistoryRepo   HistoryRepo
	ExportHistory HistoryExporter
	Metrics       Metrics
	Config        Config

	presenter presenter.Presenter
	limiter   *rate.Limiter
	slot      *ResultSlot
}

func New(config Config, solver SolverRepo, history HistoryRepo, export HistoryExporter, metrics Metrics) *App {
	mode := plot.Lenient
	if config.StrictConstraints {
		mode = plot.Strict
	}

	limit := rate.Limit(config.SubmitRate)
	if config.SubmitRate <= 0 {
		limit = rate.Inf
	}

	return &App{
		SolverRepo:    solver,
		HistoryRepo:   history,
		ExportHistory: export,
		Metrics:       metrics,
		Config:        config,
		presenter:     presenter.New(plot.NewProjector(mode), metrics),
		limiter:       rate.NewLimiter(limit, config.SubmitBurst),
		slot:          NewResultSlot(0),
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info(fmt.Sprintf("App running on %s...", a.Config.Port))
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("App shutting down...")
		return server.Shutdown(shutdownCtx)
	}
}

// submit runs one solver exchange and records it. The presentation is only
// valid when err is nil.
func (a *App) submit(ctx context.Context, req domain.OptimizationRequest) (presenter.Presentation, error) {
	id := uuid.New().String()

	started := time.Now()
	result, err := a.SolverRepo.Solve(ctx, req)
	a.Metrics.ObserveSolve(started, err)

	a.record(ctx, id, started, req, result, err)

	if err != nil {
		return presenter.Presentation{}, err
	}

	pres := a.presenter.Present(*result, req.Constraints, req.ObjectiveType)
	pres.SubmissionId = id
	slog.Info(fmt.Sprintf("submission %s solved with status %q", id, result.Status))
	return pres, nil
}

func (a *App) record(ctx context.Context, id string, at time.Time, req domain.OptimizationRequest, result *domain.OptimizationResult, solveErr error) {
	if a.HistoryRepo == nil {
		return
	}

	submission := domain.Submission{
		Id:            id,
		CreatedAt:     at.UTC(),
		ObjectiveType: req.ObjectiveType,
		Request:       req,
	}
	if solveErr != nil {
		submission.Failure = solveErr.Error()
	} else {
		submission.Status = result.Status
		submission.ObjectiveValue = result.ObjectiveValue
	}

	// a cancelled request still gets its history row
	err := a.HistoryRepo.Insert(context.WithoutCancel(ctx), submission)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}
