package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/felixbrock/lpviz/internal/app"
	"github.com/felixbrock/lpviz/internal/metrics"
	"github.com/felixbrock/lpviz/internal/persistence"
)

func main() {
	config, err := app.LoadConfig()

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	historyRepo, err := persistence.OpenHistoryRepo(ctx, config.HistoryDriver, config.HistoryDsn, config.HistorySize)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if closer, ok := historyRepo.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
			}
		}
	}()

	a := app.New(
		config,
		persistence.NewSolverRepo(config.SolverUrl),
		historyRepo,
		persistence.WriteCSV,
		metrics.NewRecorder(),
	)

	if err := a.Start(ctx); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}
}
