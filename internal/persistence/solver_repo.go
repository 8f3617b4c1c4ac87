package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/felixbrock/lpviz/internal/domain"
)

const DefaultSolverUrl = "http://127.0.0.1:5000/optimize"

var solverHeaders = []string{
	"Content-Type:application/json",
	"Accept:application/json",
}

// SolverRepo talks to the external solver. One attempt per call: no retries,
// no client timeout; cancellation comes from ctx.
type SolverRepo struct {
	Url    string
	Client *http.Client
}

func NewSolverRepo(url string) SolverRepo {
	if url == "" {
		url = DefaultSolverUrl
	}
	return SolverRepo{Url: url, Client: &http.Client{}}
}

func (r SolverRepo) Solve(ctx context.Context, optimization domain.OptimizationRequest) (*domain.OptimizationResult, error) {
	body, err := json.Marshal(optimization)

	if err != nil {
		return nil, fmt.Errorf("encode optimization request: %w", err)
	}

	result, err := request[domain.OptimizationResult](ctx, r.Client, reqConfig{
		Method:  http.MethodPost,
		Url:     r.Url,
		Headers: solverHeaders,
		Body:    body})

	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSolverUnavailable, err)
	} else if result == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSolverUnavailable, errors.New("empty solver response"))
	}

	return result, nil
}
