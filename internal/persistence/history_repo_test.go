package persistence

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/lpviz/internal/domain"
)

func submission(i int, at time.Time) domain.Submission {
	v := float64(i) + 0.5
	return domain.Submission{
		Id:             fmt.Sprintf("sub-%02d", i),
		CreatedAt:      at.Add(time.Duration(i) * time.Second).UTC(),
		ObjectiveType:  domain.Maximize,
		Request:        sampleRequest(),
		Status:         domain.StatusOptimal,
		ObjectiveValue: &v,
	}
}

func TestMemoryHistoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepo(3)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, submission(i, at)))
	}

	got, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3, "ring keeps only the newest entries")
	assert.Equal(t, []string{"sub-04", "sub-03", "sub-02"}, ids(got))

	got, err = repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-04", "sub-03"}, ids(got))
}

func TestSqliteHistoryRepo(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSqlHistoryRepo(ctx, DriverSqlite, ":memory:")
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, submission(i, at)))
	}

	failed := domain.Submission{
		Id:            "sub-failed",
		CreatedAt:     at.Add(time.Hour),
		ObjectiveType: domain.Minimize,
		Request:       sampleRequest(),
		Failure:       "solver unavailable",
	}
	require.NoError(t, repo.Insert(ctx, failed))

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"sub-failed", "sub-02", "sub-01", "sub-00"}, ids(got))

	assert.Nil(t, got[0].ObjectiveValue)
	assert.Equal(t, "solver unavailable", got[0].Failure)
	assert.Equal(t, domain.Minimize, got[0].ObjectiveType)

	require.NotNil(t, got[1].ObjectiveValue)
	assert.Equal(t, 2.5, *got[1].ObjectiveValue)
	assert.True(t, at.Add(2*time.Second).Equal(got[1].CreatedAt))
	assert.Equal(t, sampleRequest(), got[1].Request)

	t.Run("duplicate id", func(t *testing.T) {
		assert.Error(t, repo.Insert(ctx, submission(0, at)))
	})

	t.Run("limit", func(t *testing.T) {
		got, err := repo.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"sub-failed"}, ids(got))
	})
}

func TestOpenHistoryRepo(t *testing.T) {
	ctx := context.Background()

	repo, err := OpenHistoryRepo(ctx, "", "", 10)
	require.NoError(t, err)
	assert.IsType(t, &MemoryHistoryRepo{}, repo)

	repo, err = OpenHistoryRepo(ctx, DriverSqlite, ":memory:", 10)
	require.NoError(t, err)
	assert.IsType(t, &SqlHistoryRepo{}, repo)
	assert.NoError(t, repo.(*SqlHistoryRepo).Close())

	_, err = OpenHistoryRepo(ctx, "mongo", "", 10)
	assert.ErrorContains(t, err, "unknown history driver")
}

func TestBind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"

	assert.Equal(t, q, (&SqlHistoryRepo{driver: DriverSqlite}).bind(q))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", (&SqlHistoryRepo{driver: DriverPgx}).bind(q))
}

func TestWriteCSV(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	failed := domain.Submission{Id: "sub-x", CreatedAt: at, ObjectiveType: domain.Minimize, Failure: "boom, again"}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.Submission{submission(1, at), failed}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "created_at", "objective_type", "status", "objective_value", "failure"},
		{"sub-01", "2024-05-01T12:00:01Z", "maximize", "Optimal", "1.5", ""},
		{"sub-x", "2024-05-01T12:00:00Z", "minimize", "", "", "boom, again"},
	}, records)
}

func ids(submissions []domain.Submission) []string {
	out := make([]string, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, s.Id)
	}
	return out
}
