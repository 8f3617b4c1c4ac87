package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the pure go "sqlite" driver

	"github.com/felixbrock/lpviz/internal/app"
	"github.com/felixbrock/lpviz/internal/domain"
)

var (
	_ app.HistoryRepo = (*SqlHistoryRepo)(nil)
	_ app.HistoryRepo = (*MemoryHistoryRepo)(nil)
)

const (
	DriverMemory = "memory"
	DriverSqlite = "sqlite"
	DriverPgx    = "pgx"
)

// OpenHistoryRepo picks the backend named by driver. An empty driver keeps
// history in memory.
func OpenHistoryRepo(ctx context.Context, driver, dsn string, size int) (app.HistoryRepo, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryHistoryRepo(size), nil
	case DriverSqlite, DriverPgx:
		return NewSqlHistoryRepo(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
}

type MemoryHistoryRepo struct {
	mu      sync.Mutex
	records []domain.Submission
	size    int
}

func NewMemoryHistoryRepo(size int) *MemoryHistoryRepo {
	if size <= 0 {
		size = 100
	}
	return &MemoryHistoryRepo{size: size}
}

func (r *MemoryHistoryRepo) Insert(_ context.Context, submission domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, submission)
	if len(r.records) > r.size {
		r.records = append([]domain.Submission(nil), r.records[len(r.records)-r.size:]...)
	}
	return nil
}

func (r *MemoryHistoryRepo) Recent(_ context.Context, limit int) ([]domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]domain.Submission, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *MemoryHistoryRepo) Close() error { return nil }

// SqlHistoryRepo stores submissions in SQLite or Postgres through database/sql.
type SqlHistoryRepo struct {
	DB     *sql.DB
	driver string
}

func NewSqlHistoryRepo(ctx context.Context, driver, dsn string) (*SqlHistoryRepo, error) {
	if dsn == "" {
		switch driver {
		case DriverSqlite:
			dsn = "lpviz.db"
		case DriverPgx:
			dsn = "postgres://localhost/lpviz?sslmode=disable"
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSqlite {
		// a single connection keeps ":memory:" databases shared across calls
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	r := &SqlHistoryRepo{DB: db, driver: driver}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SqlHistoryRepo) migrate(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		objective_type TEXT NOT NULL,
		request_json TEXT NOT NULL,
		status TEXT NOT NULL,
		objective_value DOUBLE PRECISION,
		failure TEXT NOT NULL
	)`
	if _, err := r.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create submissions table: %w", err)
	}
	return nil
}

func (r *SqlHistoryRepo) Insert(ctx context.Context, submission domain.Submission) error {
	js, err := json.Marshal(submission.Request)
	if err != nil {
		return fmt.Errorf("encode submission request: %w", err)
	}

	var objective sql.NullFloat64
	if submission.ObjectiveValue != nil {
		objective = sql.NullFloat64{Float64: *submission.ObjectiveValue, Valid: true}
	}

	q := r.bind(`INSERT INTO submissions (id, created_at, objective_type, request_json, status, objective_value, failure)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.DB.ExecContext(ctx, q,
		submission.Id,
		submission.CreatedAt.UTC().UnixMilli(),
		string(submission.ObjectiveType),
		string(js),
		submission.Status,
		objective,
		submission.Failure,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SqlHistoryRepo) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = 100
	}

	q := r.bind(`SELECT id, created_at, objective_type, request_json, status, objective_value, failure
	FROM submissions ORDER BY created_at DESC, id DESC LIMIT ?`)
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Submission
	for rows.Next() {
		var (
			s         domain.Submission
			createdAt int64
			objType   string
			js        string
			objective sql.NullFloat64
		)
		if err := rows.Scan(&s.Id, &createdAt, &objType, &js, &s.Status, &objective, &s.Failure); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal([]byte(js), &s.Request); err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", s.Id, err)
		}
		s.CreatedAt = time.UnixMilli(createdAt).UTC()
		s.ObjectiveType = domain.ObjectiveType(objType)
		if objective.Valid {
			v := objective.Float64
			s.ObjectiveValue = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SqlHistoryRepo) Close() error {
	return r.DB.Close()
}

// bind rewrites '?' placeholders to the $n form Postgres expects.
func (r *SqlHistoryRepo) bind(q string) string {
	if r.driver != DriverPgx {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
