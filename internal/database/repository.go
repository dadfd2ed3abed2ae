package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_jobs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	record       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
)`

// Repository is the PostgreSQL job store. Each job is one row holding the
// full record as JSONB; status and timestamps are duplicated into columns for listing.
type Repository struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Repository)(nil)

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, &domain.StoreError{Op: "connect", Err: fmt.Errorf("unable to parse database url: %w", err)}
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// transaction-mode poolers do not support prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, &domain.StoreError{Op: "connect", Err: fmt.Errorf("unable to connect to database: %w", err)}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &domain.StoreError{Op: "connect", Err: fmt.Errorf("database unreachable: %w", err)}
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, &domain.StoreError{Op: "migrate", Err: err}
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, job domain.Job) error {
	record, err := json.Marshal(job)
	if err != nil {
		return &domain.StoreError{Op: "encode", Err: err}
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO scrape_jobs (id, status, record, created_at, completed_at) VALUES ($1, $2, $3, $4, $5)`,
		job.ID, string(job.Status), string(record), job.CreatedAt, job.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &domain.StoreError{Op: "create", Err: fmt.Errorf("job %s already exists", job.ID)}
		}
		return &domain.StoreError{Op: "create", Err: err}
	}
	return nil
}

// Update locks the row for the duration of fn so concurrent writers serialize per job.
func (r *Repository) Update(ctx context.Context, id string, fn func(*domain.Job) error) (domain.Job, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Job{}, &domain.StoreError{Op: "update", Err: err}
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT record FROM scrape_jobs WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, domain.ErrNotFound
		}
		return domain.Job{}, &domain.StoreError{Op: "update", Err: err}
	}

	job, err := decode(raw)
	if err != nil {
		return domain.Job{}, err
	}
	if err := fn(&job); err != nil {
		return domain.Job{}, err
	}

	record, err := json.Marshal(job)
	if err != nil {
		return domain.Job{}, &domain.StoreError{Op: "encode", Err: err}
	}
	_, err = tx.Exec(ctx,
		`UPDATE scrape_jobs SET status = $2, record = $3, completed_at = $4 WHERE id = $1`,
		id, string(job.Status), string(record), job.CompletedAt)
	if err != nil {
		return domain.Job{}, &domain.StoreError{Op: "update", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Job{}, &domain.StoreError{Op: "commit", Err: err}
	}
	return job, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Job, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT record FROM scrape_jobs WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, domain.ErrNotFound
		}
		return domain.Job{}, &domain.StoreError{Op: "get", Err: err}
	}
	return decode(raw)
}

func (r *Repository) List(ctx context.Context) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT record FROM scrape_jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, &domain.StoreError{Op: "list", Err: err}
		}
		job, err := decode(raw)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	return jobs, nil
}

func decode(raw []byte) (domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return domain.Job{}, &domain.StoreError{Op: "decode", Err: fmt.Errorf("%w: %v", domain.ErrCorrupt, err)}
	}
	return job, nil
}
