package store

import (
	"context"

	"go-wellfound-scraper/internal/domain"
)

// Store persists job records keyed by id. Update is an atomic
// read-modify-write of a single record: fn sees the current record and its
// changes are written only when it returns nil.
type Store interface {
	Create(ctx context.Context, job domain.Job) error
	Update(ctx context.Context, id string, fn func(*domain.Job) error) (domain.Job, error)
	Get(ctx context.Context, id string) (domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	Close() error
}
