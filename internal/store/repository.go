package store

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Repository is the typed data-access layer over the shared pool.
// Every method wraps the driver error with context; no cross-row transactions
// are used outside migrations.
type Repository struct {
	pool *pgxpool.Pool

	// Injectable clock for the freshness-window queries.
	now func() time.Time
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: time.Now}
}
