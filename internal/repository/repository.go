package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/store"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users  *UsersRepository
	Movies *MoviesRepository
	Likes  *LikesRepository

	// pool is nil when the repository is bound to a transaction.
	pool *pgxpool.Pool
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	r := bind(pool)
	r.pool = pool
	return r
}

func bind(db DBTX) *Repository {
	return &Repository{
		Users:  &UsersRepository{db: db},
		Movies: &MoviesRepository{db: db},
		Likes:  &LikesRepository{db: db},
	}
}

// InTx runs fn with repositories bound to a single read-write transaction.
// It commits when fn returns nil and rolls back otherwise. Calling InTx on a
// repository that is already transaction-bound reuses that transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(bind(tx))
	})
}

// InReadTx runs fn against one read-only snapshot so several reads agree with each other.
func (r *Repository) InReadTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, r.pool, opts, func(tx pgx.Tx) error {
		return fn(bind(tx))
	})
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.NotFoundf("%s", what)
	}
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", what, domain.ErrDuplicate)
	case pgForeignKeyViolation:
		return domain.NotFoundf("%s: referenced record", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
