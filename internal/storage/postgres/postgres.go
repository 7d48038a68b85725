// Package postgres is the Postgres storage backend. Batches are written with
// the COPY protocol through a pgx v5 connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movielens/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dialect renders Postgres DDL.
var Dialect = storage.Dialect{
	Name:       "postgres",
	QuoteIdent: func(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` },
	TypeName: func(t storage.Type) string {
		switch t {
		case storage.TypeInt:
			return "BIGINT"
		case storage.TypeFloat:
			return "DOUBLE PRECISION"
		case storage.TypeTimestamp:
			return "TIMESTAMPTZ"
		default:
			return "TEXT"
		}
	},
	IfNotExists: true,
}

// pool is the part of *pgxpool.Pool the repository uses.
type pool interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Repository writes to one Postgres table.
type Repository struct {
	pool  pool
	table pgx.Identifier
}

// NewRepository opens a pool for cfg.DSN.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	p, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Repository{pool: p, table: identifier(cfg.Table)}, nil
}

// identifier splits a schema-qualified name for pgx.
func identifier(fqn string) pgx.Identifier {
	var id pgx.Identifier
	for _, p := range strings.Split(fqn, ".") {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}

// CopyFrom streams rows with COPY.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, r.table, columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy into %s: %s (%s): %w", r.table.Sanitize(), pgErr.Detail, pgErr.SQLState(), err)
		}
		return n, fmt.Errorf("postgres: copy into %s: %w", r.table.Sanitize(), err)
	}
	return n, nil
}

// Exec runs one statement.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }

// newRepository is a test hook.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := newRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDDL("postgres", storage.ExecDDL(Dialect))
}
