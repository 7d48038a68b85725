// Package mysql is the MySQL storage backend. Batches are written as
// multi-row INSERT statements inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"movielens/internal/storage"

	"github.com/go-sql-driver/mysql"
)

// maxPlaceholders is the server's prepared statement parameter limit.
const maxPlaceholders = 65535

// Dialect renders MySQL DDL.
var Dialect = storage.Dialect{
	Name:       "mysql",
	QuoteIdent: func(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" },
	TypeName: func(t storage.Type) string {
		switch t {
		case storage.TypeInt:
			return "BIGINT"
		case storage.TypeFloat:
			return "DOUBLE"
		case storage.TypeTimestamp:
			return "DATETIME(6)"
		default:
			return "TEXT"
		}
	},
	IfNotExists: true,
}

// Repository writes to one MySQL table.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository validates cfg.DSN and opens the database. parseTime is
// forced on so created_at round-trips as time.Time.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: dsn: %w", err)
	}
	mc.ParseTime = true

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db, table: cfg.Table}, nil
}

// insertSQL renders one INSERT with n value tuples.
func insertSQL(table string, columns []string, n int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ",
		storage.QuoteFQN(Dialect, table),
		strings.Join(storage.QuoteIdents(Dialect, columns), ", "))
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}

// chunkRows returns how many rows fit in one statement.
func chunkRows(width int) int {
	if width <= 0 {
		return 0
	}
	return max(1, maxPlaceholders/width)
}

// CopyFrom inserts rows in chunks that respect the placeholder limit.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: row %d has %d values for %d columns", i, len(row), len(columns))
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	var total int64
	step := chunkRows(len(columns))
	for start := 0; start < len(rows); start += step {
		end := min(start+step, len(rows))
		args := make([]any, 0, (end-start)*len(columns))
		for _, row := range rows[start:end] {
			args = append(args, row...)
		}
		res, err := tx.ExecContext(ctx, insertSQL(r.table, columns, end-start), args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: rows affected: %w", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return total, nil
}

// Exec runs one statement.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *Repository) Close() { _ = r.db.Close() }

// newRepository is a test hook.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := newRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDDL("mysql", storage.ExecDDL(Dialect))
}
