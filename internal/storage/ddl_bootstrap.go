package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper creates table t through repo if it does not exist yet.
type DDLBootstrapper func(ctx context.Context, repo Repository, t TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL installs (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates t with the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, t TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, t)
}

// ExecDDL returns a bootstrapper that renders t in d and runs it with
// repo.Exec. It suits any dialect with CREATE TABLE IF NOT EXISTS.
func ExecDDL(d Dialect) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, t TableDef) error {
		stmt, err := CreateTableSQL(d, t)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s ddl: create %s: %w", d.Name, t.FQN, err)
		}
		return nil
	}
}
