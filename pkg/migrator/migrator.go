// Package migrator applies embedded goose migrations. Each bounded context
// keeps its own version table so contexts can be migrated independently.
package migrator

import (
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type options struct {
	table string
}

// Option customises a migration run.
type Option func(*options)

// WithVersionTable sets the goose version table, e.g. "goose_contract_version".
func WithVersionTable(name string) Option {
	return func(o *options) { o.table = name }
}

// RunMigrations runs all pending goose migrations from the embedded FS against dbURL.
func RunMigrations(dbURL string, files fs.FS, opts ...Option) error {
	o := options{table: goose.DefaultTablename}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(files)
	goose.SetTableName(o.table)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to up migrations: %w", err)
	}
	return nil
}
