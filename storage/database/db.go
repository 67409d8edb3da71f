package database

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"net/url"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps *sqlx.DB to satisfy core.DB, narrowing transactions to the
// core.DBTransactor interface.
type DB struct {
	*sqlx.DB
}

var _ core.DB = (*DB)(nil)

func (db *DB) BeginTx(ctx context.Context) (core.DBTransactor, error) {
	return db.DB.BeginTxx(ctx, nil)
}

func Open(conf *core.Config) (*DB, error) {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	db, err := sqlx.Open(conf.Database.Engine, u.String())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return &DB{DB: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies the embedded migration files in name order. Each file runs
// in its own transaction and is recorded in schema_migrations so re-running
// is a no-op.
func Migrate(db *DB) error {
	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
	); err != nil {
		return errors.Wrap(err, "creating schema_migrations")
	}

	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "listing migrations")
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		err = db.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied)
		if err != nil {
			return errors.Wrapf(err, "checking migration %s", name)
		}
		if applied {
			continue
		}

		script, err := migrationsFS.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "reading migration %s", name)
		}
		tx, err := db.Beginx()
		if err != nil {
			return errors.Wrapf(err, "beginning migration %s", name)
		}
		if _, err = tx.Exec(string(script)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "applying migration %s", name)
		}
		if _, err = tx.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "recording migration %s", name)
		}
		if err = tx.Commit(); err != nil {
			return errors.Wrapf(err, "committing migration %s", name)
		}
	}
	return nil
}

// getExec picks the transaction threaded by the caller, falling back to the
// plain connection.
func getExec(db core.DBExecutor, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return db
}

// trapNoRowsErr maps database/sql's sentinel to the given domain error.
func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}
