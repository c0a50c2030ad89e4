package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/cftracker/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sqliteParams are appended to every DSN passed to Open.
const sqliteParams = "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"

type DB struct {
	*sql.DB
	log *logger.Logger
}

// Open opens the SQLite database at path and brings its schema up to date.
// Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")
	log.Info("opening database: %s", path)

	sqlDB, err := sql.Open("sqlite3", withParams(path))
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// from splitting across connections.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB, log: log}
	n, err := db.migrate(context.Background())
	if err != nil {
		log.Error("schema migration failed: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready (%d migrations applied now)", n)
	return db, nil
}

func withParams(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqliteParams
	}
	return path + "?" + sqliteParams
}

// Applied lists the migration versions recorded in the database, oldest
// first.
func (db *DB) Applied(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// migrate runs every embedded migration not yet recorded, each in its own
// transaction, and returns how many ran.
func (db *DB) migrate(ctx context.Context) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := db.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("read applied migrations: %w", err)
	}

	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return 0, err
	}
	slices.Sort(files)

	count := 0
	for _, file := range files {
		version := strings.TrimPrefix(file, "migrations/")
		if slices.Contains(done, version) {
			db.log.Debug("migration %s already applied", version)
			continue
		}
		script, err := migrationsFS.ReadFile(file)
		if err != nil {
			return count, err
		}

		db.log.Info("applying migration: %s", version)
		err = db.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("apply migration %s: %w", version, err)
		}
		count++
	}
	return count, nil
}

func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		db.log.Debug("transaction rolled back: %v", err)
		return err
	}
	return tx.Commit()
}
