package seed

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/kuitang/e2e-suites/internal/errs"
)

// SQLiteDriverName is the SQLite driver registered with per-connection pragmas.
const SQLiteDriverName = "sqlite3_e2e_seed"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// The app may hold the file open while a suite seeds it.
			if _, err := conn.Exec("PRAGMA busy_timeout = 5000", nil); err != nil {
				return fmt.Errorf("set busy_timeout: %w", err)
			}
			return nil
		},
	})
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS "User" (
		"id" TEXT NOT NULL PRIMARY KEY,
		"email" TEXT NOT NULL,
		"password" TEXT NOT NULL,
		"createdAt" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS "User_email_key" ON "User"("email")`,
	`CREATE TABLE IF NOT EXISTS "Takeaway" (
		"id" TEXT NOT NULL PRIMARY KEY,
		"title" TEXT NOT NULL,
		"body" TEXT NOT NULL,
		"createdAt" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// SQLiteStore seeds a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens dsn (a path or file: URI) and checks it is reachable.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "seed: open sqlite", err)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.Unavailable, "seed: ping sqlite", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Apply implements Store.
func (s *SQLiteStore) Apply(ctx context.Context, p Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.Internal, "seed: begin sqlite transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range sqliteSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errs.Wrap(errs.Internal, "seed: create schema", err)
		}
	}
	for _, table := range []string{`"Takeaway"`, `"User"`} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errs.Wrap(errs.Internal, fmt.Sprintf("seed: clear %s", table), err)
		}
	}
	for _, u := range p.Users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO "User" ("id", "email", "password", "createdAt") VALUES (?, ?, ?, ?)`,
			u.ID, u.Email, u.PasswordHash, u.CreatedAt,
		)
		if err != nil {
			return errs.Wrap(errs.Internal, fmt.Sprintf("seed: insert user %s", u.Email), err)
		}
	}
	for _, tk := range p.Takeaways {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO "Takeaway" ("id", "title", "body", "createdAt") VALUES (?, ?, ?, ?)`,
			tk.ID, tk.Title, tk.Body, tk.CreatedAt,
		)
		if err != nil {
			return errs.Wrap(errs.Internal, fmt.Sprintf("seed: insert takeaway %q", tk.Title), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.Internal, "seed: commit sqlite transaction", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
