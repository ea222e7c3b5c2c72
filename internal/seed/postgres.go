package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kuitang/e2e-suites/internal/errs"
)

// Database is the part of a pgx pool the Postgres store needs.
// *pgxpool.Pool and pgxmock pools both satisfy it.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS "User" (
		"id" TEXT NOT NULL PRIMARY KEY,
		"email" TEXT NOT NULL UNIQUE,
		"password" TEXT NOT NULL,
		"createdAt" TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS "Takeaway" (
		"id" TEXT NOT NULL PRIMARY KEY,
		"title" TEXT NOT NULL,
		"body" TEXT NOT NULL,
		"createdAt" TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

const (
	postgresInsertUser     = `INSERT INTO "User" ("id", "email", "password", "createdAt") VALUES ($1, $2, $3, $4)`
	postgresInsertTakeaway = `INSERT INTO "Takeaway" ("id", "title", "body", "createdAt") VALUES ($1, $2, $3, $4)`
)

// PostgresStore seeds a Postgres database.
type PostgresStore struct {
	db Database
}

// OpenPostgres connects a pgx pool to dsn and pings it.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "seed: parse postgres dsn", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.Wrap(errs.Unavailable, "seed: ping postgres", err)
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// Apply implements Store.
func (s *PostgresStore) Apply(ctx context.Context, p Plan) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errs.Wrap(errs.Internal, "seed: begin postgres transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, stmt := range postgresSchema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return errs.Wrap(errs.Internal, "seed: create schema", err)
		}
	}
	if _, err := tx.Exec(ctx, `TRUNCATE TABLE "Takeaway", "User"`); err != nil {
		return errs.Wrap(errs.Internal, "seed: truncate tables", err)
	}
	for _, u := range p.Users {
		if _, err := tx.Exec(ctx, postgresInsertUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
			return errs.Wrap(errs.Internal, fmt.Sprintf("seed: insert user %s", u.Email), err)
		}
	}
	for _, tk := range p.Takeaways {
		if _, err := tx.Exec(ctx, postgresInsertTakeaway, tk.ID, tk.Title, tk.Body, tk.CreatedAt); err != nil {
			return errs.Wrap(errs.Internal, fmt.Sprintf("seed: insert takeaway %q", tk.Title), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(errs.Internal, "seed: commit postgres transaction", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
