package seed

import (
	"context"
	"fmt"

	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/errs"
)

// Store applies a Plan to one database. Apply replaces every user and
// takeaway in a single transaction.
type Store interface {
	Apply(ctx context.Context, p Plan) error
	Close() error
}

// Open connects to the database named by driver and dsn.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	if dsn == "" {
		return nil, errs.New(errs.InvalidArgument, "seed: database DSN is empty")
	}
	switch driver {
	case config.DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case config.DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, errs.New(errs.InvalidArgument, fmt.Sprintf("seed: unknown driver %q", driver))
	}
}
