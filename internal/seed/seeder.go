package seed

import (
	"context"
	"log/slog"
	"time"

	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/obs"
)

// Result reports what one seed run wrote.
type Result struct {
	Users     int
	Takeaways int
	Duration  time.Duration
}

// Seeder applies one fixture to one store.
type Seeder struct {
	store   Store
	fixture Fixture
	hasher  PasswordHasher
	now     func() time.Time
	log     *slog.Logger
}

// Option customises a Seeder.
type Option func(*Seeder)

// WithHasher replaces the bcrypt hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *Seeder) { s.hasher = h }
}

// WithClock replaces time.Now for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// New returns a Seeder writing fixture into store.
func New(store Store, fixture Fixture, opts ...Option) *Seeder {
	s := &Seeder{
		store:   store,
		fixture: fixture,
		hasher:  BcryptHasher{},
		now:     time.Now,
		log:     obs.Pkg("seed"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig opens the configured database and loads the configured fixture.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Seeder, error) {
	fixture, err := LoadFixture(cfg.FixturesDir, cfg.Seed.Fixture)
	if err != nil {
		return nil, err
	}
	store, err := Open(ctx, cfg.Seed.Driver, cfg.Seed.DSN)
	if err != nil {
		return nil, err
	}
	return New(store, fixture, WithHasher(BcryptHasher{Cost: cfg.Seed.BcryptCost})), nil
}

// Seed resets the database to the fixture. Running it twice leaves the same
// rows as running it once.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	start := time.Now()
	plan, err := NewPlan(s.fixture, s.hasher, s.now())
	if err != nil {
		return Result{}, err
	}
	if err := s.store.Apply(ctx, plan); err != nil {
		s.log.ErrorContext(ctx, "seed_failed", "error", err)
		return Result{}, err
	}

	res := Result{
		Users:     len(plan.Users),
		Takeaways: len(plan.Takeaways),
		Duration:  time.Since(start),
	}
	s.log.DebugContext(ctx, "seed_applied",
		"users", res.Users,
		"takeaways", res.Takeaways,
		"dur_ms", float64(res.Duration.Microseconds())/1000.0,
	)
	return res, nil
}

// Close releases the store.
func (s *Seeder) Close() error {
	return s.store.Close()
}
