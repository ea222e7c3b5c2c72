// Package takeaways holds the auth/data suite: signup, login and logout,
// the newsletter form and the takeaways list. Every test starts from a
// freshly seeded database.
//
// Prerequisites:
// - Install Playwright browsers: go run github.com/kuitang/e2e-suites/cmd/suites install
// - Start the app (default http://localhost:3000, override with SUITES_TAKEAWAYS_BASE_URL)
// - Point seeding at the app database: SUITES_SEED_DSN=/path/to/app.db
// - Run tests with: go test -v ./tests/browser/takeaways/...
package takeaways

import (
	"os"
	"testing"

	"github.com/kuitang/e2e-suites/internal/browser"
	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/seed"
)

func TestMain(m *testing.M) {
	code := m.Run()
	browser.Cleanup()
	os.Exit(code)
}

// newSeededDriver seeds the database, then opens a driver on the app.
func newSeededDriver(t *testing.T) (*browser.Driver, seed.Result) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := browser.SetupEnv(t, config.SuiteTakeaways)
	baseURL := env.BaseURL()
	env.RequireApp(t, baseURL)
	seeded := env.SeedDatabase(t)
	return env.NewDriver(t, baseURL), seeded
}
