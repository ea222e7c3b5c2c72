package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/e2e-suites/internal/errs"
	"github.com/kuitang/e2e-suites/internal/seed"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("SUITES_CONFIG", "")
}

func upServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "suites dev")
}

func TestProbe_AllUp(t *testing.T) {
	isolate(t)
	t.Setenv("SUITES_CONTACT_BASE_URL", upServer(t))
	t.Setenv("SUITES_TAKEAWAYS_BASE_URL", upServer(t))
	t.Setenv("SUITES_LOCATION_BASE_URL", upServer(t))

	out, err := runCLI(t, "probe")
	require.NoError(t, err)
	assert.Contains(t, out, "contact")
	assert.Contains(t, out, "takeaways")
	assert.Contains(t, out, "location")
	assert.NotContains(t, out, "DOWN")
}

func TestProbe_DownAppExitsUnavailable(t *testing.T) {
	isolate(t)

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	t.Setenv("SUITES_CONTACT_BASE_URL", upServer(t))
	t.Setenv("SUITES_TAKEAWAYS_BASE_URL", closedURL)
	t.Setenv("SUITES_LOCATION_BASE_URL", upServer(t))

	out, err := runCLI(t, "probe")
	require.Error(t, err)
	assert.Contains(t, out, "DOWN")
	assert.Equal(t, errs.Unavailable, errs.CodeOf(err))
	assert.Equal(t, 69, errs.ExitCode(errs.CodeOf(err)))
}

func TestSeed_SQLite(t *testing.T) {
	isolate(t)
	t.Setenv("SUITES_SEED_BCRYPT_COST", "4")
	dsn := filepath.Join(t.TempDir(), "app.db")

	for range 2 {
		out, err := runCLI(t, "seed", "--driver", "sqlite", "--dsn", dsn)
		require.NoError(t, err)
		assert.Contains(t, out, "Seeded 1 user(s) and 2 takeaway(s)")
	}

	store, err := seed.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	var users, takeaways int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM "User"`).Scan(&users))
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM "Takeaway"`).Scan(&takeaways))
	assert.Equal(t, 1, users)
	assert.Equal(t, 2, takeaways)
}

func TestSeed_RequiresDSN(t *testing.T) {
	isolate(t)
	t.Setenv("SUITES_SEED_DSN", "")

	_, err := runCLI(t, "seed")
	require.Error(t, err)
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
	assert.Equal(t, 2, errs.ExitCode(errs.CodeOf(err)))
}

func TestSeed_UnknownDriver(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "seed", "--driver", "mysql", "--dsn", "x")
	require.Error(t, err)
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestBadLogLevel(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "probe", "--log-level", "chatty")
	require.Error(t, err)
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}
