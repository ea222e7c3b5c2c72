package browser

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/obs"
)

func newOfflineEnv(t *testing.T, suite config.Suite) *Env {
	t.Helper()

	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnv, "")
	t.Setenv("SUITES_SEED_DSN", "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Artifacts.Dir = t.TempDir()
	cfg.Artifacts.S3 = config.S3Config{}

	env, err := newEnv(context.Background(), cfg, suite)
	require.NoError(t, err)
	t.Cleanup(env.close)
	return env
}

func TestEnv_TestContextCarriesSuite(t *testing.T) {
	env := newOfflineEnv(t, config.SuiteLocation)

	corr := obs.CorrelationFromContext(env.testContext(t))
	assert.Equal(t, env.RunID, corr.RunID)
	assert.Equal(t, "location", corr.Suite)
	assert.Equal(t, t.Name(), corr.Test)
	assert.Equal(t, env.Config.LocationBaseURL, env.BaseURL())
}

func TestEnv_SeedDatabaseWarnsWhenSkipping(t *testing.T) {
	var buf bytes.Buffer
	restore := obs.SetOutputForTests(&buf)
	defer restore()

	env := newOfflineEnv(t, config.SuiteTakeaways)

	skipped := t.Run("unseeded", func(t *testing.T) {
		env.SeedDatabase(t)
		t.Error("SeedDatabase returned without a DSN")
	})
	assert.True(t, skipped)

	out := buf.String()
	assert.Contains(t, out, `"msg":"seed_skipped"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"suite":"takeaways"`)
}
