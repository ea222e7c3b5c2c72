// Package browser is the Playwright harness shared by the suites under
// tests/browser. Each suite package calls SetupEnv(t, suite) per test and
// Cleanup from TestMain.
package browser

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/e2e-suites/internal/artifacts"
	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/obs"
	"github.com/kuitang/e2e-suites/internal/seed"
)

// ConfigPathEnv names a config file to load instead of suites.yaml. Suite
// packages run from their own directory, so this is usually set.
const ConfigPathEnv = "SUITES_CONFIG"

var (
	envMu     sync.Mutex
	sharedEnv *Env
)

// Env is the state shared by every test in one suite package.
type Env struct {
	Config *config.Config
	Suite  config.Suite
	RunID  string

	pw        *playwright.Playwright
	browser   playwright.Browser
	browserMu sync.Mutex

	seedMu sync.Mutex
	seeder *seed.Seeder

	probeMu sync.Mutex
	probed  map[string]error

	artifacts artifacts.Store
	log       *slog.Logger
}

// SetupEnv returns the shared environment of suite, creating it on first use.
func SetupEnv(t *testing.T, suite config.Suite) *Env {
	t.Helper()

	envMu.Lock()
	defer envMu.Unlock()

	if sharedEnv != nil {
		return sharedEnv
	}

	cfg, err := config.Load(os.Getenv(ConfigPathEnv))
	if err != nil {
		t.Fatalf("Failed to load suite configuration: %v", err)
	}
	env, err := newEnv(context.Background(), cfg, suite)
	if err != nil {
		t.Fatalf("Failed to create browser environment: %v", err)
	}
	sharedEnv = env
	return sharedEnv
}

func newEnv(ctx context.Context, cfg *config.Config, suite config.Suite) (*Env, error) {
	obs.Init()
	obs.SetLevel(cfg.LogLevel)

	store, err := artifacts.NewFromConfig(ctx, cfg.Artifacts)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:    cfg,
		Suite:     suite,
		RunID:     obs.NewRunID(),
		probed:    make(map[string]error),
		artifacts: store,
		log:       obs.Pkg("browser").With("suite", string(suite)),
	}, nil
}

// BaseURL is the configured origin of the suite's application.
func (env *Env) BaseURL() string {
	return env.Config.BaseURL(env.Suite)
}

// Cleanup stops the shared browser and closes the seed database. Call it
// from TestMain after m.Run.
func Cleanup() {
	envMu.Lock()
	defer envMu.Unlock()

	if sharedEnv == nil {
		return
	}
	sharedEnv.close()
	sharedEnv = nil
}

func (env *Env) close() {
	env.browserMu.Lock()
	if env.browser != nil {
		_ = env.browser.Close()
		env.browser = nil
	}
	if env.pw != nil {
		_ = env.pw.Stop()
		env.pw = nil
	}
	env.browserMu.Unlock()

	env.seedMu.Lock()
	if env.seeder != nil {
		if err := env.seeder.Close(); err != nil {
			env.log.Warn("seed_close_failed", "error", err)
		}
		env.seeder = nil
	}
	env.seedMu.Unlock()
}

// InitBrowser starts Playwright and launches the configured browser once.
// The test is skipped when Playwright or the browser is not installed.
func (env *Env) InitBrowser(t *testing.T) {
	t.Helper()

	env.browserMu.Lock()
	defer env.browserMu.Unlock()

	if env.browser != nil {
		return
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Skip("Playwright not available:", err)
	}

	browserType := pw.Chromium
	switch env.Config.Browser {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(env.Config.Headless),
		SlowMo:   playwright.Float(float64(env.Config.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		t.Skip("Could not launch browser:", err)
	}
	pw.Selectors.SetTestIdAttribute(env.Config.TestIDAttribute)

	env.pw = pw
	env.browser = browser
	env.log.Debug("browser_started", "browser", env.Config.Browser, "headless", env.Config.Headless, "run_id", env.RunID)
}

// RequireApp skips the test when probing is enabled and nothing answers at
// baseURL. Results are cached per URL for the life of the env.
func (env *Env) RequireApp(t *testing.T, baseURL string) {
	t.Helper()

	if !env.Config.Probe {
		return
	}

	env.probeMu.Lock()
	err, seen := env.probed[baseURL]
	if !seen {
		err = Probe(context.Background(), baseURL)
		env.probed[baseURL] = err
	}
	env.probeMu.Unlock()

	if err != nil {
		t.Skipf("App under test not reachable at %s: %v", baseURL, err)
	}
}

// SeedDatabase resets the app database to the seed fixture. The test is
// skipped, with a warning, when no seed DSN is configured.
func (env *Env) SeedDatabase(t *testing.T) seed.Result {
	t.Helper()

	if !env.Config.Seed.Enabled() {
		env.log.Warn("seed_skipped", "test", t.Name(), "reason", "SUITES_SEED_DSN not set")
		t.Skip("Seed database not configured (set SUITES_SEED_DSN)")
	}

	ctx := env.testContext(t)

	env.seedMu.Lock()
	defer env.seedMu.Unlock()

	if env.seeder == nil {
		seeder, err := seed.NewFromConfig(context.WithoutCancel(ctx), env.Config)
		if err != nil {
			t.Fatalf("Failed to open seed database: %v", err)
		}
		env.seeder = seeder
	}

	res, err := env.seeder.Seed(ctx)
	if err != nil {
		t.Fatalf("seedDatabase failed: %v", err)
	}
	return res
}

// NewDriver opens a fresh browser context and page against baseURL. Closing
// them, and saving a screenshot plus the page HTML on failure, is registered
// with t.Cleanup.
func (env *Env) NewDriver(t *testing.T, baseURL string) *Driver {
	t.Helper()

	env.InitBrowser(t)

	bctx, err := env.browser.NewContext(playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(baseURL),
	})
	if err != nil {
		t.Fatalf("could not create browser context: %v", err)
	}
	timeoutMS := env.Config.CommandTimeoutMS()
	bctx.SetDefaultTimeout(timeoutMS)
	bctx.SetDefaultNavigationTimeout(timeoutMS)

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		t.Fatalf("could not create page: %v", err)
	}

	d := &Driver{
		t:       t,
		env:     env,
		baseURL: baseURL,
		context: bctx,
		page:    page,
		ctx:     env.testContext(t),
		timeout: env.Config.CommandTimeout,
	}
	d.log = obs.From(d.ctx).With("pkg", "browser")

	t.Cleanup(func() {
		if t.Failed() {
			d.saveArtifacts()
		}
		_ = page.Close()
		_ = bctx.Close()
	})
	return d
}

func (env *Env) testContext(t *testing.T) context.Context {
	return obs.WithRun(t.Context(), obs.Correlation{
		RunID: env.RunID,
		Suite: string(env.Suite),
		Test:  t.Name(),
	})
}
