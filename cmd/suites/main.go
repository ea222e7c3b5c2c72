// Command suites runs the chores around the browser suites: seeding the app
// database, installing Playwright browsers and checking the apps are up.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"

	"github.com/kuitang/e2e-suites/internal/browser"
	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/errs"
	"github.com/kuitang/e2e-suites/internal/obs"
	"github.com/kuitang/e2e-suites/internal/seed"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(errs.ExitCode(errs.CodeOf(err)))
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "suites",
		Short:         "Tooling for the browser end-to-end suites",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(browser.ConfigPathEnv), "Config file (default suites.yaml when present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newSeedCmd(opts),
		newInstallCmd(),
		newProbeCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "invalid configuration", err)
	}
	obs.Init()
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	if !obs.SetLevel(level) {
		return nil, errs.New(errs.InvalidArgument, fmt.Sprintf("unknown log level %q", level))
	}
	return cfg, nil
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var driver, dsn, fixture string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the app database to the seed fixture",
		Long: `Seed deletes every user and takeaway in the app database and inserts the
seed fixture, exactly as the suites do before each data-dependent test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if driver != "" {
				cfg.Seed.Driver = driver
			}
			if dsn != "" {
				cfg.Seed.DSN = dsn
			}
			if fixture != "" {
				cfg.Seed.Fixture = fixture
			}
			if err := cfg.Validate(); err != nil {
				return errs.Wrap(errs.InvalidArgument, "invalid configuration", err)
			}
			if !cfg.Seed.Enabled() {
				return errs.New(errs.InvalidArgument, "no seed DSN configured (use --dsn or SUITES_SEED_DSN)")
			}
			return runSeed(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "", "Database driver: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite file path or Postgres connection string")
	cmd.Flags().StringVar(&fixture, "fixture", "", "Seed fixture name")
	return cmd
}

func runSeed(ctx context.Context, out io.Writer, cfg *config.Config) error {
	seeder, err := seed.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer seeder.Close()

	res, err := seeder.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d user(s) and %d takeaway(s) in %s\n", res.Users, res.Takeaways, res.Duration.Round(time.Millisecond))
	return nil
}

func newInstallCmd() *cobra.Command {
	var browsers []string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Playwright driver and browsers",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := playwright.Install(&playwright.RunOptions{
				Browsers: browsers,
				Verbose:  verbose,
			})
			if err != nil {
				return errs.Wrap(errs.Unavailable, "could not install playwright", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed playwright with %v\n", browsers)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&browsers, "browser", []string{"chromium"}, "Browsers to install")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show installer output")
	return cmd
}

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that every suite's app answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runProbe(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func runProbe(ctx context.Context, out io.Writer, cfg *config.Config) error {
	var down []error
	for _, suite := range config.Suites {
		baseURL := cfg.BaseURL(suite)
		if err := browser.Probe(ctx, baseURL); err != nil {
			fmt.Fprintf(out, "%-10s %-28s DOWN (%v)\n", suite, baseURL, err)
			down = append(down, fmt.Errorf("%s: %w", suite, err))
			continue
		}
		fmt.Fprintf(out, "%-10s %-28s up\n", suite, baseURL)
	}
	if len(down) > 0 {
		return errs.Wrap(errs.Unavailable, fmt.Sprintf("%d suite app(s) unreachable", len(down)), errors.Join(down...))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "suites %s\n", cmd.Root().Version)
		},
	}
}
