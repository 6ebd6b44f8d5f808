// Package cli provides the tradebook command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/camuig/tradebook/internal/ai"
	"github.com/camuig/tradebook/internal/config"
	"github.com/camuig/tradebook/internal/export"
	"github.com/camuig/tradebook/internal/journal"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/storage"
	"github.com/camuig/tradebook/internal/storage/postgres"
	"github.com/camuig/tradebook/internal/telegram"
	"github.com/camuig/tradebook/internal/trade"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

const defaultConfigFile = "tradebook.yaml"

// App holds dependencies shared by commands. The store is opened lazily so
// commands like pips and version work without a database.
type App struct {
	ConfigPath string
	DBPath     string

	Config   *config.Config
	Logger   *logger.Logger
	Notifier *telegram.Notifier

	store   trade.Store
	journal *journal.Journal
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "tradebook",
		Short: "A trading journal with analytics and AI coaching",
		Long: `Tradebook records trades, derives win/loss and P&L, and computes
performance statistics, an equity curve and monthly results.

It can serve a web dashboard with a JSON API, export to CSV or Org-mode,
convert between prices and pips, and ask an OpenAI-compatible model for
coaching on recent trades.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default: ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "SQLite database path (overrides storage.path)")

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newTradeCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newInsightsCmd(app))
	rootCmd.AddCommand(newPipsCmd())
	rootCmd.AddCommand(newSettingsCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (a *App) setup() error {
	path := a.ConfigPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.DBPath != "" {
		cfg.Storage.Driver = config.DriverSQLite
		cfg.Storage.Path = a.DBPath
	}
	a.Config = cfg

	a.Logger = logger.NewWithOptions(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}, os.Stderr)
	return nil
}

// Journal opens the configured store on first use.
func (a *App) Journal(ctx context.Context) (*journal.Journal, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	store, err := OpenStore(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.Notifier = telegram.NewNotifier(a.Config, a.Logger)
	a.journal = journal.New(store, a.Logger,
		journal.WithNotifier(a.Notifier),
		journal.WithExportOptions(export.Options{DateLayout: a.Config.Export.DateLayout}),
	)
	return a.journal, nil
}

func (a *App) Coach() *ai.Coach {
	return ai.NewCoach(a.Config, a.Logger)
}

func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
		a.journal = nil
	}
	if a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}
	return errors.Join(errs...)
}

// OpenStore returns the store selected by cfg.Storage.Driver. Settings
// default to cfg.Account until the user saves their own. Failed and slow
// SQLite statements are logged to log.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (trade.Store, error) {
	defaults := trade.Settings{InitialBalance: cfg.Account.InitialBalance}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		s, err := postgres.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s.WithDefaultSettings(defaults), nil
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		r, err := storage.Open(cfg.Storage.Path, storage.WithQueryLogger(log))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return r.WithDefaultSettings(defaults), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradebook %s\n", Version)
		},
	}
}
