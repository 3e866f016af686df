// Package cmd implements the adhquery command line.
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asaidimu/go-adhquery/config"
	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/asaidimu/go-adhquery/core/query"
	"github.com/asaidimu/go-adhquery/core/reporting"
	"github.com/asaidimu/go-adhquery/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// app holds what the subcommands share. It is populated by the root
// command's PersistentPreRunE.
type app struct {
	configPath string

	cfg       *config.Config
	logger    *zap.Logger
	db        *sql.DB
	store     *sqlite.SheetStore
	templates *query.TemplateRegistry
	service   *reporting.Service
}

// NewRoot returns the root command
func NewRoot() *cobra.Command {
	return newRoot(&app{})
}

func newRoot(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "adhquery",
		Short:             "adhquery builds dynamic Ads Data Hub report queries from input sheets",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return multierr.Append(err, a.close())
			}
			return nil
		},
		// Only reached when RunE succeeds; the subcommands close on error themselves.
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to the config file (default ./adhquery.yaml)")
	cmd.AddCommand(
		newReportsCmd(a),
		newTemplatesCmd(a),
		newImportCmd(a),
		newBuildCmd(a),
		newSheetsCmd(a),
	)
	for _, sub := range cmd.Commands() {
		sub.RunE = a.closeOnError(sub.RunE)
	}
	return cmd
}

// closeOnError releases the app's resources when run fails, since cobra
// skips the post-run hooks in that case.
func (a *app) closeOnError(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := run(cmd, args); err != nil {
			return multierr.Append(err, a.close())
		}
		return nil
	}
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, err = config.NewLogger(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if a.templates, err = query.DefaultTemplates(a.logger); err != nil {
		return err
	}
	if cfg.Templates.Dir != "" {
		if err := a.templates.LoadDir(cfg.Templates.Dir); err != nil {
			return err
		}
	}

	reports := catalog.DefaultRegistry()
	if cfg.Reports.Dir != "" {
		if err := reports.LoadDir(cfg.Reports.Dir); err != nil {
			return err
		}
	}

	if a.service, err = reporting.NewService(reports, a.templates, a.logger); err != nil {
		return err
	}
	a.service.RegisterSubscription(reporting.RegisterSubscriptionOptions{
		Event: reporting.BuildInvalid,
		Callback: func(ctx context.Context, e reporting.BuildEvent) error {
			a.logger.Warn("Query built from invalid input",
				zap.String("build", e.BuildID),
				zap.String("report", e.Report),
				zap.Strings("issues", e.Issues),
			)
			return nil
		},
	})

	if a.db, err = sql.Open("sqlite3", cfg.Store.Path); err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	options := sqlite.DefaultStoreOptions()
	options.TablePrefix = cfg.Store.TablePrefix
	a.store = sqlite.NewSheetStore(a.db, a.logger, options)
	return a.store.Init(ctx)
}

// close may be called more than once.
func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
