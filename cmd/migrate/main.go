package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/pricesync/internal/infrastructure/config"
	"github.com/erp/pricesync/internal/infrastructure/logger"
	"github.com/erp/pricesync/internal/infrastructure/migration"
	"github.com/erp/pricesync/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type migrateOptions struct {
	migrationsPath string
	logLevel       string
}

func newRootCmd() *cobra.Command {
	opts := &migrateOptions{}

	root := &cobra.Command{
		Use:   "migrate <command>",
		Short: "Price service database migration tool",
		Long: `migrate applies the schema migrations of the price service.

The database is taken from the regular configuration (config.toml and
PRICESYNC_DATABASE_* environment variables). Migrations are embedded in the
binary; --path reads them from a directory instead.

Examples:
  migrate up                 # Apply all pending migrations
  migrate steps -- -1        # Roll back the last migration
  migrate version            # Show the current version
  migrate force 1            # Clear a dirty state at version 1`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.migrationsPath, "path", "",
		"Migrations directory (default: embedded migrations)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return opts.run(func(m *migration.Migrator) error {
					return m.Up()
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return opts.run(func(m *migration.Migrator) error {
					return m.Down()
				})
			},
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Apply n migrations (positive=up, negative=down)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return opts.run(func(m *migration.Migrator) error {
					return m.Steps(n)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return opts.run(func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					if version == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Force set the migration version (use with caution)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return opts.run(func(m *migration.Migrator) error {
					return m.Force(version)
				})
			},
		},
	)

	return root
}

// run opens the configured database, builds a migrator and hands it to fn
func (o *migrateOptions) run(fn func(*migration.Migrator) error) error {
	log, err := logger.New(logger.Config{
		Level:      o.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.SQLDB()
	if err != nil {
		_ = db.Close()
		return err
	}

	var m *migration.Migrator
	if o.migrationsPath != "" {
		path, err := filepath.Abs(o.migrationsPath)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to resolve migrations path: %w", err)
		}
		m, err = migration.NewFromPath(sqlDB, cfg.Database.Driver, path, log)
		if err != nil {
			_ = db.Close()
			return err
		}
	} else {
		m, err = migration.New(sqlDB, cfg.Database.Driver, log)
		if err != nil {
			_ = db.Close()
			return err
		}
	}
	// Close releases the migrator and the underlying *sql.DB.
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	log.Info("Migration CLI started",
		zap.String("driver", cfg.Database.Driver),
		zap.String("migrations_path", o.migrationsPath),
	)
	return fn(m)
}
