package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/infrastructure/config"
	"github.com/JericoFX/advance-manager/internal/infrastructure/database"
	"github.com/JericoFX/advance-manager/internal/infrastructure/logging"
)

var (
	envFlag        string
	migrationsFlag string
	logger         = zap.NewNop()
	pg             *database.Postgres
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for advance-manager",
	Long: `Database migration tool for advance-manager.
Manages the businesses and business_employees tables using golang-migrate.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupDatabase,
	PersistentPostRunE: closeDatabase,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runUp,
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback migrations",
	Long:  `Rollback the specified number of migrations (default: 1).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDown,
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoto,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	RunE:  runVersion,
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force set migration version (use with caution)",
	Long:  `Force set the migration version without running migrations. Use with caution.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runForce,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "dev", "Environment to use (dev, test, prod)")
	rootCmd.PersistentFlags().StringVar(&migrationsFlag, "path", "", "Migrations directory (default: located from the project root)")

	rootCmd.AddCommand(upCmd, downCmd, gotoCmd, versionCmd, forceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	if err := config.InitConfig(envFlag); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver != config.StoreDriverPostgres {
		return fmt.Errorf("migrations require STORE_DRIVER=%s", config.StoreDriverPostgres)
	}

	if logger, err = logging.New(cfg.Log); err != nil {
		return err
	}

	pg, err = database.NewPostgres(context.Background(), &cfg.Database)
	if err != nil {
		return err
	}

	logger.Info("connected to database",
		zap.String("env", envFlag),
		zap.String("user", cfg.Database.User),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)
	return nil
}

func closeDatabase(cmd *cobra.Command, args []string) error {
	defer logger.Sync() //nolint:errcheck
	if pg != nil {
		return pg.Close()
	}
	return nil
}

// withMigrator opens a migrate instance over the shared connection and runs fn
func withMigrator(fn func(m *migrate.Migrate) error) error {
	path := migrationsFlag
	if path == "" {
		var err error
		if path, err = database.FindMigrationsPath(); err != nil {
			return err
		}
	}
	logger.Debug("using migrations", zap.String("path", path))

	m, err := pg.Migrator(path)
	if err != nil {
		return err
	}
	return fn(m)
}

func parseVersion(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil || version < 0 {
		return 0, fmt.Errorf("invalid version %q", arg)
	}
	return version, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m *migrate.Migrate) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to apply")
			return nil
		}
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		logger.Info("migration up completed")
		return nil
	})
}

func runDown(cmd *cobra.Command, args []string) error {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid steps %q", args[0])
		}
		steps = n
	}

	return withMigrator(func(m *migrate.Migrate) error {
		err := m.Steps(-steps)
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to rollback")
			return nil
		}
		if err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		logger.Info("migration down completed", zap.Int("steps", steps))
		return nil
	})
}

func runGoto(cmd *cobra.Command, args []string) error {
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}

	return withMigrator(func(m *migrate.Migrate) error {
		err := m.Migrate(uint(version))
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("already at version", zap.Int("version", version))
			return nil
		}
		if err != nil {
			return fmt.Errorf("migration goto failed: %w", err)
		}
		logger.Info("migration goto completed", zap.Int("version", version))
		return nil
	})
}

func runVersion(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(cmd.OutOrStdout(), "Current version: no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		if dirty {
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d (dirty - migration may have failed)\n", version)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
		}
		return nil
	})
}

func runForce(cmd *cobra.Command, args []string) error {
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}

	return withMigrator(func(m *migrate.Migrate) error {
		if err := m.Force(version); err != nil {
			return fmt.Errorf("migration force failed: %w", err)
		}
		logger.Warn("migration version forced", zap.Int("version", version))
		return nil
	})
}
