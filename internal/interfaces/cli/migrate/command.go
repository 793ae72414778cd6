package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/database"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/migration"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/cli/appenv"
)

const scriptsDir = "./internal/infrastructure/migration/scripts/goose"

var (
	opts     appenv.Options
	strategy string
	name     string
	dir      string
	steps    int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigDir, "config-dir", "c", "", "Directory holding config.yaml (default: ./configs)")
	cmd.PersistentFlags().StringVarP(&strategy, "strategy", "s", migration.StrategyGoose, "Migration strategy (goose, golang-migrate, auto)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and the applied and pending goose migrations.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create an empty goose SQL migration for the configured database driver.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Target directory (default: the driver's goose scripts directory)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, log, err := appenv.LoadWithDatabase(opts)
	if err != nil {
		return err
	}
	defer database.Close()

	manager, err := migration.NewManager(cfg.Database.Driver, strategy)
	if err != nil {
		return err
	}

	log.Infow("running up migrations", "driver", cfg.Database.Driver, "strategy", strategy)
	return manager.Migrate(cmd.Context(), database.Get())
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, log, err := appenv.LoadWithDatabase(opts)
	if err != nil {
		return err
	}
	defer database.Close()

	manager, err := migration.NewManager(cfg.Database.Driver, strategy)
	if err != nil {
		return err
	}

	log.Infow("running down migrations", "driver", cfg.Database.Driver, "steps", steps)
	if err := manager.Rollback(cmd.Context(), database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := appenv.LoadWithDatabase(opts)
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := migration.NewGooseStrategy(cfg.Database.Driver)
	if err != nil {
		return err
	}

	version, err := goose.Version(cmd.Context(), database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Driver:          %s\n", cfg.Database.Driver)
	fmt.Printf("  Current Version: %d\n", version)

	return goose.Status(cmd.Context(), database.Get())
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, _, err := appenv.Load(opts)
	if err != nil {
		return err
	}

	goose, err := migration.NewGooseStrategy(cfg.Database.Driver)
	if err != nil {
		return err
	}

	target := dir
	if target == "" {
		target = filepath.Join(scriptsDir, cfg.Database.Driver)
	}
	if err := goose.Create(target, name); err != nil {
		return err
	}

	fmt.Printf("Migration '%s' created in %s\n", name, target)
	return nil
}
