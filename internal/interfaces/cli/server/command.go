package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/cache"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/database"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/migration"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/cli/appenv"
	httpRouter "github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

var (
	opts               appenv.Options
	autoMigrate        bool
	migrationStrategy  string
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the account service HTTP API with the configuration from configs/config.yaml and USERAUTH_* variables.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&opts.Env, "env", "e", "", "Environment (development, test, production); overrides server.mode")
	cmd.Flags().StringVarP(&opts.ConfigDir, "config-dir", "c", "", "Directory holding config.yaml (default: ./configs)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations on startup")
	cmd.Flags().StringVar(&migrationStrategy, "strategy", migration.StrategyGoose, "Migration strategy used with --auto-migrate (goose, golang-migrate, auto)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" && opts.Env == "" {
		opts.Env = envVar
	}

	cfg, log, err := appenv.LoadWithDatabase(opts)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("starting server",
		"mode", cfg.Server.Mode,
		"auto_migrate", autoMigrate)

	gin.SetMode(ginMode(cfg))
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(cmd.Context(), cfg, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	rdb, err := cache.NewRedisClient(cmd.Context(), cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	router, err := httpRouter.NewRouter(database.Get(), rdb, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	router.SetupRoutes()
	router.StartBackground()
	defer router.Shutdown()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-quit:
	}

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(ctx context.Context, cfg *config.Config, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	manager, err := migration.NewManager(cfg.Database.Driver, migrationStrategy)
	if err != nil {
		return err
	}

	if autoMigrate {
		if cfg.Server.IsProduction() {
			log.Warnw("auto-migration is enabled in production")
		}
		return manager.Migrate(ctx, database.Get())
	}

	version, err := manager.Version(ctx, database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}

func ginMode(cfg *config.Config) string {
	switch {
	case cfg.Server.IsProduction():
		return gin.ReleaseMode
	case cfg.Server.Mode == "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
