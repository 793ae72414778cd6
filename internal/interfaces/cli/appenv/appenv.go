// Package appenv prepares what every command needs before it runs: the
// loaded configuration, the global logger and the database connection.
package appenv

import (
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/database"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// Options are the persistent flags shared by the commands.
type Options struct {
	Env       string
	ConfigDir string
}

func (o Options) searchPaths() []string {
	if o.ConfigDir == "" {
		return nil
	}
	return []string{o.ConfigDir}
}

// Load reads the configuration and initializes the global logger.
func Load(opts Options) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(opts.Env, opts.searchPaths()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logger, !cfg.Server.IsProduction()); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// LoadWithDatabase is Load plus database.Init. Callers close the database.
func LoadWithDatabase(opts Options) (*config.Config, logger.Interface, error) {
	cfg, log, err := Load(opts)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, log, nil
}
