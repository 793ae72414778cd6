// Package migration applies the database schema with goose (default),
// golang-migrate or gorm AutoMigrate.
package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const (
	StrategyGoose         = "goose"
	StrategyGolangMigrate = "golang-migrate"
	StrategyAutoMigrate   = "auto"
)

type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy by name for the given database driver.
func NewManager(driver, strategyName string) (*Manager, error) {
	var strategy Strategy
	switch strategyName {
	case StrategyGoose, "":
		s, err := NewGooseStrategy(driver)
		if err != nil {
			return nil, err
		}
		strategy = s
	case StrategyGolangMigrate:
		if driver != "mysql" {
			return nil, fmt.Errorf("golang-migrate scripts are only provided for mysql, not %q", driver)
		}
		strategy = NewGolangMigrateStrategy()
	case StrategyAutoMigrate:
		strategy = NewGormAutoMigrateStrategy()
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", strategyName)
	}
	return NewManagerWithStrategy(strategy), nil
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

func (m *Manager) Migrate(ctx context.Context, db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Up(ctx, db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) Rollback(ctx context.Context, db *gorm.DB, steps int) error {
	r, ok := m.strategy.(Reverter)
	if !ok {
		return fmt.Errorf("strategy %s cannot roll back", m.strategy.GetName())
	}
	return r.Down(ctx, db, steps)
}

func (m *Manager) Version(ctx context.Context, db *gorm.DB) (int64, error) {
	r, ok := m.strategy.(Reverter)
	if !ok {
		return 0, fmt.Errorf("strategy %s is not versioned", m.strategy.GetName())
	}
	return r.Version(ctx, db)
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
