package migration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// Strategy applies pending schema changes.
type Strategy interface {
	Up(ctx context.Context, db *gorm.DB) error
	GetName() string
}

// Reverter is implemented by strategies that can roll back.
type Reverter interface {
	Down(ctx context.Context, db *gorm.DB, steps int) error
	Version(ctx context.Context, db *gorm.DB) (int64, error)
}

// =============================================================================
// goose
// =============================================================================

// GooseStrategy runs the embedded goose scripts for one SQL dialect.
type GooseStrategy struct {
	driver  string
	dialect string
	logger  logger.Interface
}

func NewGooseStrategy(driver string) (*GooseStrategy, error) {
	dialect, ok := gooseDialects[driver]
	if !ok {
		return nil, fmt.Errorf("goose does not support driver %q", driver)
	}
	return &GooseStrategy{
		driver:  driver,
		dialect: dialect,
		logger:  logger.NewLogger().With("component", "migration.goose"),
	}, nil
}

var gooseDialects = map[string]string{
	"mysql":    "mysql",
	"postgres": "postgres",
	"sqlite":   "sqlite3",
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) prepare() error {
	goose.SetBaseFS(Scripts)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

func (s *GooseStrategy) Up(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	s.logger.Infow("starting goose migration", "driver", s.driver, "version", current)

	if err := goose.UpContext(ctx, sqlDB, gooseDir(s.driver)); err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	final, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}
	s.logger.Infow("migration completed successfully", "from_version", current, "to_version", final)
	return nil
}

func (s *GooseStrategy) Down(ctx context.Context, db *gorm.DB, steps int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, sqlDB, gooseDir(s.driver)); err != nil {
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}
	s.logger.Infow("down migration completed successfully", "steps", steps)
	return nil
}

func (s *GooseStrategy) Version(ctx context.Context, db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// Status prints applied and pending migrations through goose's logger.
func (s *GooseStrategy) Status(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}
	goose.SetLogger(log.New(os.Stdout, "", 0))
	if err := goose.StatusContext(ctx, sqlDB, gooseDir(s.driver)); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	return nil
}

// Create writes a new empty SQL migration into dir on disk.
func (s *GooseStrategy) Create(dir, name string) error {
	goose.SetBaseFS(nil)
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return nil
}

// =============================================================================
// golang-migrate
// =============================================================================

// GolangMigrateStrategy runs the embedded golang-migrate scripts. Only MySQL
// scripts are shipped.
type GolangMigrateStrategy struct {
	logger logger.Interface
}

func NewGolangMigrateStrategy() *GolangMigrateStrategy {
	return &GolangMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.golang-migrate"),
	}
}

func (s *GolangMigrateStrategy) GetName() string {
	return "golang_migrate"
}

func (s *GolangMigrateStrategy) instance(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	source, err := iofs.New(Scripts, golangMigrateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}
	driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func (s *GolangMigrateStrategy) Up(ctx context.Context, db *gorm.DB) error {
	m, err := s.instance(db)
	if err != nil {
		return err
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		s.logger.Warnw("database is in dirty state, please fix manually", "version", current)
		return fmt.Errorf("database is in dirty state at version %d", current)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	final, _, _ := m.Version()
	s.logger.Infow("migration completed successfully", "from_version", current, "to_version", final)
	return nil
}

func (s *GolangMigrateStrategy) Down(ctx context.Context, db *gorm.DB, steps int) error {
	m, err := s.instance(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("down migration failed", "error", err)
		return fmt.Errorf("failed to run down migrations: %w", err)
	}
	s.logger.Infow("down migration completed successfully", "steps", steps)
	return nil
}

func (s *GolangMigrateStrategy) Version(ctx context.Context, db *gorm.DB) (int64, error) {
	m, err := s.instance(db)
	if err != nil {
		return 0, err
	}
	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return int64(version), nil
}

// Force sets the version and clears the dirty flag after a manual fix.
func (s *GolangMigrateStrategy) Force(db *gorm.DB, version int) error {
	m, err := s.instance(db)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force version: %w", err)
	}
	s.logger.Infow("forced migration version", "version", version)
	return nil
}

// =============================================================================
// gorm AutoMigrate
// =============================================================================

// GormAutoMigrateStrategy creates tables from the persistence models. It is
// meant for throwaway sqlite databases.
type GormAutoMigrateStrategy struct{}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{}
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

func (s *GormAutoMigrateStrategy) Up(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}
