package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var allTables = []string{
	constants.TableAccounts,
	constants.TableSocialLinks,
	constants.TableVerificationTokens,
	constants.TableBlacklistedTokens,
}

func TestGooseStrategy_UpAndDownOnSQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	manager, err := NewManager("sqlite", StrategyGoose)
	require.NoError(t, err)
	require.NoError(t, manager.Migrate(ctx, db))

	for _, table := range allTables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	version, err := manager.Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// applying again is a no-op
	require.NoError(t, manager.Migrate(ctx, db))

	require.NoError(t, manager.Rollback(ctx, db, 1))
	assert.True(t, db.Migrator().HasTable(constants.TableAccounts))
	assert.False(t, db.Migrator().HasTable(constants.TableBlacklistedTokens))
}

func TestAutoMigrateStrategy(t *testing.T) {
	db := openSQLite(t)

	manager, err := NewManager("sqlite", StrategyAutoMigrate)
	require.NoError(t, err)
	require.NoError(t, manager.Migrate(context.Background(), db))

	for _, table := range allTables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.Error(t, manager.Rollback(context.Background(), db, 1))
}

func TestNewManager_Errors(t *testing.T) {
	_, err := NewManager("oracle", StrategyGoose)
	assert.Error(t, err)

	_, err = NewManager("postgres", StrategyGolangMigrate)
	assert.Error(t, err)

	_, err = NewManager("mysql", "flyway")
	assert.Error(t, err)

	m, err := NewManager("mysql", StrategyGolangMigrate)
	require.NoError(t, err)
	assert.Equal(t, "golang_migrate", m.GetStrategy().GetName())
}

func TestScriptsEmbedded(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		entries, err := Scripts.ReadDir(gooseDir(driver))
		require.NoError(t, err, driver)
		assert.Len(t, entries, 2, driver)
	}
	entries, err := Scripts.ReadDir(golangMigrateDir)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}
