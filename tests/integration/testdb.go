// Package integration runs the purchase services against real PostgreSQL and
// Redis instances started with testcontainers.
package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/erp/purchase/internal/infrastructure/migration"
	"github.com/erp/purchase/internal/infrastructure/persistence"
	"github.com/erp/purchase/internal/infrastructure/persistence/tenant"
	"github.com/erp/purchase/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// one migrated container per package run
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// skipShort skips container tests under -short
func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
}

// NewSharedTestDB connects to the shared PostgreSQL container, starting and
// migrating it on first use. Tests isolate their rows by tenant.
func NewSharedTestDB(t *testing.T) *persistence.Database {
	t.Helper()
	skipShort(t)

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()
	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("erp_purchase_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("admin123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		sharedContainer = container
		sharedContainerDSN = dsn

		db := connect(t, dsn)
		runMigrations(t, db)
		_ = db.Close()
	}

	db := connect(t, sharedContainerDSN)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func connect(t *testing.T, dsn string) *persistence.Database {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	gdb, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")
	require.NoError(t, tenant.RegisterGuard(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return &persistence.Database{DB: gdb}
}

// runMigrations applies the embedded migrations, the same set cmd/migrate ships
func runMigrations(t *testing.T, db *persistence.Database) {
	t.Helper()
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	m, err := migration.NewEmbedded(sqlDB, migrations.FS, nil)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanupSharedContainers terminates the shared PostgreSQL and Redis containers
func CleanupSharedContainers() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sharedContainerMu.Lock()
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
	sharedContainerMu.Unlock()

	sharedRedisMu.Lock()
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
		sharedRedis = nil
		sharedRedisAddr = ""
	}
	sharedRedisMu.Unlock()
}
