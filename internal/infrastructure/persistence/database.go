package persistence

import (
	"fmt"
	"time"

	"github.com/erp/purchase/internal/infrastructure/config"
	"github.com/erp/purchase/internal/infrastructure/logger"
	"github.com/erp/purchase/internal/infrastructure/persistence/models"
	"github.com/erp/purchase/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the configured database with gorm logging routed through zap
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger, logLevel gormlogger.LogLevel) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return open(dialectorFor(cfg), cfg, logger.NewGormLogger(log, logLevel, 200*time.Millisecond))
}

func dialectorFor(cfg *config.DatabaseConfig) gorm.Dialector {
	if cfg.Driver == config.DriverSQLite {
		return sqlite.Open(cfg.DSN())
	}
	return postgres.Open(cfg.DSN())
}

func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, gormLogger gormlogger.Interface) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != config.DriverSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := tenant.RegisterGuard(db); err != nil {
		return nil, fmt.Errorf("failed to register tenant guard: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite serialises writers; one connection keeps ":memory:" databases shared
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// IsSQLite reports whether the connection uses the sqlite dialect
func (d *Database) IsSQLite() bool {
	return isSQLite(d.DB)
}

func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == config.DriverSQLite
}

// AutoMigrate creates or updates every purchase table from the models.
// Postgres deployments use the SQL migrations instead.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(
		&models.PurchaseOrderModel{},
		&models.PurchaseLineModel{},
		&models.PurchaseLineMoveModel{},
		&models.StockMoveModel{},
		&models.PickingModel{},
		&models.PurchaseRequestModel{},
		&models.PurchaseRequestLineModel{},
		&models.RequisitionModel{},
		&models.RequisitionLineModel{},
		&models.SupplierInfoModel{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}
