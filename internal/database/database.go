package database

import (
	"fmt"
	"time"

	"github.com/feraben/crm-api/internal/models"
	pkgLogger "github.com/feraben/crm-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL, environment string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Warn
	if environment != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Models lists every persisted model in dependency order
func Models() []any {
	return []any{
		&models.User{},
		&models.Client{},
		&models.Movement{},
		&models.VendorCommissionConfig{},
		&models.Liquidation{},
		&models.LiquidationDetailLine{},
		&models.AdvanceEntry{},
		&models.CashInHandEntry{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema. Besides AutoMigrate it creates the
// partial unique index that allows a single active config per vendor; both
// PostgreSQL and SQLite accept the same statement.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_vendor_commission_configs_active " +
			"ON vendor_commission_configs (vendor_id) WHERE active",
	).Error; err != nil {
		return fmt.Errorf("create active config index: %w", err)
	}

	return nil
}
