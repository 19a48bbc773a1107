// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feraben/crm-api/internal/database"
	"github.com/feraben/crm-api/internal/models"
)

// NewSQLiteDB opens a migrated in-memory database private to the test
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Date builds a UTC date
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal, panicking on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SeedVendor inserts an active seller
func SeedVendor(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: models.RoleSeller, Active: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedClient inserts an active client attended by vendorID
func SeedClient(t *testing.T, db *gorm.DB, name string, vendorID uint) *models.Client {
	t.Helper()
	c := &models.Client{BusinessName: name, VendorID: &vendorID, Active: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

// SeedConfig inserts the active commission config of a vendor
func SeedConfig(t *testing.T, db *gorm.DB, vendorID uint, pct, minimum, basis string) *models.VendorCommissionConfig {
	t.Helper()
	cfg := &models.VendorCommissionConfig{
		VendorID:      vendorID,
		Percentage:    Dec(pct),
		Basis:         basis,
		Minimum:       Dec(minimum),
		Active:        true,
		EffectiveFrom: Date(2024, time.January, 1),
	}
	require.NoError(t, db.Create(cfg).Error)
	return cfg
}

// SeedMovement inserts a movement with the amount stored as given
func SeedMovement(t *testing.T, db *gorm.DB, vendorID, clientID uint, date time.Time, kind, amount string) *models.Movement {
	t.Helper()
	m := &models.Movement{
		Date:     date,
		ClientID: clientID,
		VendorID: vendorID,
		Kind:     kind,
		Amount:   Dec(amount),
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// SeedAdvance inserts a pending advance
func SeedAdvance(t *testing.T, db *gorm.DB, vendorID uint, date time.Time, amount string) *models.AdvanceEntry {
	t.Helper()
	a := &models.AdvanceEntry{VendorID: vendorID, Date: date, Amount: Dec(amount), State: models.AdjustmentStatePending}
	require.NoError(t, db.Create(a).Error)
	return a
}

// SeedCash inserts a pending cash-in-hand entry
func SeedCash(t *testing.T, db *gorm.DB, vendorID, clientID uint, date time.Time, amount string) *models.CashInHandEntry {
	t.Helper()
	c := &models.CashInHandEntry{VendorID: vendorID, ClientID: clientID, Date: date, Amount: Dec(amount), State: models.AdjustmentStatePending}
	require.NoError(t, db.Create(c).Error)
	return c
}
