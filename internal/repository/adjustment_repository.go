package repository

import (
	"context"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger names used in stale adjustment reports
const (
	LedgerAdvances   = "advances"
	LedgerCashInHand = "cash_in_hand"
)

// AdjustmentRepository defines the interface for the advance and
// cash-in-hand ledgers
type AdjustmentRepository interface {
	CreateAdvance(ctx context.Context, entry *models.AdvanceEntry) error
	FindAdvance(ctx context.Context, id uint) (*models.AdvanceEntry, error)
	CancelAdvance(ctx context.Context, id uint) (bool, error)
	PendingAdvances(ctx context.Context, vendorID uint) ([]models.AdvanceEntry, error)
	SumPendingAdvances(ctx context.Context, vendorID uint) (decimal.Decimal, int64, error)

	CreateCash(ctx context.Context, entry *models.CashInHandEntry) error
	FindCash(ctx context.Context, id uint) (*models.CashInHandEntry, error)
	CancelCash(ctx context.Context, id uint) (bool, error)
	PendingCash(ctx context.Context, vendorID uint) ([]models.CashInHandEntry, error)
	SumPendingCash(ctx context.Context, vendorID uint) (decimal.Decimal, int64, error)

	FindStalePending(ctx context.Context, before time.Time) ([]models.StaleAdjustment, error)
}

type adjustmentRepository struct {
	db *gorm.DB
}

// NewAdjustmentRepository creates a new adjustment repository
func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

type pendingSum struct {
	Total   decimal.Decimal
	Entries int64
}

func (r *adjustmentRepository) sumPending(ctx context.Context, model any, vendorID uint) (decimal.Decimal, int64, error) {
	var result pendingSum
	err := r.db.WithContext(ctx).
		Model(model).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS entries").
		Where("vendor_id = ? AND state = ?", vendorID, models.AdjustmentStatePending).
		Scan(&result).Error
	return result.Total, result.Entries, err
}

func (r *adjustmentRepository) CreateAdvance(ctx context.Context, entry *models.AdvanceEntry) error {
	return r.db.WithContext(ctx).Omit("Vendor").Create(entry).Error
}

func (r *adjustmentRepository) FindAdvance(ctx context.Context, id uint) (*models.AdvanceEntry, error) {
	var entry models.AdvanceEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// cancelPending moves a single entry from pending to cancelled. It reports
// false when the entry was no longer pending at write time.
func (r *adjustmentRepository) cancelPending(ctx context.Context, model any, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND state = ?", id, models.AdjustmentStatePending).
		Update("state", models.AdjustmentStateCancelled)
	return result.RowsAffected == 1, result.Error
}

func (r *adjustmentRepository) CancelAdvance(ctx context.Context, id uint) (bool, error) {
	return r.cancelPending(ctx, &models.AdvanceEntry{}, id)
}

// PendingAdvances lists pending advances newest first
func (r *adjustmentRepository) PendingAdvances(ctx context.Context, vendorID uint) ([]models.AdvanceEntry, error) {
	var entries []models.AdvanceEntry
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND state = ?", vendorID, models.AdjustmentStatePending).
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func (r *adjustmentRepository) SumPendingAdvances(ctx context.Context, vendorID uint) (decimal.Decimal, int64, error) {
	return r.sumPending(ctx, &models.AdvanceEntry{}, vendorID)
}

func (r *adjustmentRepository) CreateCash(ctx context.Context, entry *models.CashInHandEntry) error {
	return r.db.WithContext(ctx).Omit("Vendor", "Client").Create(entry).Error
}

func (r *adjustmentRepository) FindCash(ctx context.Context, id uint) (*models.CashInHandEntry, error) {
	var entry models.CashInHandEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *adjustmentRepository) CancelCash(ctx context.Context, id uint) (bool, error) {
	return r.cancelPending(ctx, &models.CashInHandEntry{}, id)
}

// PendingCash lists pending cash-in-hand entries newest first
func (r *adjustmentRepository) PendingCash(ctx context.Context, vendorID uint) ([]models.CashInHandEntry, error) {
	var entries []models.CashInHandEntry
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("vendor_id = ? AND state = ?", vendorID, models.AdjustmentStatePending).
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func (r *adjustmentRepository) SumPendingCash(ctx context.Context, vendorID uint) (decimal.Decimal, int64, error) {
	return r.sumPending(ctx, &models.CashInHandEntry{}, vendorID)
}

// FindStalePending groups, per vendor and ledger, the pending entries dated
// before the cutoff
func (r *adjustmentRepository) FindStalePending(ctx context.Context, before time.Time) ([]models.StaleAdjustment, error) {
	var out []models.StaleAdjustment
	ledgers := []struct {
		name  string
		model any
	}{
		{LedgerAdvances, &models.AdvanceEntry{}},
		{LedgerCashInHand, &models.CashInHandEntry{}},
	}

	for _, l := range ledgers {
		var rows []models.StaleAdjustment
		err := r.db.WithContext(ctx).
			Model(l.model).
			Select("vendor_id, COUNT(*) AS entries, COALESCE(SUM(amount), 0) AS amount").
			Where("state = ? AND date < ?", models.AdjustmentStatePending, before).
			Group("vendor_id").
			Order("vendor_id ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Ledger = l.name
		}
		out = append(out, rows...)
	}
	return out, nil
}
