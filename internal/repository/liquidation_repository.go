package repository

import (
	"context"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LiquidationRepository defines the interface for settled liquidations
type LiquidationRepository interface {
	CreateSettlement(ctx context.Context, settlement *Settlement) error
	FindByID(ctx context.Context, id uint) (*models.Liquidation, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Liquidation, error)
	List(ctx context.Context, vendorID *uint, limit int) ([]models.Liquidation, error)
	MarkPaid(ctx context.Context, id uint, paymentDate time.Time, observations string) (bool, error)
	MarkVendorSigned(ctx context.Context, id uint) (bool, error)
}

// Settlement is everything written by one settle. ApplyAdvances and ApplyCash
// mark every pending entry of the vendor in that ledger as applied.
type Settlement struct {
	Liquidation   *models.Liquidation
	Lines         []models.LiquidationDetailLine
	ApplyAdvances bool
	ApplyCash     bool
}

type liquidationRepository struct {
	db *gorm.DB
}

// NewLiquidationRepository creates a new liquidation repository
func NewLiquidationRepository(db *gorm.DB) LiquidationRepository {
	return &liquidationRepository{db: db}
}

// CreateSettlement writes the liquidation, its detail lines and the applied
// adjustment marks in one transaction. On PostgreSQL the transaction starts
// by taking an advisory lock keyed by vendor so concurrent settles of the
// same vendor queue behind each other.
func (r *liquidationRepository) CreateSettlement(ctx context.Context, s *Settlement) error {
	liq := s.Liquidation
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(liq.VendorID)).Error; err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(liq).Error; err != nil {
			return err
		}

		if len(s.Lines) > 0 {
			for i := range s.Lines {
				s.Lines[i].LiquidationID = liq.ID
			}
			if err := tx.Create(&s.Lines).Error; err != nil {
				return err
			}
		}

		applied := map[string]any{
			"state":          models.AdjustmentStateApplied,
			"liquidation_id": liq.ID,
		}

		if s.ApplyAdvances {
			if err := tx.Model(&models.AdvanceEntry{}).
				Where("vendor_id = ? AND state = ?", liq.VendorID, models.AdjustmentStatePending).
				Updates(applied).Error; err != nil {
				return err
			}
		}

		if s.ApplyCash {
			if err := tx.Model(&models.CashInHandEntry{}).
				Where("vendor_id = ? AND state = ?", liq.VendorID, models.AdjustmentStatePending).
				Updates(applied).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *liquidationRepository) FindByID(ctx context.Context, id uint) (*models.Liquidation, error) {
	var liq models.Liquidation
	if err := r.db.WithContext(ctx).First(&liq, id).Error; err != nil {
		return nil, err
	}
	return &liq, nil
}

// FindByIDWithDetails loads the liquidation with vendor, lines and the
// adjustment entries it consumed
func (r *liquidationRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Liquidation, error) {
	var liq models.Liquidation
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("movement_date ASC, movement_id ASC")
		}).
		Preload("AppliedAdvances", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, id ASC")
		}).
		Preload("AppliedCash", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, id ASC")
		}).
		Preload("AppliedCash.Client").
		First(&liq, id).Error
	if err != nil {
		return nil, err
	}
	return &liq, nil
}

// List returns liquidations newest period first. A nil vendorID lists all
// vendors; limit <= 0 means no limit.
func (r *liquidationRepository) List(ctx context.Context, vendorID *uint, limit int) ([]models.Liquidation, error) {
	var liqs []models.Liquidation
	db := r.db.WithContext(ctx).Preload("Vendor")
	if vendorID != nil {
		db = db.Where("vendor_id = ?", *vendorID)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Order("period_to DESC, id DESC").Find(&liqs).Error
	return liqs, err
}

// MarkPaid stamps the payment columns of a calculated liquidation. It reports
// false when the row had already left the calculated state.
func (r *liquidationRepository) MarkPaid(ctx context.Context, id uint, paymentDate time.Time, observations string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Liquidation{}).
		Where("id = ? AND state = ?", id, models.LiquidationStateCalculated).
		Updates(map[string]any{
			"state":        models.LiquidationStatePaid,
			"payment_date": paymentDate,
			"observations": observations,
			"admin_signed": true,
		})
	return result.RowsAffected == 1, result.Error
}

// MarkVendorSigned sets only the vendor signature flag. Annulled rows are
// left untouched and reported as false.
func (r *liquidationRepository) MarkVendorSigned(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Liquidation{}).
		Where("id = ? AND state <> ?", id, models.LiquidationStateAnnulled).
		Update("vendor_signed", true)
	return result.RowsAffected == 1, result.Error
}
