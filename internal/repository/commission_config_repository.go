package repository

import (
	"context"

	"github.com/feraben/crm-api/internal/models"
	"gorm.io/gorm"
)

// CommissionConfigRepository defines the interface for vendor commission policies
type CommissionConfigRepository interface {
	FindActive(ctx context.Context, vendorID uint) (*models.VendorCommissionConfig, error)
	ListActive(ctx context.Context) ([]models.VendorCommissionConfig, error)
	History(ctx context.Context, vendorID uint) ([]models.VendorCommissionConfig, error)
	Replace(ctx context.Context, config *models.VendorCommissionConfig) error
}

type commissionConfigRepository struct {
	db *gorm.DB
}

// NewCommissionConfigRepository creates a new commission config repository
func NewCommissionConfigRepository(db *gorm.DB) CommissionConfigRepository {
	return &commissionConfigRepository{db: db}
}

func (r *commissionConfigRepository) FindActive(ctx context.Context, vendorID uint) (*models.VendorCommissionConfig, error) {
	var cfg models.VendorCommissionConfig
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("vendor_id = ? AND active = ?", vendorID, true).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *commissionConfigRepository) ListActive(ctx context.Context) ([]models.VendorCommissionConfig, error) {
	var cfgs []models.VendorCommissionConfig
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("active = ?", true).
		Order("vendor_id ASC").
		Find(&cfgs).Error
	return cfgs, err
}

func (r *commissionConfigRepository) History(ctx context.Context, vendorID uint) ([]models.VendorCommissionConfig, error) {
	var cfgs []models.VendorCommissionConfig
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("id DESC").
		Find(&cfgs).Error
	return cfgs, err
}

// Replace deactivates the current active row of the vendor and inserts config
// as the new active row in one transaction
func (r *commissionConfigRepository) Replace(ctx context.Context, config *models.VendorCommissionConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VendorCommissionConfig{}).
			Where("vendor_id = ? AND active = ?", config.VendorID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		config.ID = 0
		config.Active = true
		return tx.Omit("Vendor").Create(config).Error
	})
}
