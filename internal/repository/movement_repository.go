package repository

import (
	"context"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/shopspring/decimal"

	"gorm.io/gorm"
)

// MovementRepository defines the interface for client ledger data access
type MovementRepository interface {
	Create(ctx context.Context, movement *models.Movement) error
	FindForCommission(ctx context.Context, vendorID uint, from, to time.Time, kinds []string) ([]models.Movement, error)
	FindByClient(ctx context.Context, clientID uint) ([]models.Movement, error)
	CalculateBalance(ctx context.Context, clientID uint) (decimal.Decimal, error)
	List(ctx context.Context, query *ListQuery) ([]models.Movement, int64, error)
}

// movementRepository handles database operations for ledger movements
type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

// Create creates a new ledger movement
func (r *movementRepository) Create(ctx context.Context, movement *models.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindForCommission retrieves the vendor movements of the given kinds inside
// [from, to], both ends inclusive, with the client preloaded
func (r *movementRepository) FindForCommission(ctx context.Context, vendorID uint, from, to time.Time, kinds []string) ([]models.Movement, error) {
	var movements []models.Movement
	if len(kinds) == 0 {
		return movements, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("vendor_id = ? AND date >= ? AND date <= ? AND kind IN ?", vendorID, from, to, kinds).
		Order("date ASC, id ASC").
		Find(&movements).Error
	return movements, err
}

// FindByClient retrieves all movements of a client in balance order
func (r *movementRepository) FindByClient(ctx context.Context, clientID uint) ([]models.Movement, error) {
	var movements []models.Movement
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("date ASC, id ASC").
		Find(&movements).Error
	return movements, err
}

// CalculateBalance sums the signed amounts of a client
func (r *movementRepository) CalculateBalance(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}

	err := r.db.WithContext(ctx).
		Model(&models.Movement{}).
		Select("COALESCE(SUM(amount), 0) as balance").
		Where("client_id = ?", clientID).
		Scan(&result).Error

	return result.Balance, err
}

// List supports the movements screen; filters: vendor_id, client_id, kind
func (r *movementRepository) List(ctx context.Context, query *ListQuery) ([]models.Movement, int64, error) {
	var movements []models.Movement
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Movement{})

	for _, col := range []string{"vendor_id", "client_id", "kind"} {
		if v := query.Filters[col]; v != "" {
			db = db.Where(col+" = ?", v)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query.normalize()
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Client").Order("date DESC, id DESC").Find(&movements).Error
	return movements, total, err
}
