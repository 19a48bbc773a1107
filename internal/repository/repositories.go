package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User             UserRepository
	Client           ClientRepository
	Movement         MovementRepository
	CommissionConfig CommissionConfigRepository
	Adjustment       AdjustmentRepository
	Liquidation      LiquidationRepository
	Report           ReportRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:             NewUserRepository(db),
		Client:           NewClientRepository(db),
		Movement:         NewMovementRepository(db),
		CommissionConfig: NewCommissionConfigRepository(db),
		Adjustment:       NewAdjustmentRepository(db),
		Liquidation:      NewLiquidationRepository(db),
		Report:           NewReportRepository(db),
	}
}
