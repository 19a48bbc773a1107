package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission basis constants
const (
	BasisSales       = "venta" // commission on invoiced sales
	BasisPayments    = "pago"  // commission on payments received
	BasisCollections = "cobro" // commission on payments and credit notes
)

// VendorCommissionConfig is the commission policy of a vendor. Only one row
// per vendor is active at a time; the database enforces it with a partial
// unique index (see database.Migrate).
type VendorCommissionConfig struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	VendorID      uint            `gorm:"not null;index" json:"vendor_id"`
	Percentage    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Basis         string          `gorm:"size:10;not null" json:"basis"`
	Minimum       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"minimum"`
	Comment       string          `gorm:"type:text" json:"comment"`
	Active        bool            `gorm:"not null" json:"active"`
	EffectiveFrom time.Time       `gorm:"type:date;not null" json:"effective_from"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Vendor *User `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// TableName specifies the table name for VendorCommissionConfig
func (VendorCommissionConfig) TableName() string {
	return "vendor_commission_configs"
}

// IsValidBasis reports whether basis is a known commission basis
func IsValidBasis(basis string) bool {
	return basis == BasisSales || basis == BasisPayments || basis == BasisCollections
}

// IsValidPercentage reports whether pct is within [0, 100]
func IsValidPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(decimal.NewFromInt(100))
}

// EligibleKinds lists the movement kinds that count towards the basis
func EligibleKinds(basis string) []string {
	switch basis {
	case BasisSales:
		return []string{MovementKindSale}
	case BasisPayments:
		return []string{MovementKindPayment}
	case BasisCollections:
		return []string{MovementKindPayment, MovementKindCreditNote}
	}
	return nil
}

// IsEligible reports whether a movement of kind counts towards basis
func IsEligible(basis, kind string) bool {
	for _, k := range EligibleKinds(basis) {
		if k == kind {
			return true
		}
	}
	return false
}

// ConfigSnapshot is a frozen copy of the policy used by a calculation
type ConfigSnapshot struct {
	ConfigID      uint            `json:"config_id"`
	Percentage    decimal.Decimal `json:"percentage"`
	Basis         string          `json:"basis"`
	Minimum       decimal.Decimal `json:"minimum"`
	Comment       string          `json:"comment"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// Snapshot copies the policy fields
func (c *VendorCommissionConfig) Snapshot() ConfigSnapshot {
	return ConfigSnapshot{
		ConfigID:      c.ID,
		Percentage:    c.Percentage,
		Basis:         c.Basis,
		Minimum:       c.Minimum,
		Comment:       c.Comment,
		EffectiveFrom: c.EffectiveFrom,
	}
}
