package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CommissionCalculation is the preview produced by the commission calculator.
// It is never persisted as such; settling copies it into a Liquidation.
type CommissionCalculation struct {
	VendorID        uint             `json:"vendor_id"`
	VendorName      string           `json:"vendor_name"`
	PeriodFrom      time.Time        `json:"period_from"`
	PeriodTo        time.Time        `json:"period_to"`
	Config          ConfigSnapshot   `json:"config"`
	TotalBase       decimal.Decimal  `json:"total_base"`
	TotalCommission decimal.Decimal  `json:"total_commission"`
	MovementCount   int              `json:"movement_count"`
	ClientCount     int              `json:"client_count"`
	Lines           []CommissionLine `json:"lines"`
}

// CommissionLine is the contribution of one eligible movement. Commission is
// the line's share before the minimum floor, for display only.
type CommissionLine struct {
	MovementID     uint            `json:"movement_id"`
	ClientID       uint            `json:"client_id"`
	ClientName     string          `json:"client_name"`
	MovementDate   time.Time       `json:"movement_date"`
	Kind           string          `json:"kind"`
	MovementAmount decimal.Decimal `json:"movement_amount"`
	Base           decimal.Decimal `json:"base"`
	Percentage     decimal.Decimal `json:"percentage"`
	Commission     decimal.Decimal `json:"commission"`
}

// ApplyPercentage returns amount * pct / 100
func ApplyPercentage(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// PreFloorCommission is total_base * pct / 100, the value the lines add up to
func (c *CommissionCalculation) PreFloorCommission() decimal.Decimal {
	return ApplyPercentage(c.TotalBase, c.Config.Percentage)
}

// FloorEngaged reports whether the minimum guaranteed commission was applied
func (c *CommissionCalculation) FloorEngaged() bool {
	return c.TotalCommission.GreaterThan(c.PreFloorCommission())
}
