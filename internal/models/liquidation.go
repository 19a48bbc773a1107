package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Liquidation states
const (
	LiquidationStateCalculated = "calculada"
	LiquidationStatePaid       = "pagada"
	LiquidationStateAnnulled   = "anulada"
)

// DefaultPaymentMethod is used when a settle request names none
const DefaultPaymentMethod = "transferencia"

// DefaultLiquidationNotes is written when a settle request carries no notes
const DefaultLiquidationNotes = "Liquidación generada automáticamente"

// Liquidation is a settled commission for a vendor and period
type Liquidation struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	VendorID         uint            `gorm:"not null;index" json:"vendor_id"`
	PeriodFrom       time.Time       `gorm:"type:date;not null" json:"period_from"`
	PeriodTo         time.Time       `gorm:"type:date;not null;index" json:"period_to"`
	Basis            string          `gorm:"size:10;not null" json:"basis"`
	Percentage       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Minimum          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"minimum"`
	TotalBase        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_base"`
	TotalCommission  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_commission"`
	MovementCount    int             `gorm:"not null" json:"movement_count"`
	ClientCount      int             `gorm:"not null" json:"client_count"`
	Advances         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"advances"`
	CashInHand       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cash_in_hand"`
	OtherDiscounts   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"other_discounts"`
	OtherBonuses     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"other_bonuses"`
	TotalNet         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_net"`
	PaymentMethod    string          `gorm:"size:30;not null" json:"payment_method"`
	PaymentReference string          `gorm:"size:100" json:"payment_reference"`
	Notes            string          `gorm:"type:text" json:"notes"`
	Observations     string          `gorm:"type:text" json:"observations"`
	DeliveryDate     *time.Time      `gorm:"type:date" json:"delivery_date,omitempty"`
	State            string          `gorm:"size:20;not null;index" json:"state"`
	VendorSigned     bool            `gorm:"not null" json:"vendor_signed"`
	AdminSigned      bool            `gorm:"not null" json:"admin_signed"`
	PaymentDate      *time.Time      `gorm:"type:date" json:"payment_date,omitempty"`
	CreatedBy        *uint           `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relationships
	Vendor          *User                   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Lines           []LiquidationDetailLine `gorm:"foreignKey:LiquidationID" json:"lines,omitempty"`
	AppliedAdvances []AdvanceEntry          `gorm:"foreignKey:LiquidationID" json:"applied_advances,omitempty"`
	AppliedCash     []CashInHandEntry       `gorm:"foreignKey:LiquidationID" json:"applied_cash_in_hand,omitempty"`
}

// TableName specifies the table name for Liquidation
func (Liquidation) TableName() string {
	return "liquidations"
}

// LiquidationDetailLine is a frozen copy of one calculation line
type LiquidationDetailLine struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	LiquidationID  uint            `gorm:"not null;index" json:"liquidation_id"`
	MovementID     uint            `gorm:"not null" json:"movement_id"`
	ClientID       uint            `gorm:"not null" json:"client_id"`
	ClientName     string          `gorm:"size:200" json:"client_name"`
	MovementDate   time.Time       `gorm:"type:date;not null" json:"movement_date"`
	Kind           string          `gorm:"size:30;not null" json:"kind"`
	MovementAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"movement_amount"`
	Base           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"base"`
	Percentage     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Commission     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"commission"`
}

// TableName specifies the table name for LiquidationDetailLine
func (LiquidationDetailLine) TableName() string {
	return "liquidation_detail_lines"
}

// NetTotal computes gross - advances - cash - discounts + bonuses
func NetTotal(gross, advances, cash, discounts, bonuses decimal.Decimal) decimal.Decimal {
	return gross.Sub(advances).Sub(cash).Sub(discounts).Add(bonuses)
}

// ComputedNet recomputes the net total from the stored components
func (l *Liquidation) ComputedNet() decimal.Decimal {
	return NetTotal(l.TotalCommission, l.Advances, l.CashInHand, l.OtherDiscounts, l.OtherBonuses)
}

// IsAnnulled reports whether the liquidation was annulled
func (l *Liquidation) IsAnnulled() bool {
	return l.State == LiquidationStateAnnulled
}

// ReceiptNumber is the printed identifier of the liquidation receipt
func (l *Liquidation) ReceiptNumber() string {
	return fmt.Sprintf("REC-LIQ-%06d", l.ID)
}

// LiquidationAdjustments are the user-supplied amounts netted at settle time
type LiquidationAdjustments struct {
	Advances         decimal.Decimal `json:"advances"`
	CashInHand       decimal.Decimal `json:"cash_in_hand"`
	OtherDiscounts   decimal.Decimal `json:"other_discounts"`
	OtherBonuses     decimal.Decimal `json:"other_bonuses"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Notes            string          `json:"notes"`
	DeliveryDate     *time.Time      `json:"delivery_date,omitempty"`
}

// MayPay reports whether the liquidation can be marked paid
func (l *Liquidation) MayPay() bool {
	return l.State == LiquidationStateCalculated
}

// MaySignByVendor reports whether the vendor may sign the liquidation
func (l *Liquidation) MaySignByVendor() bool {
	return !l.IsAnnulled()
}
