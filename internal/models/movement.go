package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is an entry of the client account ledger. Amount is signed:
// positive entries increase what the client owes, negative entries reduce it,
// so the client balance is the sum of amounts ordered by (date, id).
type Movement struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Date      time.Time       `gorm:"type:date;not null;index:idx_movements_vendor_date,priority:2" json:"date"`
	ClientID  uint            `gorm:"not null;index" json:"client_id"`
	VendorID  uint            `gorm:"not null;index:idx_movements_vendor_date,priority:1" json:"vendor_id"`
	Kind      string          `gorm:"size:30;not null;index" json:"kind"`
	Document  string          `gorm:"size:60" json:"document"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Note      string          `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `json:"created_at"`

	// Relationships
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Vendor *User   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// Movement kind constants
const (
	MovementKindSale         = "Venta"           // invoice (debit)
	MovementKindPayment      = "Pago"            // payment received (credit)
	MovementKindCreditNote   = "Nota de Crédito" // credit note (credit)
	MovementKindAdjustment   = "Ajuste"          // manual adjustment, caller decides sign
	MovementKindBalanceReset = "Saldo Inicial"   // opening balance, caller decides sign
)

// TableName specifies the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// IsValidMovementKind reports whether kind is a known movement kind
func IsValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindSale, MovementKindPayment, MovementKindCreditNote,
		MovementKindAdjustment, MovementKindBalanceReset:
		return true
	}
	return false
}

// SignedAmount applies the ledger sign convention for kind. Sales are stored
// positive, payments and credit notes negative. Adjustments and balance resets
// keep the sign they were entered with.
func SignedAmount(kind string, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case MovementKindSale:
		return amount.Abs()
	case MovementKindPayment, MovementKindCreditNote:
		return amount.Abs().Neg()
	default:
		return amount
	}
}

// StatementLine is a movement with the client balance after applying it
type StatementLine struct {
	Movement
	ClientName     string          `json:"client_name"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// DateOnly truncates t to midnight UTC. All ledger and period dates are
// stored this way so range filters compare consistently across dialects.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
