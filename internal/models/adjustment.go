package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Adjustment entry states, shared by advances and cash-in-hand entries
const (
	AdjustmentStatePending   = "pendiente"
	AdjustmentStateApplied   = "aplicado"
	AdjustmentStateCancelled = "cancelado"
)

// AdvanceEntry is money handed to a vendor ahead of their commission
type AdvanceEntry struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	VendorID       uint            `gorm:"not null;index:idx_advances_vendor_state,priority:1" json:"vendor_id"`
	Date           time.Time       `gorm:"type:date;not null" json:"date"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reason         string          `gorm:"type:text" json:"reason"`
	DeliveryMethod string          `gorm:"size:30" json:"delivery_method"`
	Reference      string          `gorm:"size:100" json:"reference"`
	State          string          `gorm:"size:20;not null;index:idx_advances_vendor_state,priority:2" json:"state"`
	LiquidationID  *uint           `gorm:"index" json:"liquidation_id,omitempty"`
	CreatedBy      *uint           `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Vendor *User `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// TableName specifies the table name for AdvanceEntry
func (AdvanceEntry) TableName() string {
	return "advance_entries"
}

// CashInHandEntry is client money collected by a vendor and not yet handed in
type CashInHandEntry struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	VendorID      uint            `gorm:"not null;index:idx_cash_vendor_state,priority:1" json:"vendor_id"`
	ClientID      uint            `gorm:"not null;index" json:"client_id"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Concept       string          `gorm:"type:text" json:"concept"`
	MovementID    *uint           `json:"movement_id,omitempty"`
	State         string          `gorm:"size:20;not null;index:idx_cash_vendor_state,priority:2" json:"state"`
	LiquidationID *uint           `gorm:"index" json:"liquidation_id,omitempty"`
	CreatedBy     *uint           `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Vendor *User   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// TableName specifies the table name for CashInHandEntry
func (CashInHandEntry) TableName() string {
	return "cash_in_hand_entries"
}

// AdjustmentSummary totals the pending adjustments of a vendor
type AdjustmentSummary struct {
	VendorID           uint            `json:"vendor_id"`
	AdvancesPending    decimal.Decimal `json:"advances_pending"`
	CashInHandPending  decimal.Decimal `json:"cash_in_hand_pending"`
	TotalPending       decimal.Decimal `json:"total_pending"`
	PendingAdvanceRows int64           `json:"pending_advance_rows"`
	PendingCashRows    int64           `json:"pending_cash_rows"`
}

// StaleAdjustment reports a vendor with pending entries older than a cutoff
type StaleAdjustment struct {
	VendorID uint            `json:"vendor_id"`
	Ledger   string          `json:"ledger"`
	Entries  int64           `json:"entries"`
	Amount   decimal.Decimal `json:"amount"`
}

// MayCancel reports whether the advance is still pending
func (a *AdvanceEntry) MayCancel() bool {
	return a.State == AdjustmentStatePending
}

// MayCancel reports whether the cash entry is still pending
func (c *CashInHandEntry) MayCancel() bool {
	return c.State == AdjustmentStatePending
}
