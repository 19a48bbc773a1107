package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorYearStats aggregates the non-annulled liquidations of a vendor for a year
type VendorYearStats struct {
	VendorID        uint            `json:"vendor_id"`
	Year            int             `json:"year"`
	Liquidations    int64           `json:"liquidations"`
	TotalBase       decimal.Decimal `json:"total_base"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalAdvances   decimal.Decimal `json:"total_advances"`
	TotalCashInHand decimal.Decimal `json:"total_cash_in_hand"`
	AvgCommission   decimal.Decimal `json:"avg_commission"`
	TotalMovements  int64           `json:"total_movements"`
	TotalClients    int64           `json:"total_clients"`
}

// DashboardSummary aggregates the non-annulled liquidations of the current year
type DashboardSummary struct {
	Year            int                  `json:"year"`
	Vendors         int64                `json:"vendors"`
	Liquidations    int64                `json:"liquidations"`
	TotalCommission decimal.Decimal      `json:"total_commission"`
	TotalNet        decimal.Decimal      `json:"total_net"`
	NetPaid         decimal.Decimal      `json:"net_paid"`
	NetPending      decimal.Decimal      `json:"net_pending"`
	TotalAdvances   decimal.Decimal      `json:"total_advances"`
	TotalCashInHand decimal.Decimal      `json:"total_cash_in_hand"`
	ByVendor        []VendorDashboardRow `json:"by_vendor"`
}

// VendorDashboardRow is the per-vendor slice of the dashboard
type VendorDashboardRow struct {
	VendorID        uint            `json:"vendor_id"`
	VendorName      string          `json:"vendor_name"`
	Liquidations    int64           `json:"liquidations"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalNet        decimal.Decimal `json:"total_net"`
	NetPaid         decimal.Decimal `json:"net_paid"`
}

// SuggestedPeriod is a preset date range offered to the settle screen
type SuggestedPeriod struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}
