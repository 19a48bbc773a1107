package repository

import (
	"context"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository aggregates liquidations for the reporting views. Every
// aggregate excludes annulled liquidations and filters years by period_to.
type ReportRepository interface {
	VendorYearStats(ctx context.Context, vendorID uint, year int) (*models.VendorYearStats, error)
	Dashboard(ctx context.Context, year int) (*models.DashboardSummary, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func (r *reportRepository) activeInYear(ctx context.Context, year int) *gorm.DB {
	start, end := yearBounds(year)
	return r.db.WithContext(ctx).
		Model(&models.Liquidation{}).
		Where("liquidations.state <> ? AND liquidations.period_to >= ? AND liquidations.period_to < ?",
			models.LiquidationStateAnnulled, start, end)
}

func (r *reportRepository) VendorYearStats(ctx context.Context, vendorID uint, year int) (*models.VendorYearStats, error) {
	var row struct {
		Liquidations    int64
		TotalBase       decimal.Decimal
		TotalCommission decimal.Decimal
		TotalNet        decimal.Decimal
		TotalAdvances   decimal.Decimal
		TotalCashInHand decimal.Decimal
		TotalMovements  int64
		TotalClients    int64
	}

	err := r.activeInYear(ctx, year).
		Select(`COUNT(*) AS liquidations,
			COALESCE(SUM(total_base), 0) AS total_base,
			COALESCE(SUM(total_commission), 0) AS total_commission,
			COALESCE(SUM(total_net), 0) AS total_net,
			COALESCE(SUM(advances), 0) AS total_advances,
			COALESCE(SUM(cash_in_hand), 0) AS total_cash_in_hand,
			COALESCE(SUM(movement_count), 0) AS total_movements,
			COALESCE(SUM(client_count), 0) AS total_clients`).
		Where("vendor_id = ?", vendorID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &models.VendorYearStats{
		VendorID:        vendorID,
		Year:            year,
		Liquidations:    row.Liquidations,
		TotalBase:       row.TotalBase,
		TotalCommission: row.TotalCommission,
		TotalNet:        row.TotalNet,
		TotalAdvances:   row.TotalAdvances,
		TotalCashInHand: row.TotalCashInHand,
		AvgCommission:   decimal.Zero,
		TotalMovements:  row.TotalMovements,
		TotalClients:    row.TotalClients,
	}
	if row.Liquidations > 0 {
		stats.AvgCommission = row.TotalCommission.Div(decimal.NewFromInt(row.Liquidations)).Round(2)
	}
	return stats, nil
}

func (r *reportRepository) Dashboard(ctx context.Context, year int) (*models.DashboardSummary, error) {
	var row struct {
		Vendors         int64
		Liquidations    int64
		TotalCommission decimal.Decimal
		TotalNet        decimal.Decimal
		NetPaid         decimal.Decimal
		NetPending      decimal.Decimal
		TotalAdvances   decimal.Decimal
		TotalCashInHand decimal.Decimal
	}

	err := r.activeInYear(ctx, year).
		Select(`COUNT(DISTINCT vendor_id) AS vendors,
			COUNT(*) AS liquidations,
			COALESCE(SUM(total_commission), 0) AS total_commission,
			COALESCE(SUM(total_net), 0) AS total_net,
			COALESCE(SUM(CASE WHEN state = ? THEN total_net ELSE 0 END), 0) AS net_paid,
			COALESCE(SUM(CASE WHEN state = ? THEN total_net ELSE 0 END), 0) AS net_pending,
			COALESCE(SUM(advances), 0) AS total_advances,
			COALESCE(SUM(cash_in_hand), 0) AS total_cash_in_hand`,
			models.LiquidationStatePaid, models.LiquidationStateCalculated).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	var byVendor []models.VendorDashboardRow
	err = r.activeInYear(ctx, year).
		Select(`liquidations.vendor_id AS vendor_id,
			users.name AS vendor_name,
			COUNT(*) AS liquidations,
			COALESCE(SUM(liquidations.total_commission), 0) AS total_commission,
			COALESCE(SUM(liquidations.total_net), 0) AS total_net,
			COALESCE(SUM(CASE WHEN liquidations.state = ? THEN liquidations.total_net ELSE 0 END), 0) AS net_paid`,
			models.LiquidationStatePaid).
		Joins("LEFT JOIN users ON users.id = liquidations.vendor_id").
		Group("liquidations.vendor_id, users.name").
		Order("total_net DESC, vendor_id ASC").
		Scan(&byVendor).Error
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		Year:            year,
		Vendors:         row.Vendors,
		Liquidations:    row.Liquidations,
		TotalCommission: row.TotalCommission,
		TotalNet:        row.TotalNet,
		NetPaid:         row.NetPaid,
		NetPending:      row.NetPending,
		TotalAdvances:   row.TotalAdvances,
		TotalCashInHand: row.TotalCashInHand,
		ByVendor:        byVendor,
	}, nil
}
