package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/testutil"
)

func TestSuggestedPeriods(t *testing.T) {
	periods := SuggestedPeriods(fixedNow)
	require.Len(t, periods, 4)

	expected := []struct {
		label    string
		from, to time.Time
	}{
		{"Mes actual", testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 31)},
		{"Mes anterior", testutil.Date(2024, time.February, 1), testutil.Date(2024, time.February, 29)},
		{"Últimos 30 días", testutil.Date(2024, time.February, 14), testutil.Date(2024, time.March, 15)},
		{"Año actual", testutil.Date(2024, time.January, 1), testutil.Date(2024, time.March, 15)},
	}
	for i, want := range expected {
		assert.Equal(t, want.label, periods[i].Label)
		assert.True(t, want.from.Equal(periods[i].From), "%s from: %s", want.label, periods[i].From)
		assert.True(t, want.to.Equal(periods[i].To), "%s to: %s", want.label, periods[i].To)
	}
}

func TestSuggestedPeriods_JanuaryRollsBackYear(t *testing.T) {
	periods := SuggestedPeriods(time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC))
	prev := periods[1]
	assert.True(t, testutil.Date(2024, time.December, 1).Equal(prev.From))
	assert.True(t, testutil.Date(2024, time.December, 31).Equal(prev.To))
}

func TestVendorYearStatsAndDashboard(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()
	beto := testutil.SeedVendor(t, f.db, "beto")
	testutil.SeedConfig(t, f.db, beto.ID, "5", "100", models.BasisSales)

	paid := f.settle(t, models.LiquidationAdjustments{})
	payDay := testutil.Date(2024, time.April, 2)
	_, err := f.svcs.Liquidation.MarkPaid(ctx, paid.ID, &payDay, "", 1)
	require.NoError(t, err)

	annulled := f.settle(t, models.LiquidationAdjustments{})
	require.NoError(t, f.db.Model(&models.Liquidation{}).Where("id = ?", annulled.ID).
		Update("state", models.LiquidationStateAnnulled).Error)

	_, err = f.svcs.Liquidation.SettlePeriod(ctx, f.vendor.ID,
		testutil.Date(2023, time.December, 1), testutil.Date(2023, time.December, 31), models.LiquidationAdjustments{}, 1)
	require.NoError(t, err)

	_, err = f.svcs.Liquidation.SettlePeriod(ctx, beto.ID, march1, march31, models.LiquidationAdjustments{}, 1)
	require.NoError(t, err)

	stats, err := f.svcs.Report.VendorYearStats(ctx, f.vendor.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Liquidations)
	assertDecimal(t, "50000", stats.TotalBase)
	assertDecimal(t, "7500", stats.TotalCommission)
	assertDecimal(t, "7500", stats.TotalNet)
	assertDecimal(t, "7500", stats.AvgCommission)
	assert.Equal(t, int64(2), stats.TotalMovements)
	assert.Equal(t, int64(1), stats.TotalClients)

	previous, err := f.svcs.Report.VendorYearStats(ctx, f.vendor.ID, 2023)
	require.NoError(t, err)
	assert.Equal(t, int64(1), previous.Liquidations)
	assertDecimal(t, "0", previous.TotalCommission)

	empty, err := f.svcs.Report.VendorYearStats(ctx, f.vendor.ID, 2020)
	require.NoError(t, err)
	assert.Zero(t, empty.Liquidations)
	assertDecimal(t, "0", empty.AvgCommission)

	_, err = f.svcs.Report.VendorYearStats(ctx, f.vendor.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	dash, err := f.svcs.Report.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2024, dash.Year)
	assert.Equal(t, int64(2), dash.Vendors)
	assert.Equal(t, int64(2), dash.Liquidations)
	assertDecimal(t, "7600", dash.TotalCommission)
	assertDecimal(t, "7500", dash.NetPaid)
	assertDecimal(t, "100", dash.NetPending)
	require.Len(t, dash.ByVendor, 2)
	assert.Equal(t, "ana", dash.ByVendor[0].VendorName)
	assert.Equal(t, "beto", dash.ByVendor[1].VendorName)
	assertDecimal(t, "7500", dash.ByVendor[0].NetPaid)
	assertDecimal(t, "0", dash.ByVendor[1].NetPaid)
}

func TestClientStatement(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Almacén Sur", vendor.ID)
	ctx := context.Background()

	// inserted out of order on purpose
	testutil.SeedMovement(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 10), models.MovementKindPayment, "-400")
	testutil.SeedMovement(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 1), models.MovementKindSale, "1000")
	testutil.SeedMovement(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 12), models.MovementKindCreditNote, "-100")

	statement, err := svcs.Client.Statement(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, statement.Lines, 3)
	assertDecimal(t, "1000", statement.Lines[0].RunningBalance)
	assertDecimal(t, "600", statement.Lines[1].RunningBalance)
	assertDecimal(t, "500", statement.Lines[2].RunningBalance)
	assertDecimal(t, "500", statement.Balance)

	html, err := svcs.Report.ClientStatementHTML(ctx, client.ID)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Almacén Sur")
	assert.Contains(t, string(html), "Saldo actual: 500.00")
	assert.Contains(t, string(html), "15/03/2024")

	_, err = svcs.Client.Statement(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
