package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/testutil"
)

type liquidationFixture struct {
	db     *gorm.DB
	svcs   *Services
	vendor *models.User
	client *models.Client
}

// newLiquidationFixture seeds a vendor on 15% of sales with 50000 invoiced in
// March 2024, which yields a gross commission of 7500
func newLiquidationFixture(t *testing.T) *liquidationFixture {
	t.Helper()
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Almacén Sur", vendor.ID)
	testutil.SeedConfig(t, db, vendor.ID, "15", "0", models.BasisSales)
	testutil.SeedMovement(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 4), models.MovementKindSale, "20000")
	testutil.SeedMovement(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 20), models.MovementKindSale, "30000")
	return &liquidationFixture{db: db, svcs: svcs, vendor: vendor, client: client}
}

func (f *liquidationFixture) settle(t *testing.T, adj models.LiquidationAdjustments) *models.Liquidation {
	t.Helper()
	liq, err := f.svcs.Liquidation.SettlePeriod(context.Background(), f.vendor.ID, march1, march31, adj, 1)
	require.NoError(t, err)
	return liq
}

func TestSettle_NegativeNetIsPersisted(t *testing.T) {
	f := newLiquidationFixture(t)
	testutil.SeedAdvance(t, f.db, f.vendor.ID, testutil.Date(2024, time.March, 10), "15000")

	liq := f.settle(t, models.LiquidationAdjustments{Advances: dec("15000")})

	assertDecimal(t, "7500", liq.TotalCommission)
	assertDecimal(t, "15000", liq.Advances)
	assertDecimal(t, "-7500", liq.TotalNet)
	assert.Equal(t, models.LiquidationStateCalculated, liq.State)
	assert.False(t, liq.AdminSigned)
	assert.False(t, liq.VendorSigned)
	assert.Equal(t, models.DefaultPaymentMethod, liq.PaymentMethod)
	assert.Equal(t, models.DefaultLiquidationNotes, liq.Notes)
	assert.Equal(t, 2, liq.MovementCount)
	assert.Equal(t, 1, liq.ClientCount)
	require.Len(t, liq.Lines, 2)
	require.Len(t, liq.AppliedAdvances, 1)

	var stored models.Liquidation
	require.NoError(t, f.db.First(&stored, liq.ID).Error)
	assertDecimal(t, "-7500", stored.TotalNet)
}

func TestSettle_AppliesOnlyLedgersWithPositiveAmount(t *testing.T) {
	f := newLiquidationFixture(t)
	adv1 := testutil.SeedAdvance(t, f.db, f.vendor.ID, testutil.Date(2024, time.March, 2), "200")
	adv2 := testutil.SeedAdvance(t, f.db, f.vendor.ID, testutil.Date(2024, time.March, 9), "100")
	cash := testutil.SeedCash(t, f.db, f.vendor.ID, f.client.ID, testutil.Date(2024, time.March, 11), "80")

	liq := f.settle(t, models.LiquidationAdjustments{Advances: dec("300")})

	ctx := context.Background()
	pending, err := f.svcs.Adjustment.PendingAdvances(ctx, f.vendor.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	for _, id := range []uint{adv1.ID, adv2.ID} {
		var entry models.AdvanceEntry
		require.NoError(t, f.db.First(&entry, id).Error)
		assert.Equal(t, models.AdjustmentStateApplied, entry.State)
		require.NotNil(t, entry.LiquidationID)
		assert.Equal(t, liq.ID, *entry.LiquidationID)
	}

	var stillPending models.CashInHandEntry
	require.NoError(t, f.db.First(&stillPending, cash.ID).Error)
	assert.Equal(t, models.AdjustmentStatePending, stillPending.State)
	assert.Nil(t, stillPending.LiquidationID)
}

func TestSettle_AppliesPendingCashInHand(t *testing.T) {
	f := newLiquidationFixture(t)
	other := testutil.SeedClient(t, f.db, "Kiosco Norte", f.vendor.ID)
	c1 := testutil.SeedCash(t, f.db, f.vendor.ID, f.client.ID, testutil.Date(2024, time.March, 6), "150")
	c2 := testutil.SeedCash(t, f.db, f.vendor.ID, other.ID, testutil.Date(2024, time.March, 18), "80")
	adv := testutil.SeedAdvance(t, f.db, f.vendor.ID, testutil.Date(2024, time.March, 8), "500")

	liq := f.settle(t, models.LiquidationAdjustments{CashInHand: dec("230")})
	assertDecimal(t, "7270", liq.TotalNet)

	ctx := context.Background()
	pending, err := f.svcs.Adjustment.PendingCashInHand(ctx, f.vendor.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	for _, id := range []uint{c1.ID, c2.ID} {
		var entry models.CashInHandEntry
		require.NoError(t, f.db.First(&entry, id).Error)
		assert.Equal(t, models.AdjustmentStateApplied, entry.State)
		require.NotNil(t, entry.LiquidationID)
		assert.Equal(t, liq.ID, *entry.LiquidationID)
	}

	require.Len(t, liq.AppliedCash, 2)
	assert.Equal(t, c1.ID, liq.AppliedCash[0].ID)
	assert.Equal(t, c2.ID, liq.AppliedCash[1].ID)
	require.NotNil(t, liq.AppliedCash[1].Client)
	assert.Equal(t, "Kiosco Norte", liq.AppliedCash[1].Client.BusinessName)
	assert.Empty(t, liq.AppliedAdvances)

	var untouched models.AdvanceEntry
	require.NoError(t, f.db.First(&untouched, adv.ID).Error)
	assert.Equal(t, models.AdjustmentStatePending, untouched.State)
}

func TestSettle_NetFormula(t *testing.T) {
	tests := []struct {
		name string
		adj  models.LiquidationAdjustments
		net  string
	}{
		{"no adjustments", models.LiquidationAdjustments{}, "7500"},
		{"advances and cash", models.LiquidationAdjustments{Advances: dec("1000"), CashInHand: dec("250.50")}, "6249.50"},
		{"discounts and bonuses", models.LiquidationAdjustments{OtherDiscounts: dec("300"), OtherBonuses: dec("125.25")}, "7325.25"},
		{"all components", models.LiquidationAdjustments{Advances: dec("500"), CashInHand: dec("500"), OtherDiscounts: dec("500"), OtherBonuses: dec("1000")}, "7000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLiquidationFixture(t)
			liq := f.settle(t, tt.adj)
			assertDecimal(t, tt.net, liq.TotalNet)
			assertDecimal(t, tt.net, liq.ComputedNet())
		})
	}
}

func TestSettle_RejectsNegativeAdjustments(t *testing.T) {
	f := newLiquidationFixture(t)

	_, err := f.svcs.Liquidation.SettlePeriod(context.Background(), f.vendor.ID, march1, march31,
		models.LiquidationAdjustments{OtherDiscounts: dec("-1")}, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	var count int64
	require.NoError(t, f.db.Model(&models.Liquidation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSettle_FreezesCalculationSnapshot(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()

	calc, err := f.svcs.Commission.Calculate(ctx, f.vendor.ID, march1, march31)
	require.NoError(t, err)

	// the policy changes between preview and settle
	_, err = f.svcs.Commission.UpdateConfig(ctx, f.vendor.ID, ConfigInput{Percentage: dec("50"), Basis: models.BasisSales}, 1)
	require.NoError(t, err)

	id, err := f.svcs.Liquidation.Settle(ctx, calc, models.LiquidationAdjustments{}, 1)
	require.NoError(t, err)

	liq, err := f.svcs.Liquidation.Get(ctx, id)
	require.NoError(t, err)
	assertDecimal(t, "15", liq.Percentage)
	assertDecimal(t, "7500", liq.TotalCommission)
	for _, line := range liq.Lines {
		assertDecimal(t, "15", line.Percentage)
	}
}

func TestSettle_IsAtomic(t *testing.T) {
	f := newLiquidationFixture(t)
	testutil.SeedAdvance(t, f.db, f.vendor.ID, testutil.Date(2024, time.March, 10), "400")

	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:fail_advances", func(tx *gorm.DB) {
		if tx.Statement.Table == "advance_entries" {
			_ = tx.AddError(errors.New("disk I/O error"))
		}
	}))

	_, err := f.svcs.Liquidation.SettlePeriod(context.Background(), f.vendor.ID, march1, march31,
		models.LiquidationAdjustments{Advances: dec("400")}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailure)

	var liquidations, lines int64
	require.NoError(t, f.db.Model(&models.Liquidation{}).Count(&liquidations).Error)
	require.NoError(t, f.db.Model(&models.LiquidationDetailLine{}).Count(&lines).Error)
	assert.Zero(t, liquidations)
	assert.Zero(t, lines)

	pending, err := f.svcs.Adjustment.PendingAdvances(context.Background(), f.vendor.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestMarkPaid(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{})
	ctx := context.Background()

	_, err := f.svcs.Liquidation.MarkPaid(ctx, liq.ID, nil, "", 1)
	assert.ErrorIs(t, err, ErrPaymentDateRequired)

	payDay := testutil.Date(2024, time.April, 5)
	_, err = f.svcs.Liquidation.MarkPaid(ctx, 9999, &payDay, "", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	paid, err := f.svcs.Liquidation.MarkPaid(ctx, liq.ID, &payDay, "transferencia BROU", 1)
	require.NoError(t, err)
	assert.Equal(t, models.LiquidationStatePaid, paid.State)
	assert.True(t, paid.AdminSigned)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, payDay.Equal(*paid.PaymentDate))
	assert.Equal(t, "transferencia BROU", paid.Observations)

	_, err = f.svcs.Liquidation.MarkPaid(ctx, liq.ID, &payDay, "", 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	stored, err := f.svcs.Liquidation.Get(ctx, liq.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LiquidationStatePaid, stored.State)
	assertDecimal(t, "7500", stored.TotalNet)
}

func TestMarkVendorSigned(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{})
	ctx := context.Background()

	signed, err := f.svcs.Liquidation.MarkVendorSigned(ctx, liq.ID, f.vendor.ID)
	require.NoError(t, err)
	assert.True(t, signed.VendorSigned)
	assert.Equal(t, models.LiquidationStateCalculated, signed.State)

	require.NoError(t, f.db.Model(&models.Liquidation{}).Where("id = ?", liq.ID).
		Update("state", models.LiquidationStateAnnulled).Error)

	_, err = f.svcs.Liquidation.MarkVendorSigned(ctx, liq.ID, f.vendor.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	payDay := testutil.Date(2024, time.April, 5)
	_, err = f.svcs.Liquidation.MarkPaid(ctx, liq.ID, &payDay, "", 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

// runOnceAfterRead registers a query hook that calls fn the first time the
// liquidations table is read
func runOnceAfterRead(t *testing.T, db *gorm.DB, fn func()) {
	t.Helper()
	fired := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:after_liquidation_read", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "liquidations" {
			return
		}
		fired = true
		fn()
	}))
}

func TestMarkVendorSigned_KeepsConcurrentPayment(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{})
	ctx := context.Background()
	payDay := testutil.Date(2024, time.April, 5)

	runOnceAfterRead(t, f.db, func() {
		_, err := f.svcs.Liquidation.MarkPaid(ctx, liq.ID, &payDay, "transferencia", 1)
		require.NoError(t, err)
	})

	signed, err := f.svcs.Liquidation.MarkVendorSigned(ctx, liq.ID, f.vendor.ID)
	require.NoError(t, err)

	var stored models.Liquidation
	require.NoError(t, f.db.First(&stored, liq.ID).Error)
	for _, got := range []*models.Liquidation{signed, &stored} {
		assert.Equal(t, models.LiquidationStatePaid, got.State)
		require.NotNil(t, got.PaymentDate)
		assert.True(t, payDay.Equal(*got.PaymentDate))
		assert.True(t, got.AdminSigned)
		assert.True(t, got.VendorSigned)
		assert.Equal(t, "transferencia", got.Observations)
	}
}

func TestMarkPaid_SecondConcurrentPaymentRejected(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{})
	ctx := context.Background()
	first := testutil.Date(2024, time.April, 5)
	second := testutil.Date(2024, time.April, 9)

	runOnceAfterRead(t, f.db, func() {
		_, err := f.svcs.Liquidation.MarkPaid(ctx, liq.ID, &first, "primero", 1)
		require.NoError(t, err)
	})

	_, err := f.svcs.Liquidation.MarkPaid(ctx, liq.ID, &second, "segundo", 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	var stored models.Liquidation
	require.NoError(t, f.db.First(&stored, liq.ID).Error)
	require.NotNil(t, stored.PaymentDate)
	assert.True(t, first.Equal(*stored.PaymentDate))
	assert.Equal(t, "primero", stored.Observations)
}

func TestListLiquidations(t *testing.T) {
	f := newLiquidationFixture(t)
	other := testutil.SeedVendor(t, f.db, "beto")
	testutil.SeedConfig(t, f.db, other.ID, "5", "100", models.BasisSales)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		f.settle(t, models.LiquidationAdjustments{})
	}
	_, err := f.svcs.Liquidation.SettlePeriod(ctx, other.ID, march1, march31, models.LiquidationAdjustments{}, 1)
	require.NoError(t, err)

	mine, err := f.svcs.Liquidation.List(ctx, &f.vendor.ID, 0)
	require.NoError(t, err)
	assert.Len(t, mine, DefaultVendorLiquidationLimit)
	for _, l := range mine {
		assert.Equal(t, f.vendor.ID, l.VendorID)
	}

	all, err := f.svcs.Liquidation.List(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 13)

	few, err := f.svcs.Liquidation.List(ctx, nil, 3)
	require.NoError(t, err)
	assert.Len(t, few, 3)
}
