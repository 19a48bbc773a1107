package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/testutil"
)

func TestRegisterAdvance_RejectsNonPositiveAmounts(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")

	for _, amount := range []string{"-100", "0"} {
		t.Run(amount, func(t *testing.T) {
			_, err := svcs.Adjustment.RegisterAdvance(context.Background(), AdvanceInput{
				VendorID: vendor.ID,
				Amount:   dec(amount),
			}, 1)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.AdvanceEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegisterAdvance(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	ctx := context.Background()

	entry, err := svcs.Adjustment.RegisterAdvance(ctx, AdvanceInput{
		VendorID:       vendor.ID,
		Amount:         dec("1250.455"),
		Reason:         "viaje a Salto",
		DeliveryMethod: "efectivo",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentStatePending, entry.State)
	assertDecimal(t, "1250.46", entry.Amount)
	assert.Equal(t, testutil.Date(2024, time.March, 15), entry.Date)
	require.NotNil(t, entry.CreatedBy)

	dated := testutil.Date(2024, time.February, 2)
	_, err = svcs.Adjustment.RegisterAdvance(ctx, AdvanceInput{VendorID: vendor.ID, Amount: dec("10"), Date: &dated}, 1)
	require.NoError(t, err)

	pending, err := svcs.Adjustment.PendingAdvances(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// newest first
	assert.Equal(t, entry.ID, pending[0].ID)

	_, err = svcs.Adjustment.RegisterAdvance(ctx, AdvanceInput{VendorID: 999, Amount: dec("10")}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterCashInHand(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Kiosco", vendor.ID)
	ctx := context.Background()

	_, err := svcs.Adjustment.RegisterCashInHand(ctx, CashInHandInput{VendorID: vendor.ID, ClientID: client.ID, Amount: dec("-5")}, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svcs.Adjustment.RegisterCashInHand(ctx, CashInHandInput{VendorID: vendor.ID, ClientID: 999, Amount: dec("5")}, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	entry, err := svcs.Adjustment.RegisterCashInHand(ctx, CashInHandInput{
		VendorID: vendor.ID,
		ClientID: client.ID,
		Amount:   dec("800"),
		Concept:  "cobro factura 1021",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentStatePending, entry.State)

	pending, err := svcs.Adjustment.PendingCashInHand(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Client)
	assert.Equal(t, "Kiosco", pending[0].Client.BusinessName)
}

func TestCancelAdjustments(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Kiosco", vendor.ID)
	ctx := context.Background()

	keep := testutil.SeedAdvance(t, db, vendor.ID, testutil.Date(2024, time.March, 1), "300")
	drop := testutil.SeedAdvance(t, db, vendor.ID, testutil.Date(2024, time.March, 2), "700")
	cash := testutil.SeedCash(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 3), "150")

	cancelled, err := svcs.Adjustment.CancelAdvance(ctx, drop.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentStateCancelled, cancelled.State)

	_, err = svcs.Adjustment.CancelAdvance(ctx, drop.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svcs.Adjustment.CancelAdvance(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svcs.Adjustment.CancelCashInHand(ctx, cash.ID, 1)
	require.NoError(t, err)
	_, err = svcs.Adjustment.CancelCashInHand(ctx, cash.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	summary, err := svcs.Adjustment.Summary(ctx, vendor.ID)
	require.NoError(t, err)
	assertDecimal(t, "300", summary.AdvancesPending)
	assertDecimal(t, "0", summary.CashInHandPending)
	assertDecimal(t, "300", summary.TotalPending)
	assert.Equal(t, int64(1), summary.PendingAdvanceRows)
	assert.Zero(t, summary.PendingCashRows)

	pending, err := svcs.Adjustment.PendingAdvances(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, keep.ID, pending[0].ID)
}

func TestCancelAdvance_AppliedEntryIsFinal(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	entry := testutil.SeedAdvance(t, db, vendor.ID, testutil.Date(2024, time.March, 1), "300")
	require.NoError(t, db.Model(entry).Update("state", models.AdjustmentStateApplied).Error)

	_, err := svcs.Adjustment.CancelAdvance(context.Background(), entry.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelAdvance_SettledAfterReadStaysApplied(t *testing.T) {
	f := newLiquidationFixture(t)
	entry := testutil.SeedAdvance(t, f.db, f.vendor.ID, testutil.Date(2024, time.March, 10), "400")

	// a settle commits between the cancel's read and its write
	var settled *models.Liquidation
	fired := false
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:settle_after_read", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "advance_entries" {
			return
		}
		fired = true
		settled = f.settle(t, models.LiquidationAdjustments{Advances: dec("400")})
	}))

	_, err := f.svcs.Adjustment.CancelAdvance(context.Background(), entry.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
	require.NotNil(t, settled)

	var stored models.AdvanceEntry
	require.NoError(t, f.db.First(&stored, entry.ID).Error)
	assert.Equal(t, models.AdjustmentStateApplied, stored.State)
	require.NotNil(t, stored.LiquidationID)
	assert.Equal(t, settled.ID, *stored.LiquidationID)
}

func TestReportStale(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Kiosco", vendor.ID)

	// the cutoff is sixty days before 2024-03-15
	testutil.SeedAdvance(t, db, vendor.ID, testutil.Date(2023, time.December, 1), "100")
	testutil.SeedAdvance(t, db, vendor.ID, testutil.Date(2024, time.January, 2), "50")
	testutil.SeedAdvance(t, db, vendor.ID, testutil.Date(2024, time.March, 1), "900")
	testutil.SeedCash(t, db, vendor.ID, client.ID, testutil.Date(2024, time.March, 1), "40")

	stale, err := svcs.Adjustment.ReportStale(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, vendor.ID, stale[0].VendorID)
	assert.Equal(t, repository.LedgerAdvances, stale[0].Ledger)
	assert.Equal(t, int64(2), stale[0].Entries)
	assertDecimal(t, "150", stale[0].Amount)
}
