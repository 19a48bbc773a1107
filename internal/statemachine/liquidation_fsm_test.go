package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feraben/crm-api/internal/models"
)

func TestLiquidationFSM_Pay(t *testing.T) {
	ctx := context.Background()
	paidOn := time.Date(2024, time.February, 5, 15, 30, 0, 0, time.UTC)

	t.Run("calculated liquidation becomes paid and admin signed", func(t *testing.T) {
		liq := &models.Liquidation{State: models.LiquidationStateCalculated}

		require.NoError(t, NewLiquidationFSM(liq).Pay(ctx, paidOn, "pagado por transferencia"))

		assert.Equal(t, models.LiquidationStatePaid, liq.State)
		assert.True(t, liq.AdminSigned)
		require.NotNil(t, liq.PaymentDate)
		assert.Equal(t, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), *liq.PaymentDate)
		assert.Equal(t, "pagado por transferencia", liq.Observations)
	})

	for _, state := range []string{models.LiquidationStatePaid, models.LiquidationStateAnnulled} {
		t.Run("rejects pay from "+state, func(t *testing.T) {
			liq := &models.Liquidation{State: state}

			err := NewLiquidationFSM(liq).Pay(ctx, paidOn, "")

			assert.ErrorIs(t, err, ErrTransitionNotAllowed)
			assert.Equal(t, state, liq.State)
			assert.Nil(t, liq.PaymentDate)
		})
	}
}

func TestLiquidationFSM_SignByVendor(t *testing.T) {
	t.Run("allowed while calculated or paid", func(t *testing.T) {
		for _, state := range []string{models.LiquidationStateCalculated, models.LiquidationStatePaid} {
			liq := &models.Liquidation{State: state}
			require.NoError(t, NewLiquidationFSM(liq).SignByVendor())
			assert.True(t, liq.VendorSigned)
			assert.Equal(t, state, liq.State)
		}
	})

	t.Run("rejected when annulled", func(t *testing.T) {
		liq := &models.Liquidation{State: models.LiquidationStateAnnulled}
		assert.ErrorIs(t, NewLiquidationFSM(liq).SignByVendor(), ErrTransitionNotAllowed)
		assert.False(t, liq.VendorSigned)
	})
}

func TestAdjustmentFSM(t *testing.T) {
	ctx := context.Background()

	t.Run("pending advance can be cancelled once", func(t *testing.T) {
		entry := &models.AdvanceEntry{State: models.AdjustmentStatePending}
		m := NewAdvanceFSM(entry)

		require.NoError(t, m.Cancel(ctx))
		assert.Equal(t, models.AdjustmentStateCancelled, entry.State)

		assert.ErrorIs(t, m.Cancel(ctx), ErrTransitionNotAllowed)
	})

	t.Run("applied cash entry is terminal", func(t *testing.T) {
		entry := &models.CashInHandEntry{State: models.AdjustmentStateApplied}
		m := NewCashInHandFSM(entry)

		assert.ErrorIs(t, m.Cancel(ctx), ErrTransitionNotAllowed)
		assert.Equal(t, models.AdjustmentStateApplied, entry.State)
	})

	t.Run("cancelled cash entry is terminal", func(t *testing.T) {
		entry := &models.CashInHandEntry{State: models.AdjustmentStateCancelled}
		assert.ErrorIs(t, NewCashInHandFSM(entry).Cancel(ctx), ErrTransitionNotAllowed)
	})
}
