package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/looplab/fsm"
)

// LiquidationFSM wraps a liquidation with its state machine.
// calculada → pagada is the only transition; anulada exists as a state
// but no event leads to it.
type LiquidationFSM struct {
	liquidation *models.Liquidation
	fsm         *fsm.FSM
}

// NewLiquidationFSM creates a new liquidation state machine
func NewLiquidationFSM(liquidation *models.Liquidation) *LiquidationFSM {
	lfsm := &LiquidationFSM{
		liquidation: liquidation,
	}

	lfsm.fsm = fsm.NewFSM(
		liquidation.State,
		fsm.Events{
			// calculada → pagada (admin signs on payment)
			{Name: "pay", Src: []string{models.LiquidationStateCalculated}, Dst: models.LiquidationStatePaid},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Pay transitions the liquidation to paid, stamping the payment date and the
// admin signature
func (l *LiquidationFSM) Pay(ctx context.Context, paymentDate time.Time, observations string) error {
	if !l.liquidation.MayPay() {
		return fmt.Errorf("%w: liquidation cannot be paid in state %s", ErrTransitionNotAllowed, l.liquidation.State)
	}

	if err := l.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("failed to pay liquidation: %w", err)
	}

	date := models.DateOnly(paymentDate)
	l.liquidation.State = l.fsm.Current()
	l.liquidation.PaymentDate = &date
	l.liquidation.Observations = observations
	l.liquidation.AdminSigned = true
	return nil
}

// SignByVendor records the vendor signature. It does not change state.
func (l *LiquidationFSM) SignByVendor() error {
	if !l.liquidation.MaySignByVendor() {
		return fmt.Errorf("%w: annulled liquidation cannot be signed", ErrTransitionNotAllowed)
	}
	l.liquidation.VendorSigned = true
	return nil
}
