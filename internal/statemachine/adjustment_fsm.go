package statemachine

import (
	"context"
	"fmt"

	"github.com/feraben/crm-api/internal/models"
	"github.com/looplab/fsm"
)

// AdjustmentFSM guards the single-entry cancel of an advance or cash-in-hand
// entry. Applying happens in bulk inside the settle transaction.
type AdjustmentFSM struct {
	state *string
	fsm   *fsm.FSM
}

func newAdjustmentFSM(state *string) *AdjustmentFSM {
	a := &AdjustmentFSM{state: state}
	a.fsm = fsm.NewFSM(
		*state,
		fsm.Events{
			// pendiente → cancelado
			{Name: "cancel", Src: []string{models.AdjustmentStatePending}, Dst: models.AdjustmentStateCancelled},
		},
		fsm.Callbacks{},
	)
	return a
}

// NewAdvanceFSM creates a state machine bound to an advance entry
func NewAdvanceFSM(entry *models.AdvanceEntry) *AdjustmentFSM {
	return newAdjustmentFSM(&entry.State)
}

// NewCashInHandFSM creates a state machine bound to a cash-in-hand entry
func NewCashInHandFSM(entry *models.CashInHandEntry) *AdjustmentFSM {
	return newAdjustmentFSM(&entry.State)
}

// Cancel transitions a pending entry to cancelled
func (a *AdjustmentFSM) Cancel(ctx context.Context) error {
	return a.fire(ctx, "cancel")
}

func (a *AdjustmentFSM) fire(ctx context.Context, event string) error {
	if !a.fsm.Can(event) {
		return fmt.Errorf("%w: cannot %s entry in state %s", ErrTransitionNotAllowed, event, *a.state)
	}
	if err := a.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s entry: %w", event, err)
	}
	*a.state = a.fsm.Current()
	return nil
}
