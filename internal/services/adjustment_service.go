package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/statemachine"
	"github.com/feraben/crm-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StaleAdjustmentAge is how old a pending entry must be before the
// scheduled check reports it
const StaleAdjustmentAge = 60 * 24 * time.Hour

// AdjustmentService manages vendor advances and cash-in-hand entries
type AdjustmentService struct {
	repo       repository.AdjustmentRepository
	userRepo   repository.UserRepository
	clientRepo repository.ClientRepository
	auditSvc   *AuditService
	now        func() time.Time
}

func NewAdjustmentService(
	repo repository.AdjustmentRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	auditSvc *AuditService,
) *AdjustmentService {
	return &AdjustmentService{
		repo:       repo,
		userRepo:   userRepo,
		clientRepo: clientRepo,
		auditSvc:   auditSvc,
		now:        time.Now,
	}
}

// AdvanceInput describes a new advance
type AdvanceInput struct {
	VendorID       uint            `json:"vendor_id"`
	Date           *time.Time      `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	DeliveryMethod string          `json:"delivery_method"`
	Reference      string          `json:"reference"`
}

// CashInHandInput describes client money kept by a vendor
type CashInHandInput struct {
	VendorID   uint            `json:"vendor_id"`
	ClientID   uint            `json:"client_id"`
	Date       *time.Time      `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Concept    string          `json:"concept"`
	MovementID *uint           `json:"movement_id"`
}

func (s *AdjustmentService) entryDate(d *time.Time) time.Time {
	if d == nil || d.IsZero() {
		return models.DateOnly(s.now())
	}
	return models.DateOnly(*d)
}

func (s *AdjustmentService) ensureVendor(ctx context.Context, vendorID uint) error {
	if _, err := s.userRepo.FindByID(ctx, vendorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: vendedor %d", ErrNotFound, vendorID)
		}
		return err
	}
	return nil
}

// RegisterAdvance records a pending advance
func (s *AdjustmentService) RegisterAdvance(ctx context.Context, input AdvanceInput, actorID uint) (*models.AdvanceEntry, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := s.ensureVendor(ctx, input.VendorID); err != nil {
		return nil, err
	}

	entry := &models.AdvanceEntry{
		VendorID:       input.VendorID,
		Date:           s.entryDate(input.Date),
		Amount:         input.Amount.Round(2),
		Reason:         input.Reason,
		DeliveryMethod: input.DeliveryMethod,
		Reference:      input.Reference,
		State:          models.AdjustmentStatePending,
	}
	if actorID != 0 {
		entry.CreatedBy = &actorID
	}
	if err := s.repo.CreateAdvance(ctx, entry); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCreate, "AdvanceEntry", entry.ID,
		fmt.Sprintf("Adelanto de %s al vendedor %d", entry.Amount.StringFixed(2), entry.VendorID))
	return entry, nil
}

// RegisterCashInHand records a pending cash-in-hand entry
func (s *AdjustmentService) RegisterCashInHand(ctx context.Context, input CashInHandInput, actorID uint) (*models.CashInHandEntry, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := s.ensureVendor(ctx, input.VendorID); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cliente %d", ErrNotFound, input.ClientID)
		}
		return nil, err
	}

	entry := &models.CashInHandEntry{
		VendorID:   input.VendorID,
		ClientID:   input.ClientID,
		Date:       s.entryDate(input.Date),
		Amount:     input.Amount.Round(2),
		Concept:    input.Concept,
		MovementID: input.MovementID,
		State:      models.AdjustmentStatePending,
	}
	if actorID != 0 {
		entry.CreatedBy = &actorID
	}
	if err := s.repo.CreateCash(ctx, entry); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCreate, "CashInHandEntry", entry.ID,
		fmt.Sprintf("Dinero en mano %s del cliente %d, vendedor %d", entry.Amount.StringFixed(2), entry.ClientID, entry.VendorID))
	return entry, nil
}

// PendingAdvances lists pending advances newest first
func (s *AdjustmentService) PendingAdvances(ctx context.Context, vendorID uint) ([]models.AdvanceEntry, error) {
	return s.repo.PendingAdvances(ctx, vendorID)
}

// PendingCashInHand lists pending cash-in-hand entries newest first
func (s *AdjustmentService) PendingCashInHand(ctx context.Context, vendorID uint) ([]models.CashInHandEntry, error) {
	return s.repo.PendingCash(ctx, vendorID)
}

// Summary totals the pending entries of both ledgers
func (s *AdjustmentService) Summary(ctx context.Context, vendorID uint) (*models.AdjustmentSummary, error) {
	advances, advanceRows, err := s.repo.SumPendingAdvances(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	cash, cashRows, err := s.repo.SumPendingCash(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return &models.AdjustmentSummary{
		VendorID:           vendorID,
		AdvancesPending:    advances,
		CashInHandPending:  cash,
		TotalPending:       advances.Add(cash),
		PendingAdvanceRows: advanceRows,
		PendingCashRows:    cashRows,
	}, nil
}

// CancelAdvance cancels a pending advance
func (s *AdjustmentService) CancelAdvance(ctx context.Context, id uint, actorID uint) (*models.AdvanceEntry, error) {
	entry, err := s.repo.FindAdvance(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := statemachine.NewAdvanceFSM(entry).Cancel(ctx); err != nil {
		return nil, transitionError(err)
	}
	if err := cancelled(s.repo.CancelAdvance(ctx, id)); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCancel, "AdvanceEntry", entry.ID, "Adelanto cancelado")
	return entry, nil
}

// CancelCashInHand cancels a pending cash-in-hand entry
func (s *AdjustmentService) CancelCashInHand(ctx context.Context, id uint, actorID uint) (*models.CashInHandEntry, error) {
	entry, err := s.repo.FindCash(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := statemachine.NewCashInHandFSM(entry).Cancel(ctx); err != nil {
		return nil, transitionError(err)
	}
	if err := cancelled(s.repo.CancelCash(ctx, id)); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCancel, "CashInHandEntry", entry.ID, "Dinero en mano cancelado")
	return entry, nil
}

// ReportStale logs every vendor holding pending entries older than
// StaleAdjustmentAge. It runs as a scheduled job.
func (s *AdjustmentService) ReportStale(ctx context.Context) ([]models.StaleAdjustment, error) {
	cutoff := models.DateOnly(s.now().Add(-StaleAdjustmentAge))
	stale, err := s.repo.FindStalePending(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, st := range stale {
		logger.Warn("pending adjustments not settled",
			"vendor_id", st.VendorID,
			"ledger", st.Ledger,
			"entries", st.Entries,
			"amount", st.Amount.StringFixed(2),
			"before", cutoff.Format("2006-01-02"),
		)
	}
	return stale, nil
}

// cancelled turns a conditional cancel that matched no pending row into
// ErrInvalidState. A settle may have applied the entry after it was read.
func cancelled(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: el ajuste ya no está pendiente", ErrInvalidState)
	}
	return nil
}

// transitionError maps a rejected state transition to ErrInvalidState
func transitionError(err error) error {
	if errors.Is(err, statemachine.ErrTransitionNotAllowed) {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return err
}
