package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/statemachine"
	"github.com/feraben/crm-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Default list sizes
const (
	DefaultVendorLiquidationLimit = 10
	DefaultLiquidationLimit       = 20
)

// LiquidationService settles commission calculations and drives the
// liquidation lifecycle
type LiquidationService struct {
	repo          repository.LiquidationRepository
	commissionSvc *CommissionService
	auditSvc      *AuditService
	vendorLocks   sync.Map // vendor id -> *sync.Mutex
}

func NewLiquidationService(repo repository.LiquidationRepository, commissionSvc *CommissionService, auditSvc *AuditService) *LiquidationService {
	return &LiquidationService{
		repo:          repo,
		commissionSvc: commissionSvc,
		auditSvc:      auditSvc,
	}
}

func (s *LiquidationService) lockVendor(vendorID uint) func() {
	m, _ := s.vendorLocks.LoadOrStore(vendorID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Settle persists calc as a liquidation, nets the adjustments, and marks the
// vendor's pending advances and cash-in-hand entries applied when the
// corresponding amount is positive. Everything happens in one transaction;
// any failure is reported as ErrTransactionFailure and nothing is written.
func (s *LiquidationService) Settle(ctx context.Context, calc *models.CommissionCalculation, adj models.LiquidationAdjustments, actorID uint) (uint, error) {
	if calc == nil {
		return 0, fmt.Errorf("%w: cálculo vacío", ErrInvalidInput)
	}
	for _, v := range []decimal.Decimal{adj.Advances, adj.CashInHand, adj.OtherDiscounts, adj.OtherBonuses} {
		if v.IsNegative() {
			return 0, fmt.Errorf("%w: los ajustes no pueden ser negativos", ErrInvalidAmount)
		}
	}

	liq := buildLiquidation(calc, adj)
	if actorID != 0 {
		liq.CreatedBy = &actorID
	}

	settlement := &repository.Settlement{
		Liquidation:   liq,
		Lines:         buildDetailLines(calc),
		ApplyAdvances: liq.Advances.IsPositive(),
		ApplyCash:     liq.CashInHand.IsPositive(),
	}

	unlock := s.lockVendor(calc.VendorID)
	err := s.repo.CreateSettlement(ctx, settlement)
	unlock()
	if err != nil {
		logger.Error("settle failed", "vendor_id", calc.VendorID, "error", err)
		return 0, fmt.Errorf("%w: %w", ErrTransactionFailure, err)
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionSettle, "Liquidation", liq.ID,
		fmt.Sprintf("Liquidación %s del vendedor %d: bruto %s, neto %s",
			liq.ReceiptNumber(), liq.VendorID, liq.TotalCommission.StringFixed(2), liq.TotalNet.StringFixed(2)))
	return liq.ID, nil
}

// SettlePeriod calculates and settles in one call
func (s *LiquidationService) SettlePeriod(ctx context.Context, vendorID uint, from, to time.Time, adj models.LiquidationAdjustments, actorID uint) (*models.Liquidation, error) {
	calc, err := s.commissionSvc.Calculate(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}
	id, err := s.Settle(ctx, calc, adj, actorID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// buildLiquidation rounds every component before computing the net so the
// stored row satisfies the net formula exactly
func buildLiquidation(calc *models.CommissionCalculation, adj models.LiquidationAdjustments) *models.Liquidation {
	gross := calc.TotalCommission.Round(2)
	advances := adj.Advances.Round(2)
	cash := adj.CashInHand.Round(2)
	discounts := adj.OtherDiscounts.Round(2)
	bonuses := adj.OtherBonuses.Round(2)

	method := adj.PaymentMethod
	if method == "" {
		method = models.DefaultPaymentMethod
	}
	notes := adj.Notes
	if notes == "" {
		notes = models.DefaultLiquidationNotes
	}

	liq := &models.Liquidation{
		VendorID:         calc.VendorID,
		PeriodFrom:       calc.PeriodFrom,
		PeriodTo:         calc.PeriodTo,
		Basis:            calc.Config.Basis,
		Percentage:       calc.Config.Percentage,
		Minimum:          calc.Config.Minimum,
		TotalBase:        calc.TotalBase.Round(2),
		TotalCommission:  gross,
		MovementCount:    calc.MovementCount,
		ClientCount:      calc.ClientCount,
		Advances:         advances,
		CashInHand:       cash,
		OtherDiscounts:   discounts,
		OtherBonuses:     bonuses,
		TotalNet:         models.NetTotal(gross, advances, cash, discounts, bonuses),
		PaymentMethod:    method,
		PaymentReference: adj.PaymentReference,
		Notes:            notes,
		State:            models.LiquidationStateCalculated,
	}
	if adj.DeliveryDate != nil {
		d := models.DateOnly(*adj.DeliveryDate)
		liq.DeliveryDate = &d
	}
	return liq
}

func buildDetailLines(calc *models.CommissionCalculation) []models.LiquidationDetailLine {
	lines := make([]models.LiquidationDetailLine, 0, len(calc.Lines))
	for _, l := range calc.Lines {
		lines = append(lines, models.LiquidationDetailLine{
			MovementID:     l.MovementID,
			ClientID:       l.ClientID,
			ClientName:     l.ClientName,
			MovementDate:   l.MovementDate,
			Kind:           l.Kind,
			MovementAmount: l.MovementAmount.Round(2),
			Base:           l.Base.Round(2),
			Percentage:     l.Percentage,
			Commission:     l.Commission.Round(2),
		})
	}
	return lines
}

// Get returns a liquidation with its lines and applied entries
func (s *LiquidationService) Get(ctx context.Context, id uint) (*models.Liquidation, error) {
	liq, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return liq, nil
}

// List returns liquidations newest period first. limit <= 0 picks the
// default for the vendor or global listing.
func (s *LiquidationService) List(ctx context.Context, vendorID *uint, limit int) ([]models.Liquidation, error) {
	if limit <= 0 {
		limit = DefaultLiquidationLimit
		if vendorID != nil {
			limit = DefaultVendorLiquidationLimit
		}
	}
	return s.repo.List(ctx, vendorID, limit)
}

func (s *LiquidationService) find(ctx context.Context, id uint) (*models.Liquidation, error) {
	liq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return liq, nil
}

// MarkPaid moves a calculated liquidation to paid and records the admin
// signature
func (s *LiquidationService) MarkPaid(ctx context.Context, id uint, paymentDate *time.Time, observations string, actorID uint) (*models.Liquidation, error) {
	if paymentDate == nil || paymentDate.IsZero() {
		return nil, ErrPaymentDateRequired
	}

	liq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewLiquidationFSM(liq).Pay(ctx, *paymentDate, observations); err != nil {
		return nil, transitionError(err)
	}
	if err := stillApplies(s.repo.MarkPaid(ctx, id, *liq.PaymentDate, liq.Observations)); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionPay, "Liquidation", liq.ID,
		fmt.Sprintf("Liquidación %s pagada el %s", liq.ReceiptNumber(), liq.PaymentDate.Format("2006-01-02")))
	return s.find(ctx, id)
}

// MarkVendorSigned records the vendor signature
func (s *LiquidationService) MarkVendorSigned(ctx context.Context, id uint, actorID uint) (*models.Liquidation, error) {
	liq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewLiquidationFSM(liq).SignByVendor(); err != nil {
		return nil, transitionError(err)
	}
	if err := stillApplies(s.repo.MarkVendorSigned(ctx, id)); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionSign, "Liquidation", liq.ID, "Firmada por el vendedor")
	return s.find(ctx, id)
}

// stillApplies reports ErrInvalidState when a guarded update matched no row
// because another request changed the state after it was read
func stillApplies(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: la liquidación cambió de estado", ErrInvalidState)
	}
	return nil
}
