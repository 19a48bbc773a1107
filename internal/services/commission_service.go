package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService owns vendor commission policies and the calculator
type CommissionService struct {
	configRepo   repository.CommissionConfigRepository
	movementRepo repository.MovementRepository
	userRepo     repository.UserRepository
	auditSvc     *AuditService
	sellerPct    decimal.Decimal
	now          func() time.Time
}

func NewCommissionService(
	configRepo repository.CommissionConfigRepository,
	movementRepo repository.MovementRepository,
	userRepo repository.UserRepository,
	auditSvc *AuditService,
	defaultSellerPct decimal.Decimal,
) *CommissionService {
	return &CommissionService{
		configRepo:   configRepo,
		movementRepo: movementRepo,
		userRepo:     userRepo,
		auditSvc:     auditSvc,
		sellerPct:    defaultSellerPct,
		now:          time.Now,
	}
}

// ConfigInput is the editable part of a vendor commission policy
type ConfigInput struct {
	Percentage    decimal.Decimal  `json:"percentage"`
	Basis         string           `json:"basis"`
	Minimum       *decimal.Decimal `json:"minimum"`
	Comment       string           `json:"comment"`
	EffectiveFrom *time.Time       `json:"effective_from"`
}

// GetConfig returns the active policy of a vendor
func (s *CommissionService) GetConfig(ctx context.Context, vendorID uint) (*models.VendorCommissionConfig, error) {
	cfg, err := s.configRepo.FindActive(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	return cfg, nil
}

// ListConfigs returns the active policy of every configured vendor
func (s *CommissionService) ListConfigs(ctx context.Context) ([]models.VendorCommissionConfig, error) {
	return s.configRepo.ListActive(ctx)
}

// UpdateConfig replaces the active policy of a vendor, keeping the previous
// one as an inactive history row
func (s *CommissionService) UpdateConfig(ctx context.Context, vendorID uint, input ConfigInput, actorID uint) (*models.VendorCommissionConfig, error) {
	minimum := decimal.Zero
	if input.Minimum != nil {
		minimum = *input.Minimum
	}
	if !models.IsValidPercentage(input.Percentage) {
		return nil, fmt.Errorf("%w: el porcentaje debe estar entre 0 y 100", ErrInvalidConfig)
	}
	if !models.IsValidBasis(input.Basis) {
		return nil, fmt.Errorf("%w: base de cálculo %q desconocida", ErrInvalidConfig, input.Basis)
	}
	if minimum.IsNegative() {
		return nil, fmt.Errorf("%w: el mínimo no puede ser negativo", ErrInvalidConfig)
	}

	if _, err := s.userRepo.FindByID(ctx, vendorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	effective := s.now()
	if input.EffectiveFrom != nil {
		effective = *input.EffectiveFrom
	}

	cfg := &models.VendorCommissionConfig{
		VendorID:      vendorID,
		Percentage:    input.Percentage.Round(2),
		Basis:         input.Basis,
		Minimum:       minimum.Round(2),
		Comment:       input.Comment,
		EffectiveFrom: models.DateOnly(effective),
	}
	if err := s.configRepo.Replace(ctx, cfg); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionUpdate, "VendorCommissionConfig", cfg.ID,
		fmt.Sprintf("Vendedor %d: %s%% sobre %s, mínimo %s", vendorID, cfg.Percentage.StringFixed(2), cfg.Basis, cfg.Minimum.StringFixed(2)))
	return cfg, nil
}

// CreateDefaultConfig gives a newly onboarded user their first policy:
// 0% for admins, the configured seller default otherwise
func (s *CommissionService) CreateDefaultConfig(ctx context.Context, user *models.User, pct *decimal.Decimal) (*models.VendorCommissionConfig, error) {
	percentage := decimal.Zero
	if user.IsSeller() {
		percentage = s.sellerPct
	}
	if pct != nil {
		percentage = *pct
	}
	if !models.IsValidPercentage(percentage) {
		return nil, fmt.Errorf("%w: el porcentaje debe estar entre 0 y 100", ErrInvalidConfig)
	}

	cfg := &models.VendorCommissionConfig{
		VendorID:      user.ID,
		Percentage:    percentage.Round(2),
		Basis:         models.BasisSales,
		Minimum:       decimal.Zero,
		Comment:       "Configuración inicial",
		EffectiveFrom: models.DateOnly(s.now()),
	}
	if err := s.configRepo.Replace(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Calculate previews the commission of a vendor for [from, to]. It only
// reads; the result can be settled later with LiquidationService.Settle.
func (s *CommissionService) Calculate(ctx context.Context, vendorID uint, from, to time.Time) (*models.CommissionCalculation, error) {
	from, to = models.DateOnly(from), models.DateOnly(to)
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	cfg, err := s.GetConfig(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.FindForCommission(ctx, vendorID, from, to, models.EligibleKinds(cfg.Basis))
	if err != nil {
		return nil, err
	}

	calc := &models.CommissionCalculation{
		VendorID:   vendorID,
		PeriodFrom: from,
		PeriodTo:   to,
		Config:     cfg.Snapshot(),
		TotalBase:  decimal.Zero,
		Lines:      make([]models.CommissionLine, 0, len(movements)),
	}
	if cfg.Vendor != nil {
		calc.VendorName = cfg.Vendor.Name
	}

	clients := make(map[uint]struct{})
	for _, m := range movements {
		if !models.IsEligible(cfg.Basis, m.Kind) {
			continue
		}
		base := m.Amount.Abs()
		line := models.CommissionLine{
			MovementID:     m.ID,
			ClientID:       m.ClientID,
			MovementDate:   m.Date,
			Kind:           m.Kind,
			MovementAmount: m.Amount,
			Base:           base,
			Percentage:     cfg.Percentage,
			Commission:     models.ApplyPercentage(base, cfg.Percentage),
		}
		if m.Client != nil {
			line.ClientName = m.Client.BusinessName
		}
		calc.Lines = append(calc.Lines, line)
		calc.TotalBase = calc.TotalBase.Add(base)
		clients[m.ClientID] = struct{}{}
	}

	calc.MovementCount = len(calc.Lines)
	calc.ClientCount = len(clients)
	calc.TotalCommission = decimal.Max(calc.PreFloorCommission(), cfg.Minimum)
	return calc, nil
}
