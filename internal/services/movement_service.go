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

// MovementService records client ledger movements. Movements are never
// updated or deleted once written.
type MovementService struct {
	repo       repository.MovementRepository
	clientRepo repository.ClientRepository
	auditSvc   *AuditService
	now        func() time.Time
}

func NewMovementService(repo repository.MovementRepository, clientRepo repository.ClientRepository, auditSvc *AuditService) *MovementService {
	return &MovementService{
		repo:       repo,
		clientRepo: clientRepo,
		auditSvc:   auditSvc,
		now:        time.Now,
	}
}

// MovementInput describes a new movement. VendorID defaults to the vendor
// attending the client.
type MovementInput struct {
	Date     *time.Time      `json:"date"`
	ClientID uint            `json:"client_id"`
	VendorID *uint           `json:"vendor_id"`
	Kind     string          `json:"kind"`
	Document string          `json:"document"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

// MovementResult is the stored movement plus the resulting client balance
type MovementResult struct {
	Movement *models.Movement `json:"movement"`
	Balance  decimal.Decimal  `json:"balance"`
}

func (s *MovementService) Create(ctx context.Context, input MovementInput, actorID uint) (*MovementResult, error) {
	if !models.IsValidMovementKind(input.Kind) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q desconocido", ErrInvalidInput, input.Kind)
	}
	if input.Amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	client, err := s.clientRepo.FindByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cliente %d", ErrNotFound, input.ClientID)
		}
		return nil, err
	}

	vendorID := input.VendorID
	if vendorID == nil {
		vendorID = client.VendorID
	}
	if vendorID == nil {
		return nil, fmt.Errorf("%w: el cliente no tiene vendedor asignado", ErrInvalidInput)
	}

	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = *input.Date
	}

	movement := &models.Movement{
		Date:     models.DateOnly(date),
		ClientID: client.ID,
		VendorID: *vendorID,
		Kind:     input.Kind,
		Document: input.Document,
		Amount:   models.SignedAmount(input.Kind, input.Amount).Round(2),
		Note:     input.Note,
	}
	if err := s.repo.Create(ctx, movement); err != nil {
		return nil, err
	}

	balance, err := s.repo.CalculateBalance(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCreate, "Movement", movement.ID,
		fmt.Sprintf("%s %s cliente %d", movement.Kind, movement.Amount.StringFixed(2), movement.ClientID))
	return &MovementResult{Movement: movement, Balance: balance}, nil
}

func (s *MovementService) List(ctx context.Context, query *repository.ListQuery) ([]models.Movement, int64, error) {
	return s.repo.List(ctx, query)
}
