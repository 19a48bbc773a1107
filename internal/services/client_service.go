package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientService manages clients and their account statements
type ClientService struct {
	repo         repository.ClientRepository
	movementRepo repository.MovementRepository
	userRepo     repository.UserRepository
	auditSvc     *AuditService
}

func NewClientService(repo repository.ClientRepository, movementRepo repository.MovementRepository, userRepo repository.UserRepository, auditSvc *AuditService) *ClientService {
	return &ClientService{
		repo:         repo,
		movementRepo: movementRepo,
		userRepo:     userRepo,
		auditSvc:     auditSvc,
	}
}

// ClientInput describes a new client
type ClientInput struct {
	RUT          string `json:"rut"`
	BusinessName string `json:"business_name"`
	TradeName    string `json:"trade_name"`
	VendorID     *uint  `json:"vendor_id"`
}

// Statement is the account statement of a client
type Statement struct {
	Client  *models.Client         `json:"client"`
	Lines   []models.StatementLine `json:"lines"`
	Balance decimal.Decimal        `json:"balance"`
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, query *repository.ListQuery) ([]models.Client, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ClientService) ByVendor(ctx context.Context, vendorID uint) ([]models.Client, error) {
	return s.repo.FindByVendor(ctx, vendorID)
}

func (s *ClientService) Create(ctx context.Context, input ClientInput, actorID uint) (*models.Client, error) {
	name := strings.TrimSpace(input.BusinessName)
	if name == "" {
		return nil, fmt.Errorf("%w: la razón social es obligatoria", ErrInvalidInput)
	}
	if input.VendorID != nil {
		if _, err := s.userRepo.FindByID(ctx, *input.VendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: vendedor %d", ErrNotFound, *input.VendorID)
			}
			return nil, err
		}
	}

	client := &models.Client{
		RUT:          strings.TrimSpace(input.RUT),
		BusinessName: name,
		TradeName:    strings.TrimSpace(input.TradeName),
		VendorID:     input.VendorID,
		Active:       true,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCreate, "Client", client.ID, "Cliente creado: "+client.BusinessName)
	return client, nil
}

// Statement returns the client movements with the running balance after
// each one, in (date, id) order
func (s *ClientService) Statement(ctx context.Context, clientID uint) (*Statement, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	balance := decimal.Zero
	lines := make([]models.StatementLine, 0, len(movements))
	for _, m := range movements {
		balance = balance.Add(m.Amount)
		lines = append(lines, models.StatementLine{
			Movement:       m,
			ClientName:     client.BusinessName,
			RunningBalance: balance,
		})
	}
	return &Statement{Client: client, Lines: lines, Balance: balance}, nil
}
