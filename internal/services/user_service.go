package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/shopspring/decimal"
)

// UserService handles the user picker and vendor onboarding
type UserService struct {
	repo          repository.UserRepository
	commissionSvc *CommissionService
	auditSvc      *AuditService
}

func NewUserService(repo repository.UserRepository, commissionSvc *CommissionService, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:          repo,
		commissionSvc: commissionSvc,
		auditSvc:      auditSvc,
	}
}

// CreateUserInput describes a new account. CommissionPct overrides the
// default commission for the role.
type CreateUserInput struct {
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Role          string           `json:"role"`
	CommissionPct *decimal.Decimal `json:"commission_pct"`
}

// ListActive returns the users offered by the picker
func (s *UserService) ListActive(ctx context.Context) ([]models.User, error) {
	return s.repo.ListActive(ctx)
}

// Sellers returns the active sellers
func (s *UserService) Sellers(ctx context.Context) ([]models.User, error) {
	return s.repo.FindSellers(ctx)
}

// Create onboards a user and gives them their initial commission policy
func (s *UserService) Create(ctx context.Context, input CreateUserInput, actorID uint) (*models.User, *models.VendorCommissionConfig, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: el nombre es obligatorio", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, nil, fmt.Errorf("%w: el correo es obligatorio", ErrInvalidInput)
	}
	role := input.Role
	if role == "" {
		role = models.RoleSeller
	}
	if !models.IsValidRole(role) {
		return nil, nil, fmt.Errorf("%w: rol %q desconocido", ErrInvalidInput, role)
	}
	if input.CommissionPct != nil && !models.IsValidPercentage(*input.CommissionPct) {
		return nil, nil, fmt.Errorf("%w: el porcentaje debe estar entre 0 y 100", ErrInvalidConfig)
	}

	user := &models.User{
		Name:   name,
		Email:  email,
		Role:   role,
		Active: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, nil, err
	}

	cfg, err := s.commissionSvc.CreateDefaultConfig(ctx, user, input.CommissionPct)
	if err != nil {
		return nil, nil, err
	}

	s.auditSvc.LogAsync(ctx, actorID, models.AuditActionCreate, "User", user.ID,
		fmt.Sprintf("Usuario creado: %s (%s) - Rol: %s - Comisión: %s%%", user.Name, user.Email, user.Role, cfg.Percentage.StringFixed(2)))
	return user, cfg, nil
}
