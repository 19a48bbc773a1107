package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/feraben/crm-api/internal/config"
	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthService issues session tokens for the user picker. There are no
// passwords: picking an active user from the list opens a session as them.
type AuthService struct {
	userRepo repository.UserRepository
	auditSvc *AuditService
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, auditSvc *AuditService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		auditSvc: auditSvc,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SessionClaims is the JWT payload; the middleware parses the same shape
type SessionClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SelectResult represents the result of picking a user
type SelectResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// SelectUser opens a session for an active user
func (s *AuthService) SelectUser(ctx context.Context, userID uint) (*SelectResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUnauthorized
	}

	token, expires, err := s.generateJWT(user)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, user.ID, models.AuditActionSelect, "User", user.ID, "Sesión iniciada desde el selector de usuario")
	return &SelectResult{Token: token, ExpiresAt: expires, User: *user}, nil
}

// generateJWT creates a new JWT token for a user
func (s *AuthService) generateJWT(user *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return signed, expires, err
}
