package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feraben/crm-api/internal/middleware"
	"github.com/feraben/crm-api/internal/services"
	"github.com/feraben/crm-api/pkg/logger"
)

// dateLayout is the format of every date in requests and query strings
const dateLayout = "2006-01-02"

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	User        *UserHandler
	Client      *ClientHandler
	Movement    *MovementHandler
	Commission  *CommissionHandler
	Liquidation *LiquidationHandler
	Adjustment  *AdjustmentHandler
	Audit       *AuditHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Auth:        NewAuthHandler(svcs.Auth),
		User:        NewUserHandler(svcs.User),
		Client:      NewClientHandler(svcs.Client, svcs.Report),
		Movement:    NewMovementHandler(svcs.Movement),
		Commission:  NewCommissionHandler(svcs.Commission, svcs.Liquidation, svcs.Report),
		Liquidation: NewLiquidationHandler(svcs.Liquidation, svcs.Export),
		Adjustment:  NewAdjustmentHandler(svcs.Adjustment),
		Audit:       NewAuditHandler(svcs.Audit),
		Job:         NewJobHandler(svcs.Job),
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidConfig),
		errors.Is(err, services.ErrPaymentDateRequired),
		errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNotConfigured):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// paramID reads a numeric path parameter
func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s inválido", services.ErrInvalidInput, name)
	}
	return uint(id), nil
}

// parseDate parses an optional YYYY-MM-DD value
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q inválida, se espera AAAA-MM-DD", services.ErrInvalidInput, value)
	}
	return &t, nil
}

// requireDate parses a mandatory YYYY-MM-DD value
func requireDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s es obligatorio", services.ErrInvalidInput, field)
	}
	t, err := parseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return *t, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// ensureVendorAccess rejects sellers acting on another vendor's data
func ensureVendorAccess(c *gin.Context, vendorID uint) bool {
	if middleware.IsAdmin(c) || middleware.GetUserID(c) == vendorID {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "No tienes acceso a esta información"})
	return false
}
