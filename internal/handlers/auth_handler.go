package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feraben/crm-api/internal/services"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "crm-api",
		"version": "1.0.0",
	})
}

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type SelectUserRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// @Summary Select User
// @Description Opens a session as one of the active users listed by the picker
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SelectUserRequest true "Selected user"
// @Success 200 {object} services.SelectResult
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /auth/select [post]
func (h *AuthHandler) Select(c *gin.Context) {
	var req SelectUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe seleccionar un usuario"})
		return
	}

	result, err := h.authService.SelectUser(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
