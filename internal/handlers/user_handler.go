package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feraben/crm-api/internal/middleware"
	"github.com/feraben/crm-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary List Users
// @Description Active users offered by the login picker. role=vendedor narrows the list to sellers.
// @Tags Users
// @Produce json
// @Param role query string false "Only sellers when set to vendedor"
// @Success 200 {object} map[string]interface{}
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	list := h.userService.ListActive
	if c.Query("role") == "vendedor" {
		list = h.userService.Sellers
	}

	users, err := list(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type CreateUserRequest struct {
	Name          string           `json:"name"`
	FullName      string           `json:"full_name"`
	Email         string           `json:"email"`
	Role          string           `json:"role"`
	CommissionPct *decimal.Decimal `json:"commission_pct"`
}

// @Summary Create User
// @Description Onboards a user together with the initial commission policy
// @Tags Users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := BindNestedOrFlat(c, "user", &req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Name == "" {
		req.Name = req.FullName
	}

	input := services.CreateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		CommissionPct: req.CommissionPct,
	}

	user, cfg, err := h.userService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "commission_config": cfg})
}
