package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feraben/crm-api/internal/middleware"
	"github.com/feraben/crm-api/internal/services"
)

type AdjustmentHandler struct {
	adjustmentService *services.AdjustmentService
}

func NewAdjustmentHandler(adjustmentService *services.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

type AdvanceRequest struct {
	VendorID       uint            `json:"vendor_id"`
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	DeliveryMethod string          `json:"delivery_method"`
	Reference      string          `json:"reference"`
}

// @Summary Register Advance
// @Description Records money advanced to a vendor, pending until the next liquidation (Admin)
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param request body AdvanceRequest true "Advance"
// @Success 201 {object} models.AdvanceEntry
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /advances [post]
func (h *AdjustmentHandler) CreateAdvance(c *gin.Context) {
	var req AdvanceRequest
	if err := BindNestedOrFlat(c, "advance", &req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.adjustmentService.RegisterAdvance(c.Request.Context(), services.AdvanceInput{
		VendorID:       req.VendorID,
		Date:           date,
		Amount:         req.Amount,
		Reason:         req.Reason,
		DeliveryMethod: req.DeliveryMethod,
		Reference:      req.Reference,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"advance": entry})
}

// @Summary Pending Advances
// @Description Pending advances of a vendor, newest first
// @Tags Adjustments
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /advances/{vendor_id} [get]
func (h *AdjustmentHandler) Advances(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	entries, err := h.adjustmentService.PendingAdvances(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advances": entries})
}

// @Summary Cancel Advance
// @Description Cancels a pending advance (Admin)
// @Tags Adjustments
// @Produce json
// @Param advance_id path int true "Advance ID"
// @Success 200 {object} models.AdvanceEntry
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /advances/{advance_id}/cancel [post]
func (h *AdjustmentHandler) CancelAdvance(c *gin.Context) {
	id, err := paramID(c, "advance_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.adjustmentService.CancelAdvance(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advance": entry})
}

type CashInHandRequest struct {
	VendorID   uint            `json:"vendor_id"`
	ClientID   uint            `json:"client_id"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Concept    string          `json:"concept"`
	MovementID *uint           `json:"movement_id"`
}

// @Summary Register Cash In Hand
// @Description Records client money kept by a vendor, pending until the next liquidation (Admin)
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param request body CashInHandRequest true "Cash in hand"
// @Success 201 {object} models.CashInHandEntry
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /cash_in_hand [post]
func (h *AdjustmentHandler) CreateCashInHand(c *gin.Context) {
	var req CashInHandRequest
	if err := BindNestedOrFlat(c, "cash_in_hand", &req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.adjustmentService.RegisterCashInHand(c.Request.Context(), services.CashInHandInput{
		VendorID:   req.VendorID,
		ClientID:   req.ClientID,
		Date:       date,
		Amount:     req.Amount,
		Concept:    req.Concept,
		MovementID: req.MovementID,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cash_in_hand": entry})
}

// @Summary Pending Cash In Hand
// @Description Pending cash-in-hand entries of a vendor, newest first
// @Tags Adjustments
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cash_in_hand/{vendor_id} [get]
func (h *AdjustmentHandler) CashInHand(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	entries, err := h.adjustmentService.PendingCashInHand(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash_in_hand": entries})
}

// @Summary Cancel Cash In Hand
// @Description Cancels a pending cash-in-hand entry (Admin)
// @Tags Adjustments
// @Produce json
// @Param entry_id path int true "Entry ID"
// @Success 200 {object} models.CashInHandEntry
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /cash_in_hand/{entry_id}/cancel [post]
func (h *AdjustmentHandler) CancelCashInHand(c *gin.Context) {
	id, err := paramID(c, "entry_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.adjustmentService.CancelCashInHand(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash_in_hand": entry})
}

// @Summary Adjustment Summary
// @Description Pending advance and cash-in-hand totals of a vendor
// @Tags Adjustments
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Success 200 {object} models.AdjustmentSummary
// @Security BearerAuth
// @Router /adjustments/{vendor_id}/summary [get]
func (h *AdjustmentHandler) Summary(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.adjustmentService.Summary(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
