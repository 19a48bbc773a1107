package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feraben/crm-api/internal/middleware"
	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/services"
)

type CommissionHandler struct {
	commissionService  *services.CommissionService
	liquidationService *services.LiquidationService
	reportService      *services.ReportService
}

func NewCommissionHandler(
	commissionService *services.CommissionService,
	liquidationService *services.LiquidationService,
	reportService *services.ReportService,
) *CommissionHandler {
	return &CommissionHandler{
		commissionService:  commissionService,
		liquidationService: liquidationService,
		reportService:      reportService,
	}
}

// @Summary List Commission Configs
// @Description Active commission policy of every vendor
// @Tags Commissions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /commissions/config [get]
func (h *CommissionHandler) ListConfigs(c *gin.Context) {
	configs, err := h.commissionService.ListConfigs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// @Summary Get Commission Config
// @Description Active commission policy of a vendor
// @Tags Commissions
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Success 200 {object} models.VendorCommissionConfig
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/config/{vendor_id} [get]
func (h *CommissionHandler) ShowConfig(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	cfg, err := h.commissionService.GetConfig(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

type UpdateConfigRequest struct {
	Percentage    decimal.Decimal  `json:"percentage"`
	Basis         string           `json:"basis"`
	Minimum       *decimal.Decimal `json:"minimum"`
	Comment       string           `json:"comment"`
	EffectiveFrom string           `json:"effective_from"`
}

// @Summary Update Commission Config
// @Description Replaces the active commission policy of a vendor (Admin)
// @Tags Commissions
// @Accept json
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Param request body UpdateConfigRequest true "Policy"
// @Success 200 {object} models.VendorCommissionConfig
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/config/{vendor_id} [put]
func (h *CommissionHandler) UpdateConfig(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	var req UpdateConfigRequest
	if err := BindNestedOrFlat(c, "config", &req); err != nil {
		badRequest(c, err)
		return
	}
	effective, err := parseDate(req.EffectiveFrom)
	if err != nil {
		badRequest(c, err)
		return
	}

	cfg, err := h.commissionService.UpdateConfig(c.Request.Context(), vendorID, services.ConfigInput{
		Percentage:    req.Percentage,
		Basis:         req.Basis,
		Minimum:       req.Minimum,
		Comment:       req.Comment,
		EffectiveFrom: effective,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

type PeriodRequest struct {
	VendorID   uint   `json:"vendor_id" binding:"required"`
	PeriodFrom string `json:"period_from"`
	PeriodTo   string `json:"period_to"`
}

func (r PeriodRequest) dates() (time.Time, time.Time, error) {
	from, err := requireDate("period_from", r.PeriodFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := requireDate("period_to", r.PeriodTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// @Summary Calculate Commission
// @Description Computes the commission of a vendor over a period without persisting anything
// @Tags Commissions
// @Accept json
// @Produce json
// @Param request body PeriodRequest true "Vendor and period"
// @Success 200 {object} models.CommissionCalculation
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/calculate [post]
func (h *CommissionHandler) Calculate(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !ensureVendorAccess(c, req.VendorID) {
		return
	}
	from, to, err := req.dates()
	if err != nil {
		badRequest(c, err)
		return
	}

	calc, err := h.commissionService.Calculate(c.Request.Context(), req.VendorID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculation": calc})
}

type SettleRequest struct {
	PeriodRequest
	Advances         decimal.Decimal `json:"advances"`
	CashInHand       decimal.Decimal `json:"cash_in_hand"`
	OtherDiscounts   decimal.Decimal `json:"other_discounts"`
	OtherBonuses     decimal.Decimal `json:"other_bonuses"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Notes            string          `json:"notes"`
	DeliveryDate     string          `json:"delivery_date"`
}

// @Summary Settle Commission
// @Description Recomputes the commission of the period and records the liquidation, marking pending advances and cash-in-hand as applied (Admin)
// @Tags Commissions
// @Accept json
// @Produce json
// @Param request body SettleRequest true "Period and adjustments"
// @Success 201 {object} models.Liquidation
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/settle [post]
func (h *CommissionHandler) Settle(c *gin.Context) {
	var req SettleRequest
	if err := BindNestedOrFlat(c, "liquidation", &req); err != nil {
		badRequest(c, err)
		return
	}
	if req.VendorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_id es obligatorio"})
		return
	}
	from, to, err := req.dates()
	if err != nil {
		badRequest(c, err)
		return
	}
	delivery, err := parseDate(req.DeliveryDate)
	if err != nil {
		badRequest(c, err)
		return
	}

	liq, err := h.liquidationService.SettlePeriod(c.Request.Context(), req.VendorID, from, to, models.LiquidationAdjustments{
		Advances:         req.Advances,
		CashInHand:       req.CashInHand,
		OtherDiscounts:   req.OtherDiscounts,
		OtherBonuses:     req.OtherBonuses,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
		DeliveryDate:     delivery,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"liquidation": liq, "receipt_number": liq.ReceiptNumber()})
}

// @Summary Suggested Periods
// @Description Current month, previous month, last 30 days and current year
// @Tags Commissions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /commissions/periods [get]
func (h *CommissionHandler) Periods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"periods": h.reportService.SuggestedPeriods()})
}

// @Summary Vendor Year Stats
// @Description Liquidation totals of a vendor for a year
// @Tags Commissions
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Param year path int true "Year"
// @Success 200 {object} models.VendorYearStats
// @Security BearerAuth
// @Router /commissions/stats/{vendor_id}/{year} [get]
func (h *CommissionHandler) Stats(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "año inválido"})
		return
	}

	stats, err := h.reportService.VendorYearStats(c.Request.Context(), vendorID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// @Summary Commission Dashboard
// @Description Paid and pending liquidation totals of the current year (Admin)
// @Tags Commissions
// @Produce json
// @Success 200 {object} models.DashboardSummary
// @Security BearerAuth
// @Router /commissions/dashboard [get]
func (h *CommissionHandler) Dashboard(c *gin.Context) {
	summary, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": summary})
}
