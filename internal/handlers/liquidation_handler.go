package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/feraben/crm-api/internal/middleware"
	"github.com/feraben/crm-api/internal/services"
)

type LiquidationHandler struct {
	liquidationService *services.LiquidationService
	exportService      *services.ExportService
}

func NewLiquidationHandler(liquidationService *services.LiquidationService, exportService *services.ExportService) *LiquidationHandler {
	return &LiquidationHandler{
		liquidationService: liquidationService,
		exportService:      exportService,
	}
}

// @Summary List Liquidations
// @Description Liquidations ordered by period end, newest first. Sellers only see their own.
// @Tags Liquidations
// @Produce json
// @Param vendor_id query int false "Vendor ID"
// @Param limit query int false "Maximum rows (10 per vendor, 20 overall by default)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /liquidations [get]
func (h *LiquidationHandler) Index(c *gin.Context) {
	var vendorID *uint
	if v := c.Query("vendor_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_id inválido"})
			return
		}
		uid := uint(id)
		vendorID = &uid
	}
	if !middleware.IsAdmin(c) {
		self := middleware.GetUserID(c)
		vendorID = &self
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	liquidations, err := h.liquidationService.List(c.Request.Context(), vendorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liquidations": liquidations})
}

// @Summary Get Liquidation
// @Description Liquidation with its detail lines and the adjustment entries it applied
// @Tags Liquidations
// @Produce json
// @Param liquidation_id path int true "Liquidation ID"
// @Success 200 {object} models.Liquidation
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /liquidations/{liquidation_id} [get]
func (h *LiquidationHandler) Show(c *gin.Context) {
	id, err := paramID(c, "liquidation_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	liq, err := h.liquidationService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ensureVendorAccess(c, liq.VendorID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"liquidation": liq, "receipt_number": liq.ReceiptNumber()})
}

type PayRequest struct {
	PaymentDate  string `json:"payment_date"`
	Observations string `json:"observations"`
}

// @Summary Mark Liquidation Paid
// @Description Moves a calculated liquidation to paid and records the admin signature (Admin)
// @Tags Liquidations
// @Accept json
// @Produce json
// @Param liquidation_id path int true "Liquidation ID"
// @Param request body PayRequest true "Payment date"
// @Success 200 {object} models.Liquidation
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /liquidations/{liquidation_id}/pay [put]
func (h *LiquidationHandler) Pay(c *gin.Context) {
	id, err := paramID(c, "liquidation_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	var req PayRequest
	if err := BindNestedOrFlat(c, "liquidation", &req); err != nil {
		badRequest(c, err)
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		badRequest(c, err)
		return
	}

	liq, err := h.liquidationService.MarkPaid(c.Request.Context(), id, paymentDate, req.Observations, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liquidation": liq})
}

// @Summary Vendor Signature
// @Description Records that the vendor signed the liquidation receipt
// @Tags Liquidations
// @Produce json
// @Param liquidation_id path int true "Liquidation ID"
// @Success 200 {object} models.Liquidation
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /liquidations/{liquidation_id}/vendor_signature [put]
func (h *LiquidationHandler) VendorSignature(c *gin.Context) {
	id, err := paramID(c, "liquidation_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	if !middleware.IsAdmin(c) {
		current, err := h.liquidationService.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !ensureVendorAccess(c, current.VendorID) {
			return
		}
	}

	liq, err := h.liquidationService.MarkVendorSigned(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liquidation": liq})
}

// @Summary Export Liquidation
// @Description Download the liquidation receipt as PDF, XLSX or CSV
// @Tags Liquidations
// @Produce application/pdf
// @Param liquidation_id path int true "Liquidation ID"
// @Param format query string false "pdf, xlsx or csv" default(pdf)
// @Success 200 {file} file "liquidacion.pdf"
// @Security BearerAuth
// @Router /liquidations/{liquidation_id}/export [get]
func (h *LiquidationHandler) Export(c *gin.Context) {
	id, err := paramID(c, "liquidation_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	if !middleware.IsAdmin(c) {
		liq, err := h.liquidationService.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !ensureVendorAccess(c, liq.VendorID) {
			return
		}
	}

	file, err := h.exportService.ExportLiquidation(c.Request.Context(), id, c.DefaultQuery("format", services.FormatPDF))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
