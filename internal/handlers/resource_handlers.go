package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feraben/crm-api/internal/middleware"
	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
	reportService *services.ReportService
}

func NewClientHandler(clientService *services.ClientService, reportService *services.ReportService) *ClientHandler {
	return &ClientHandler{clientService: clientService, reportService: reportService}
}

// @Summary List Clients
// @Description Get a paginated list of active clients. Sellers only see their own.
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name or RUT"
// @Param vendor_id query int false "Vendor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["vendor_id"] = c.Query("vendor_id")
	if !middleware.IsAdmin(c) {
		query.Filters["vendor_id"] = strconv.FormatUint(uint64(middleware.GetUserID(c)), 10)
	}

	clients, total, err := h.clientService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "pagination": gin.H{"total": total, "page": query.Page, "per_page": query.PerPage}})
}

// @Summary Clients By Vendor
// @Description Active clients attended by a vendor
// @Tags Clients
// @Produce json
// @Param vendor_id path int true "Vendor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clients/vendor/{vendor_id} [get]
func (h *ClientHandler) ByVendor(c *gin.Context) {
	vendorID, err := paramID(c, "vendor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	clients, err := h.clientService.ByVendor(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// @Summary Create Client
// @Description Create a new client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body services.ClientInput true "Client data"
// @Success 201 {object} models.Client
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var input services.ClientInput
	if err := BindNestedOrFlat(c, "client", &input); err != nil {
		badRequest(c, err)
		return
	}
	if !middleware.IsAdmin(c) {
		self := middleware.GetUserID(c)
		input.VendorID = &self
	}

	client, err := h.clientService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// @Summary Client Statement
// @Description Movements of a client with the running balance
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} services.Statement
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{client_id}/statement [get]
func (h *ClientHandler) Statement(c *gin.Context) {
	id, err := paramID(c, "client_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	statement, err := h.clientService.Statement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.ensureClientAccess(c, statement.Client) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"statement": statement})
}

// @Summary Client Statement PDF
// @Description Download the account statement of a client as PDF
// @Tags Clients
// @Produce application/pdf
// @Param client_id path int true "Client ID"
// @Success 200 {file} file "estado_cuenta.pdf"
// @Security BearerAuth
// @Router /clients/{client_id}/statement/pdf [get]
func (h *ClientHandler) StatementPDF(c *gin.Context) {
	id, err := paramID(c, "client_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.ensureClientAccess(c, client) {
		return
	}

	buf, err := h.reportService.ClientStatementPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=estado_cuenta_%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ensureClientAccess limits sellers to the clients they attend
func (h *ClientHandler) ensureClientAccess(c *gin.Context, client *models.Client) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	vendorID := uint(0)
	if client.VendorID != nil {
		vendorID = *client.VendorID
	}
	return ensureVendorAccess(c, vendorID)
}

type MovementHandler struct {
	movementService *services.MovementService
}

func NewMovementHandler(movementService *services.MovementService) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

// @Summary List Movements
// @Description Get a paginated list of ledger movements, newest first
// @Tags Movements
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param vendor_id query int false "Vendor ID"
// @Param client_id query int false "Client ID"
// @Param kind query string false "Movement kind"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /movements [get]
func (h *MovementHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	for _, key := range []string{"vendor_id", "client_id", "kind"} {
		query.Filters[key] = c.Query(key)
	}
	if !middleware.IsAdmin(c) {
		query.Filters["vendor_id"] = strconv.FormatUint(uint64(middleware.GetUserID(c)), 10)
	}

	movements, total, err := h.movementService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements, "pagination": gin.H{"total": total, "page": query.Page, "per_page": query.PerPage}})
}

type MovementRequest struct {
	Date     string          `json:"date"`
	ClientID uint            `json:"client_id"`
	VendorID *uint           `json:"vendor_id"`
	Kind     string          `json:"kind"`
	Document string          `json:"document"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

// @Summary Create Movement
// @Description Records a movement in the client ledger. Payments and credit notes are stored negative.
// @Tags Movements
// @Accept json
// @Produce json
// @Param request body MovementRequest true "Movement"
// @Success 201 {object} services.MovementResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /movements [post]
func (h *MovementHandler) Create(c *gin.Context) {
	var req MovementRequest
	if err := BindNestedOrFlat(c, "movement", &req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.movementService.Create(c.Request.Context(), services.MovementInput{
		Date:     date,
		ClientID: req.ClientID,
		VendorID: req.VendorID,
		Kind:     req.Kind,
		Document: req.Document,
		Amount:   req.Amount,
		Note:     req.Note,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of audit logs (Admin)
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	logs, total, err := h.auditService.List(c.Request.Context(), perPage, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": gin.H{"total": total, "page": page, "per_page": perPage}})
}
