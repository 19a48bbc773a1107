package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/feraben/crm-api/internal/middleware"
)

// Register mounts every API route on v1
func (h *Handlers) Register(v1 *gin.RouterGroup, jwtSecret string) {
	v1.GET("/health", h.Health.Index)

	// User picker (public)
	v1.GET("/users", h.User.Index)
	v1.POST("/auth/select", h.Auth.Select)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtSecret))
	{
		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/users", h.User.Create)

			admin.GET("/commissions/config", h.Commission.ListConfigs)
			admin.PUT("/commissions/config/:vendor_id", h.Commission.UpdateConfig)
			admin.POST("/commissions/settle", h.Commission.Settle)
			admin.GET("/commissions/dashboard", h.Commission.Dashboard)

			admin.PUT("/liquidations/:liquidation_id/pay", h.Liquidation.Pay)

			admin.POST("/advances", h.Adjustment.CreateAdvance)
			admin.POST("/advances/:advance_id/cancel", h.Adjustment.CancelAdvance)
			admin.POST("/cash_in_hand", h.Adjustment.CreateCashInHand)
			admin.POST("/cash_in_hand/:entry_id/cancel", h.Adjustment.CancelCashInHand)

			admin.GET("/audits", h.Audit.Index)
			admin.GET("/jobs/status", h.Job.Status)
		}

		// Vendor scoped reads: admins see everyone, sellers themselves
		vendor := protected.Group("")
		vendor.Use(middleware.RequireAdminOrVendor())
		{
			vendor.GET("/commissions/config/:vendor_id", h.Commission.ShowConfig)
			vendor.GET("/commissions/stats/:vendor_id/:year", h.Commission.Stats)
			vendor.GET("/advances/:vendor_id", h.Adjustment.Advances)
			vendor.GET("/cash_in_hand/:vendor_id", h.Adjustment.CashInHand)
			vendor.GET("/adjustments/:vendor_id/summary", h.Adjustment.Summary)
			vendor.GET("/clients/vendor/:vendor_id", h.Client.ByVendor)
		}

		protected.POST("/commissions/calculate", h.Commission.Calculate)
		protected.GET("/commissions/periods", h.Commission.Periods)

		protected.GET("/liquidations", h.Liquidation.Index)
		protected.GET("/liquidations/:liquidation_id", h.Liquidation.Show)
		protected.PUT("/liquidations/:liquidation_id/vendor_signature", h.Liquidation.VendorSignature)
		protected.GET("/liquidations/:liquidation_id/export", h.Liquidation.Export)

		protected.GET("/clients", h.Client.Index)
		protected.POST("/clients", h.Client.Create)
		protected.GET("/clients/:client_id/statement", h.Client.Statement)
		protected.GET("/clients/:client_id/statement/pdf", h.Client.StatementPDF)

		protected.GET("/movements", h.Movement.Index)
		protected.POST("/movements", h.Movement.Create)
	}
}
