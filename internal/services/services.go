package services

import (
	"github.com/feraben/crm-api/internal/config"
	"github.com/feraben/crm-api/internal/jobs"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth        *AuthService
	User        *UserService
	Client      *ClientService
	Movement    *MovementService
	Commission  *CommissionService
	Adjustment  *AdjustmentService
	Liquidation *LiquidationService
	Report      *ReportService
	Export      *ExportService
	Audit       *AuditService
	Job         *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db, worker)

	commissionSvc := NewCommissionService(repos.CommissionConfig, repos.Movement, repos.User, auditSvc, cfg.DefaultSellerCommission)
	adjustmentSvc := NewAdjustmentService(repos.Adjustment, repos.User, repos.Client, auditSvc)
	liquidationSvc := NewLiquidationService(repos.Liquidation, commissionSvc, auditSvc)
	clientSvc := NewClientService(repos.Client, repos.Movement, repos.User, auditSvc)

	return &Services{
		Auth:        NewAuthService(repos.User, auditSvc, cfg),
		User:        NewUserService(repos.User, commissionSvc, auditSvc),
		Client:      clientSvc,
		Movement:    NewMovementService(repos.Movement, repos.Client, auditSvc),
		Commission:  commissionSvc,
		Adjustment:  adjustmentSvc,
		Liquidation: liquidationSvc,
		Report:      NewReportService(repos.Report, clientSvc, cfg.Company),
		Export:      NewExportService(liquidationSvc, store, cfg.Company),
		Audit:       auditSvc,
		Job:         NewJobService(worker, adjustmentSvc),
	}
}
