package services

import (
	"context"

	"github.com/feraben/crm-api/internal/jobs"
	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/pkg/logger"
	"gorm.io/gorm"
)

type AuditService struct {
	db     *gorm.DB
	worker *jobs.Worker
}

func NewAuditService(db *gorm.DB, worker *jobs.Worker) *AuditService {
	return &AuditService{db: db, worker: worker}
}

// Log records an audit entry synchronously
func (s *AuditService) Log(ctx context.Context, userID uint, action, entity string, entityID uint, details string) error {
	logEntry := &models.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}
	if meta, ok := RequestMetaFromContext(ctx); ok {
		logEntry.IPAddress = meta.IP
		logEntry.UserAgent = meta.UserAgent
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// LogAsync records an audit entry on the background worker. Audit failures
// never fail the business operation that produced them.
func (s *AuditService) LogAsync(ctx context.Context, userID uint, action, entity string, entityID uint, details string) {
	meta, _ := RequestMetaFromContext(ctx)
	if s.worker == nil {
		if err := s.Log(ctx, userID, action, entity, entityID, details); err != nil {
			logger.Error("audit write failed", "entity", entity, "entity_id", entityID, "error", err)
		}
		return
	}
	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		return s.Log(WithRequestMeta(jobCtx, meta), userID, action, entity, entityID, details)
	})
}

// List retrieves audit logs newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}

// RequestMeta carries caller details copied into audit entries
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta stores caller details in ctx
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the caller details stored by WithRequestMeta
func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
