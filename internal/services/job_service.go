package services

import (
	"context"
	"time"

	"github.com/feraben/crm-api/internal/jobs"
	"github.com/feraben/crm-api/pkg/logger"
)

// StaleAdjustmentCheckInterval is how often pending adjustments are checked
const StaleAdjustmentCheckInterval = 24 * time.Hour

type JobService struct {
	worker        *jobs.Worker
	adjustmentSvc *AdjustmentService
}

func NewJobService(worker *jobs.Worker, adjustmentSvc *AdjustmentService) *JobService {
	return &JobService{
		worker:        worker,
		adjustmentSvc: adjustmentSvc,
	}
}

// ScheduleRecurring registers the recurring jobs on the worker
func (s *JobService) ScheduleRecurring() {
	s.worker.ScheduleEvery("stale_adjustments", StaleAdjustmentCheckInterval, true, func(ctx context.Context) error {
		logger.Info("[Job] Checking stale pending adjustments...")
		_, err := s.adjustmentSvc.ReportStale(ctx)
		return err
	})
	logger.Info("Scheduled recurring jobs")
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
