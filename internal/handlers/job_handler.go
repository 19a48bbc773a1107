package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feraben/crm-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobSvc}
}

// @Summary Background Job Status
// @Description Worker counters plus the last run of every scheduled job, such as the stale adjustments check (Admin)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"worker": h.jobService.GetStatus()})
}
