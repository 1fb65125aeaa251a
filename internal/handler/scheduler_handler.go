package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// SchedulerHandler exposes the clustering scheduler to operators
type SchedulerHandler struct {
	scheduler *scheduler.ClusteringScheduler
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(s *scheduler.ClusteringScheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s}
}

// Status handles GET /api/v1/clustering/status
func (h *SchedulerHandler) Status(c *gin.Context) {
	response.Success(c, h.scheduler.Status())
}

// Trigger handles POST /api/v1/clustering/trigger. Busy and no-op runs are
// reported in the result rather than as errors.
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	response.Success(c, h.scheduler.TriggerManual(c.Request.Context()))
}
