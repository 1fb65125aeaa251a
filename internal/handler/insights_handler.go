package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/prioritization"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// InsightsHandler serves barangay prioritization
type InsightsHandler struct {
	service *service.InsightsService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(service *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// BarangayPrioritization handles GET /api/v1/insights/barangays?period=weekly
func (h *InsightsHandler) BarangayPrioritization(c *gin.Context) {
	period := c.DefaultQuery("period", prioritization.PeriodWeekly)

	report, err := h.service.BarangayPrioritization(c.Request.Context(), period)
	if err != nil {
		respondError(c, "barangay prioritization", err)
		return
	}

	response.Success(c, report)
}
