package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// ComplaintHandler handles proximity queries over complaints
type ComplaintHandler struct {
	service *service.ClusteringService
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(service *service.ClusteringService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// FindSimilar handles GET /api/v1/complaints/similar
func (h *ComplaintHandler) FindSimilar(c *gin.Context) {
	var query models.SimilarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if query.Lat == nil || query.Lng == nil {
		response.BadRequest(c, "Valid latitude and longitude are required")
		return
	}

	from, to, err := parseDateRange(query.DateFrom, query.DateTo)
	if err != nil {
		respondError(c, "find similar complaints", err)
		return
	}

	nearby, err := h.service.FindSimilarInRadius(c.Request.Context(), *query.Lat, *query.Lng, query.RadiusKm, service.SimilarFilters{
		Type:     query.Type,
		Status:   query.Status,
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		respondError(c, "find similar complaints", err)
		return
	}

	response.Success(c, gin.H{
		"complaints": nearby,
		"total":      len(nearby),
	})
}

// GetNearest handles GET /api/v1/complaints/:id/nearest
func (h *ComplaintHandler) GetNearest(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultNearestLimit)))
	if err != nil || limit < 1 {
		response.BadRequest(c, "Invalid limit")
		return
	}

	nearby, err := h.service.GetNearestSimilar(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, "nearest similar complaints", err)
		return
	}

	response.Success(c, gin.H{
		"complaints": nearby,
		"total":      len(nearby),
	})
}
