package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// ClusterHandler handles HTTP requests for complaint clusters
type ClusterHandler struct {
	service *service.ClusteringService
}

// NewClusterHandler creates a new cluster handler
func NewClusterHandler(service *service.ClusteringService) *ClusterHandler {
	return &ClusterHandler{service: service}
}

// ListClusters handles GET /api/v1/clusters
func (h *ClusterHandler) ListClusters(c *gin.Context) {
	clusters, err := h.service.ListActiveClusters(c.Request.Context())
	if err != nil {
		respondError(c, "list clusters", err)
		return
	}

	response.Success(c, gin.H{
		"clusters": clusters,
		"total":    len(clusters),
	})
}

// DetectClusters handles POST /api/v1/clusters/detect
func (h *ClusterHandler) DetectClusters(c *gin.Context) {
	var req models.DetectClustersRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	opts := service.DetectOptions{
		RadiusKm:                clustering.DefaultRadiusKm,
		MinComplaintsPerCluster: clustering.DefaultMinPoints,
		Type:                    req.Type,
		Trigger:                 models.RunTriggerAPI,
	}
	if req.RadiusKm != nil {
		opts.RadiusKm = *req.RadiusKm
	}
	if req.MinComplaints != nil {
		opts.MinComplaintsPerCluster = *req.MinComplaints
	}

	from, to, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		respondError(c, "detect clusters", err)
		return
	}
	opts.DateFrom, opts.DateTo = from, to

	result, err := h.service.DetectClusters(c.Request.Context(), opts)
	if err != nil {
		respondError(c, "detect clusters", err)
		return
	}

	response.Success(c, result)
}

// ListRuns handles GET /api/v1/clusters/runs
func (h *ClusterHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	runs, err := h.service.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, "list clustering runs", err)
		return
	}

	response.Success(c, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}
