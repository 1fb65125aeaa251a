package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/causality"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// CausalityHandler exposes the causality engine
type CausalityHandler struct {
	service *service.CausalityService
}

// NewCausalityHandler creates a new causality handler
func NewCausalityHandler(service *service.CausalityService) *CausalityHandler {
	return &CausalityHandler{service: service}
}

type verifyRequest struct {
	Cause  *causality.Cluster `json:"cause"`
	Effect *causality.Cluster `json:"effect"`
}

type graphRequest struct {
	Clusters []causality.Cluster `json:"clusters"`
}

// Verify handles POST /api/v1/causality/verify
func (h *CausalityHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.Cause == nil || req.Effect == nil {
		response.BadRequest(c, "Both cause and effect are required")
		return
	}

	response.Success(c, h.service.Verify(req.Cause, req.Effect))
}

// Graph handles POST /api/v1/causality/graph
func (h *CausalityHandler) Graph(c *gin.Context) {
	var req graphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	response.Success(c, h.service.Analyze(req.Clusters))
}

// Active handles GET /api/v1/causality/active
func (h *CausalityHandler) Active(c *gin.Context) {
	analysis, err := h.service.AnalyzeActiveClusters(c.Request.Context())
	if err != nil {
		respondError(c, "analyze active clusters", err)
		return
	}

	response.Success(c, analysis)
}

// Rules handles GET /api/v1/causality/rules
func (h *CausalityHandler) Rules(c *gin.Context) {
	rules := h.service.Rules()
	categories := rules.Categories()

	effects := make(map[string][]string, len(categories))
	for _, category := range categories {
		effects[category] = rules.PossibleEffects(category)
	}

	response.Success(c, gin.H{
		"categories": categories,
		"effects":    effects,
	})
}
