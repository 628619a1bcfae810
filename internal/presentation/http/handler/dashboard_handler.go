package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dukapos/dukapos-api/internal/application/service"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns today's trading statistics for the operator's branch
func (h *DashboardHandler) GetStats(c *gin.Context) {
	branchID := GetBranchID(c)
	if branchID == nil {
		response.BadRequest(c, "Operator is not assigned to a branch")
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), *branchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}
