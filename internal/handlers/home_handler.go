package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"findhome/internal/services"
)

type HomeHandler struct {
	searchService    *services.SearchService
	dashboardService *services.DashboardService
}

func NewHomeHandler(searchService *services.SearchService, dashboardService *services.DashboardService) *HomeHandler {
	return &HomeHandler{
		searchService:    searchService,
		dashboardService: dashboardService,
	}
}

// Search lists visible listings matching the query string filters
// GET /
func (h *HomeHandler) Search(c *gin.Context) {
	var params services.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Dashboard returns the role specific dashboard of the current user
// GET /dashboard/
func (h *HomeHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Build(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, homePath)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
