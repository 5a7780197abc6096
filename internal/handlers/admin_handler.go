package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"findhome/internal/metrics"
	"findhome/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
	metrics      *metrics.Metrics
}

func NewAdminHandler(adminService *services.AdminService, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{adminService: adminService, metrics: m}
}

// AdminMiddleware checks if user is admin
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.adminService.RequireAdmin(c.Request.Context(), currentUserID(c)); err != nil {
			respondError(c, err, homePath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ResolveReport removes the reported listing or dismisses the report
// POST /admin/report/:id/resolve/
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	reportID, ok := pathID(c, "id")
	if !ok {
		return
	}

	action := strings.TrimSpace(c.PostForm("action"))
	message, err := h.adminService.ResolveReport(c.Request.Context(), currentUserID(c), reportID, action)
	if err != nil {
		respondError(c, err, homePath)
		return
	}

	switch action {
	case services.ResolveActionRemove:
		h.metrics.Record(metrics.EventListingRemoved)
	case services.ResolveActionDismiss:
		h.metrics.Record(metrics.EventReportDismissed)
	}
	redirect(c, dashboardPath, message)
}

// ToggleUser activates or deactivates a user account
// POST /admin/toggle-user/:id/
func (h *AdminHandler) ToggleUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	message, err := h.adminService.ToggleUserActive(c.Request.Context(), currentUserID(c), userID)
	if err != nil {
		respondError(c, err, homePath)
		return
	}
	redirect(c, dashboardPath, message)
}

// ToggleListingReported hides a listing from search or shows it again
// POST /admin/listing/:id/toggle-reported/
func (h *AdminHandler) ToggleListingReported(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	message, err := h.adminService.ToggleListingReported(c.Request.Context(), currentUserID(c), listingID)
	if err != nil {
		respondError(c, err, homePath)
		return
	}
	redirect(c, dashboardPath, message)
}

// GetAdminLogs returns admin activity logs
// GET /admin/logs/
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.adminService.GetAdminLogs(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, homePath)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}
