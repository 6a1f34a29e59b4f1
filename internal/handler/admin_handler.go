package handler

import (
	"net/http"

	"evote-api/internal/service"
	"evote-api/pkg/logger"
)

// AdminHandler handles the admin dashboard endpoints
type AdminHandler struct {
	adminService *service.AdminService
	logger       *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ElectionStats handles GET /api/v1/admin/election-stats
func (h *AdminHandler) ElectionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.ElectionStats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// RecentActivity handles GET /api/v1/admin/activity
func (h *AdminHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	activities, err := h.adminService.RecentActivity(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// Analytics handles GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.adminService.Analytics(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}
