package handler

import (
	"net/http"

	"evote-api/internal/domain"
	"evote-api/internal/middleware"
	"evote-api/internal/service"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// ElectionHandler handles election listing and admin election management
type ElectionHandler struct {
	electionService *service.ElectionService
	logger          *logger.Logger
}

// NewElectionHandler creates a new election handler
func NewElectionHandler(electionService *service.ElectionService, logger *logger.Logger) *ElectionHandler {
	return &ElectionHandler{
		electionService: electionService,
		logger:          logger,
	}
}

// List handles GET /api/v1/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.electionService.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, elections)
}

// ListEligible handles GET /api/v1/elections/eligible
func (h *ElectionHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	elections, err := h.electionService.ListEligible(r.Context(), principal.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, elections)
}

// Get handles GET /api/v1/elections/{electionId}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	election, err := h.electionService.Get(r.Context(), chi.URLParam(r, "electionId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, election)
}

// Create handles POST /api/v1/elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.CreateElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	election, err := h.electionService.Create(r.Context(), principal.UserID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, election)
}

// Update handles PUT /api/v1/elections/{electionId}
func (h *ElectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	election, err := h.electionService.Update(r.Context(), chi.URLParam(r, "electionId"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, election)
}

// End handles POST /api/v1/elections/{electionId}/end
func (h *ElectionHandler) End(w http.ResponseWriter, r *http.Request) {
	election, err := h.electionService.End(r.Context(), chi.URLParam(r, "electionId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, election)
}

// Delete handles DELETE /api/v1/elections/{electionId}
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.electionService.Delete(r.Context(), chi.URLParam(r, "electionId")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Election deleted"})
}
