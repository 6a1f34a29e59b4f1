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

// CandidateHandler handles candidacy applications and verification
type CandidateHandler struct {
	candidateService *service.CandidateService
	logger           *logger.Logger
}

// NewCandidateHandler creates a new candidate handler
func NewCandidateHandler(candidateService *service.CandidateService, logger *logger.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		logger:           logger,
	}
}

// Apply handles POST /api/v1/candidates
func (h *CandidateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.ApplyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	candidate, err := h.candidateService.Apply(r.Context(), principal.UserID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, candidate)
}

// List handles GET /api/v1/candidates with optional electionId and status
// query filters
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.CandidateFilter{
		ElectionID: r.URL.Query().Get("electionId"),
		Status:     domain.CandidateStatus(r.URL.Query().Get("status")),
	}

	candidates, err := h.candidateService.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, candidates)
}

// Get handles GET /api/v1/candidates/{candidateId}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.candidateService.Get(r.Context(), chi.URLParam(r, "candidateId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, candidate)
}

// Verify handles PUT /api/v1/candidates/{candidateId}/verify
func (h *CandidateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	candidate, err := h.candidateService.Verify(r.Context(), chi.URLParam(r, "candidateId"), req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, candidate)
}

// Remove handles DELETE /api/v1/candidates/{candidateId}. Owners may
// withdraw their own application; admins may remove any.
func (h *CandidateHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	if err := h.candidateService.Remove(r.Context(), chi.URLParam(r, "candidateId"), principal); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Candidate removed"})
}
