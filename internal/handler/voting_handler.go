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

// VotingHandler handles vote casting and results
type VotingHandler struct {
	votingService *service.VotingService
	logger        *logger.Logger
}

// NewVotingHandler creates a new voting handler
func NewVotingHandler(votingService *service.VotingService, logger *logger.Logger) *VotingHandler {
	return &VotingHandler{
		votingService: votingService,
		logger:        logger,
	}
}

// CastVote handles POST /api/v1/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.CastVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	response, err := h.votingService.CastVote(r.Context(), principal.UserID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// Results handles GET /api/v1/elections/{electionId}/results. Results for
// elections that have not ended require an admin token.
func (h *VotingHandler) Results(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	results, err := h.votingService.Tally(r.Context(), chi.URLParam(r, "electionId"), principal)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	etag := generateETag(results)
	if etag != "" && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if etag != "" {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=30")
	}

	respondJSON(w, http.StatusOK, results)
}

// LiveResults handles GET /api/v1/elections/{electionId}/results/live
func (h *VotingHandler) LiveResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.votingService.LiveTally(r.Context(), chi.URLParam(r, "electionId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// MyVotes handles GET /api/v1/votes/mine
func (h *VotingHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	votes, err := h.votingService.ListUserVotes(r.Context(), principal.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, votes)
}
