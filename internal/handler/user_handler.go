package handler

import (
	"net/http"

	"evote-api/internal/domain"
	"evote-api/internal/middleware"
	"evote-api/internal/service"
	"evote-api/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles the admin user management endpoints
type UserHandler struct {
	userService *service.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Get handles GET /api/v1/users/{userId}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Update handles PUT /api/v1/users/{userId}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.userService.Update(r.Context(), chi.URLParam(r, "userId"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{userId}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	if err := h.userService.Delete(r.Context(), chi.URLParam(r, "userId"), principal); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// AssignElection handles POST /api/v1/users/{userId}/elections/{electionId}
func (h *UserHandler) AssignElection(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.AssignElection(r.Context(),
		chi.URLParam(r, "userId"), chi.URLParam(r, "electionId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// RemoveElection handles DELETE /api/v1/users/{userId}/elections/{electionId}
func (h *UserHandler) RemoveElection(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.RemoveElection(r.Context(),
		chi.URLParam(r, "userId"), chi.URLParam(r, "electionId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
