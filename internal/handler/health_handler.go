package handler

import (
	"net/http"
	"time"

	"evote-api/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "evote-api",
		Checks:    map[string]string{},
	}

	statusCode := http.StatusOK

	if err := h.container.DB.Health(ctx); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = err.Error()
		statusCode = http.StatusServiceUnavailable
	} else {
		response.Checks["database"] = "ok"
	}

	if h.container.HasRedis() {
		if err := h.container.RedisClient.Health(ctx); err != nil {
			// Redis is optional; a cache outage degrades but does not fail
			response.Checks["redis"] = err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	} else {
		response.Checks["redis"] = "disabled"
	}

	respondJSON(w, statusCode, response)
}
