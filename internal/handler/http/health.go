// Package http assembles the API server: the chi router, the middleware
// stack, health endpoints and Prometheus metrics. Session endpoints live in
// the books subpackage.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"books-search/internal/handler/http/respond"
	"books-search/internal/infra/db"
	"books-search/internal/usecase/browse"
)

// Check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StateSource reports the browsing state. *browse.Controller implements it.
type StateSource interface {
	State() browse.State
}

// HealthHandler serves liveness (/health) and readiness (/ready).
// Liveness only reports the session state; readiness also pings the
// settings database.
type HealthHandler struct {
	DB      *sql.DB
	Session StateSource
	Version string
	Logger  *slog.Logger
}

// Live reports that the process is serving.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	checks := map[string]CheckStatus{"session": h.checkSession()}
	h.write(w, http.StatusOK, StatusHealthy, checks)
}

// Ready reports whether the settings database is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"session": h.checkSession()}
	dbCheck := h.checkDatabase(ctx)
	checks["database"] = dbCheck

	status, code := StatusHealthy, http.StatusOK
	if dbCheck.Status == StatusUnhealthy {
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	}
	h.write(w, code, status, checks)
}

func (h *HealthHandler) write(w http.ResponseWriter, code int, status string, checks map[string]CheckStatus) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkSession() CheckStatus {
	if h.Session == nil {
		return CheckStatus{Status: StatusHealthy, Message: "no session"}
	}
	state := h.Session.State()
	return CheckStatus{
		Status:  StatusHealthy,
		Details: map[string]any{"state": state.String()},
	}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}
	if err := db.Ping(ctx, h.DB); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("readiness check failed", slog.Any("error", respond.SanitizeError(err)))
		}
		return CheckStatus{Status: StatusUnhealthy, Message: "settings database unreachable"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections > 0 && stats.InUse*5 >= stats.MaxOpenConnections*4 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}
