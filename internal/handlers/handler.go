package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/policy"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
)

// Handler serves the HTTP API on top of the stores.
type Handler struct {
	identity *store.IdentityStore
	tasks    *store.TaskStore
	tokens   *auth.TokenService
	hub      *realtime.Hub
	logger   *slog.Logger
}

// New constructs a Handler. hub and logger may be nil.
func New(identity *store.IdentityStore, tasks *store.TaskStore, tokens *auth.TokenService, hub *realtime.Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = realtime.NewHub()
	}
	return &Handler{
		identity: identity,
		tasks:    tasks,
		tokens:   tokens,
		hub:      hub,
		logger:   logger,
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Unexpected errors are logged
// and hidden from the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actor returns the authenticated actor or writes a 401.
func (h *Handler) actor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return policy.Actor{}, false
	}
	return actor, true
}

// publish pushes a task event; failures only get logged.
func (h *Handler) publish(evt realtime.Event, userIDs ...string) {
	if err := h.hub.Publish(evt, userIDs...); err != nil {
		h.logger.Warn("publish task event", slog.String("type", evt.Type), slog.String("error", err.Error()))
	}
}
