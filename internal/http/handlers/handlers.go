package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/chat"
	"github.com/zotprof/backend/internal/service"
	"github.com/zotprof/backend/internal/session"
)

// Purger is a cache that can be emptied on demand.
type Purger interface {
	Purge() int
}

type Handler struct {
	Search    *service.SearchService
	Intent    ai.IntentParser
	Chat      *chat.Engine
	Sessions  session.Store
	Caches    map[string]Purger
	Validator *validator.Validate
	Logger    zerolog.Logger
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type ErrorResponse struct {
	Error errorBody `json:"error"`
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} ErrorResponse
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Sessions.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "SESSION_STORE_ERROR", "Session store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session_store": h.Sessions.Kind()})
}

// @Summary Purge in-process caches
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string false "Admin key"
// @Success 200 {object} map[string]any
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/cache/purge [post]
func (h *Handler) PurgeCaches(c *gin.Context) {
	purged := map[string]int{}
	for name, cache := range h.Caches {
		if cache == nil {
			continue
		}
		purged[name] = cache.Purge()
	}
	h.Logger.Info().Interface("purged", purged).Msg("caches purged")
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

func (h *Handler) validate(c *gin.Context, req any) bool {
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, ErrorResponse{Error: errorBody{Code: code, Message: message, Details: details}})
}
