package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/session"
)

type CreateSessionRequest struct {
	Context   string `json:"context" validate:"max=200"`
	Professor string `json:"professor" validate:"max=100"`
	Course    string `json:"course" validate:"max=40"`
}

type MessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type SessionResponse struct {
	SessionID string                   `json:"session_id"`
	Stage     models.Stage             `json:"stage"`
	Messages  []models.ChatMessage     `json:"messages"`
	State     models.ConversationState `json:"state"`
}

// @Summary Start a chat session
// @Description Query parameters q, context, professor and course are accepted as a handoff from search.
// @Tags chat
// @Accept json
// @Produce json
// @Param payload body CreateSessionRequest false "Handoff"
// @Success 201 {object} SessionResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/chat/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	handoff := query.ParseHandoff(c.Request.URL.Query())
	if c.Request.ContentLength > 0 {
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
			return
		}
		if !h.validate(c, req) {
			return
		}
		if req.Context != "" {
			handoff.Context = req.Context
		}
		if req.Professor != "" {
			handoff.Professor = req.Professor
		}
		if req.Course != "" {
			handoff.Course = req.Course
		}
	}
	if handoff.Context == "" && handoff.Query != "" {
		handoff.Context = handoff.Query
	}

	state, msgs := h.Chat.Start(handoff)
	state.SessionID = uuid.NewString()
	if err := h.Sessions.Save(c.Request.Context(), state); err != nil {
		h.Logger.Error().Err(err).Msg("failed to save session")
		writeError(c, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Failed to save session", err.Error())
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{SessionID: state.SessionID, Stage: state.Stage, Messages: msgs, State: state})
}

// @Summary Get a chat session
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ConversationState
// @Failure 404 {object} ErrorResponse
// @Router /api/chat/sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	state, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, state)
}

// @Summary Delete a chat session
// @Tags chat
// @Param id path string true "Session ID"
// @Success 204
// @Router /api/chat/sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.Sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Failed to delete session", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Send a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body MessageRequest true "Message"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/chat/sessions/{id}/messages [post]
func (h *Handler) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if !h.validate(c, req) {
		return
	}
	state, ok := h.loadSession(c)
	if !ok {
		return
	}

	next, msgs := h.Chat.Process(c.Request.Context(), state, req.Message)
	next.SessionID = state.SessionID
	if err := h.Sessions.Save(c.Request.Context(), next); err != nil {
		h.Logger.Error().Err(err).Str("session_id", next.SessionID).Msg("failed to save session")
		writeError(c, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Failed to save session", err.Error())
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: next.SessionID, Stage: next.Stage, Messages: msgs, State: next})
}

func (h *Handler) loadSession(c *gin.Context) (models.ConversationState, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid session id", id)
		return models.ConversationState{}, false
	}
	state, err := h.Sessions.Get(c.Request.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Session not found", id)
		return models.ConversationState{}, false
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Failed to load session", err.Error())
		return models.ConversationState{}, false
	}
	return state, true
}
