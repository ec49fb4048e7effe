package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/service"
)

type SearchRequest struct {
	Query string `form:"q" validate:"required,max=200"`
	Type  string `form:"type" validate:"omitempty,oneof=class professor"`
	Term  string `form:"term" validate:"max=40"`
}

type GradesRequest struct {
	Instructor   string `form:"instructor" validate:"required,max=100"`
	CourseNumber string `form:"courseNumber" validate:"required,max=20"`
}

type IntentRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// @Summary Search courses or professors
// @Tags search
// @Produce json
// @Param q query string true "Course code (e.g. ICS 33) or professor name"
// @Param type query string false "class or professor"
// @Param term query string false "Term, e.g. Winter 2026"
// @Success 200 {object} service.SearchResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/search [get]
func (h *Handler) SearchCourses(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if !h.validate(c, req) {
		return
	}

	res, err := h.Search.Search(c.Request.Context(), req.Query, req.Type, req.Term)
	switch {
	case errors.Is(err, query.ErrUnparseable):
		writeError(c, http.StatusBadRequest, "UNPARSEABLE_QUERY", "Try a format like \"ICS 33\" or \"COMPSCI 161\"", req.Query)
		return
	case errors.Is(err, service.ErrInvalidTerm):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), req.Term)
		return
	case err != nil:
		h.Logger.Error().Err(err).Str("query", req.Query).Msg("search failed")
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Course catalog unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Professor profile
// @Tags professors
// @Produce json
// @Param name path string true "Professor name"
// @Success 200 {object} models.ProfessorProfile
// @Router /api/professors/{name} [get]
func (h *Handler) ProfessorDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required", nil)
		return
	}
	c.JSON(http.StatusOK, h.Search.Professor(c.Request.Context(), name))
}

// @Summary Grade distribution for an instructor and course
// @Tags grades
// @Produce json
// @Param instructor query string true "Instructor name"
// @Param courseNumber query string true "Course number"
// @Success 200 {object} map[string]any
// @Failure 502 {object} ErrorResponse
// @Router /api/grades [get]
func (h *Handler) Grades(c *gin.Context) {
	var req GradesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if !h.validate(c, req) {
		return
	}
	pct, err := h.Search.GradeSummary(c.Request.Context(), req.Instructor, req.CourseNumber)
	if err != nil {
		h.Logger.Warn().Err(err).Str("instructor", req.Instructor).Msg("grades lookup failed")
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Grade data unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"instructor":    req.Instructor,
		"course_number": req.CourseNumber,
		"percentages":   pct,
	})
}

// @Summary Parse a natural-language search
// @Tags search
// @Accept json
// @Produce json
// @Param payload body IntentRequest true "Query"
// @Success 200 {object} models.SearchIntent
// @Failure 400 {object} ErrorResponse
// @Router /api/search-intent [post]
func (h *Handler) SearchIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if !h.validate(c, req) {
		return
	}
	intent, err := h.Intent.ParseIntent(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Intent parsing failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, intent)
}
