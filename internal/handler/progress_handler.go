package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/middleware"
	"github.com/maktabhq/maktab-api/internal/service"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
	"github.com/maktabhq/maktab-api/pkg/response"
)

// ProgressHandler exposes the per-student progress endpoints.
type ProgressHandler struct {
	progress *service.ProgressService
}

// NewProgressHandler constructs ProgressHandler.
func NewProgressHandler(progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// Form godoc
// @Summary Progress form for a student
// @Description Returns the student record, the resolved track and the reference data the update form needs.
// @Tags Progress
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/progress/form [get]
func (h *ProgressHandler) Form(c *gin.Context) {
	form, err := h.progress.Form(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Submit godoc
// @Summary Submit a progress update
// @Description Validates the candidate against the student's track and persists only the changed fields.
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.SubmitProgressRequest true "Progress update"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/progress [post]
func (h *ProgressHandler) Submit(c *gin.Context) {
	var req dto.SubmitProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.progress.Submit(c.Request.Context(), c.Param("id"), req, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Audit godoc
// @Summary Progress change history
// @Tags Progress
// @Produce json
// @Param id path string true "Student ID"
// @Param limit query int false "Max entries (default 50, cap 200)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/progress/audit [get]
func (h *ProgressHandler) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.progress.Audit(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
