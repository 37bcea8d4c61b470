package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/service"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
	"github.com/maktabhq/maktab-api/pkg/response"
)

// DueHandler exposes the monthly due-date queue.
type DueHandler struct {
	due *service.DueDateService
}

// NewDueHandler constructs DueHandler.
func NewDueHandler(due *service.DueDateService) *DueHandler {
	return &DueHandler{due: due}
}

// List godoc
// @Summary Students whose progress update is due
// @Tags Due
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/due [get]
func (h *DueHandler) List(c *gin.Context) {
	students, err := h.due.Due(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Sweep godoc
// @Summary Run the due-date sweep for the current month
// @Tags Due
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/due/sweep [post]
func (h *DueHandler) Sweep(c *gin.Context) {
	stamped, err := h.due.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"stamped": stamped}, nil)
}

// Skip godoc
// @Summary Skip a due student or class
// @Description Accepted for teacher workflow compatibility; records are left untouched and surface again next month.
// @Tags Due
// @Accept json
// @Produce json
// @Param request body dto.DueSkipRequest true "Student or class to skip"
// @Success 204
// @Security BearerAuth
// @Router /progress/due/skip [post]
func (h *DueHandler) Skip(c *gin.Context) {
	var req dto.DueSkipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	h.due.Skip(req)
	response.NoContent(c)
}
