package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/middleware"
	"github.com/maktabhq/maktab-api/internal/service"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
	"github.com/maktabhq/maktab-api/pkg/response"
)

// TransitionHandler exposes stage transitions and milestone confirmations.
type TransitionHandler struct {
	transitions   *service.TransitionService
	confirmations *service.ConfirmationService
}

// NewTransitionHandler constructs TransitionHandler.
func NewTransitionHandler(transitions *service.TransitionService, confirmations *service.ConfirmationService) *TransitionHandler {
	return &TransitionHandler{transitions: transitions, confirmations: confirmations}
}

// GraduateToQuran godoc
// @Summary Move a student from Qaidah to Quran
// @Tags Transitions
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/transitions/quran [post]
func (h *TransitionHandler) GraduateToQuran(c *gin.Context) {
	result, err := h.transitions.GraduateToQuran(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GraduateToHifz godoc
// @Summary Move a student from Quran to Hifz
// @Tags Transitions
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/transitions/hifz [post]
func (h *TransitionHandler) GraduateToHifz(c *gin.Context) {
	result, err := h.transitions.GraduateToHifz(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SkipToHifz godoc
// @Summary Skip the remaining Juz Amma surahs and start Hifz
// @Description Requires a confirmation token obtained from the propose endpoint.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.TransitionRequest true "Confirmation token"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/transitions/skip-to-hifz [post]
func (h *TransitionHandler) SkipToHifz(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	result, err := h.transitions.SkipToHifz(c.Request.Context(), c.Param("id"), req.ConfirmationToken, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MoveBackToJuzAmma godoc
// @Summary Move a Hifz student back onto the Juz Amma track
// @Description Requires a confirmation token obtained from the propose endpoint.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.TransitionRequest true "Confirmation token"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/transitions/move-back [post]
func (h *TransitionHandler) MoveBackToJuzAmma(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	result, err := h.transitions.MoveBackToJuzAmma(c.Request.Context(), c.Param("id"), req.ConfirmationToken, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Propose godoc
// @Summary Propose a confirmation-gated action
// @Description Issues a single-use token the confirming call must present.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.ProposeConfirmationRequest true "Action to confirm"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/milestones/propose [post]
func (h *TransitionHandler) Propose(c *gin.Context) {
	var req dto.ProposeConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.confirmations.Propose(c.Request.Context(), c.Param("id"), req.Action, req.Flag, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// MarkHafiz godoc
// @Summary Mark a Hifz student as hafiz
// @Description Requires a confirmation token unless the flag is already set.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.TransitionRequest true "Confirmation token"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/milestones/hafiz [post]
func (h *TransitionHandler) MarkHafiz(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	result, err := h.transitions.MarkHafiz(c.Request.Context(), c.Param("id"), req.ConfirmationToken, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UnmarkHafiz godoc
// @Summary Clear the hafiz flag
// @Tags Transitions
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/milestones/hafiz [delete]
func (h *TransitionHandler) UnmarkHafiz(c *gin.Context) {
	result, err := h.transitions.UnmarkHafiz(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// bindTransition reads the optional confirmation-token body. An empty body is
// allowed; the services decide whether a token is required.
func bindTransition(c *gin.Context) (dto.TransitionRequest, bool) {
	var req dto.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
			return req, false
		}
	}
	return req, true
}
