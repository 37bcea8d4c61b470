package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktabhq/maktab-api/internal/service"
	"github.com/maktabhq/maktab-api/pkg/response"
)

// ReportHandler exposes class progress overviews and their exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ClassOverview godoc
// @Summary Class progress overview
// @Tags Reports
// @Produce json
// @Param group path string true "Class group (A, A1, A2, B, C)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/classes/{group}/progress [get]
func (h *ReportHandler) ClassOverview(c *gin.Context) {
	rows, err := h.reports.ClassOverview(c.Request.Context(), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportCSV godoc
// @Summary Class progress overview as CSV
// @Tags Reports
// @Produce text/csv
// @Param group path string true "Class group"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/classes/{group}/progress.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	group := c.Param("group")
	data, err := h.reports.ExportCSV(c.Request.Context(), group)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachment(c, data, fmt.Sprintf("class-%s-progress.csv", group), "text/csv")
}

// ExportPDF godoc
// @Summary Class progress overview as PDF
// @Tags Reports
// @Produce application/pdf
// @Param group path string true "Class group"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/classes/{group}/progress.pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	group := c.Param("group")
	data, err := h.reports.ExportPDF(c.Request.Context(), group)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachment(c, data, fmt.Sprintf("class-%s-progress.pdf", group), "application/pdf")
}

func (h *ReportHandler) attachment(c *gin.Context, data []byte, filename, mimeType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mimeType, data)
}
