package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eval-api/internal/service"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

// ExportHandler serves the downloadable report endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// EvaluationsCSV godoc
// @Summary Download evaluations as CSV
// @Tags Exports
// @Produce text/csv
// @Param courseId query string false "Course id or code"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /exports/evaluations.csv [get]
func (h *ExportHandler) EvaluationsCSV(c *gin.Context) {
	payload, err := h.exports.EvaluationsCSV(c.Request.Context(), c.Query("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("evaluations-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// StatsPDF godoc
// @Summary Download the statistics report as PDF
// @Tags Exports
// @Produce application/pdf
// @Param courseId query string false "Course id or code"
// @Param startDate query string false "Window start"
// @Param endDate query string false "Window end"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /exports/stats.pdf [get]
func (h *ExportHandler) StatsPDF(c *gin.Context) {
	filter, err := service.ParseStatsFilter(c.Query("courseId"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exports.StatsPDF(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("evaluation-report-%s.pdf", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
