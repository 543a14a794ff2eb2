package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type ReportHandler struct {
	service services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GET /reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	actor := getActor(c)

	summary, err := h.service.Summary(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "Report retrieved successfully", summary)
}

// GET /reports/tasks/export
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	actor := getActor(c)

	data, err := h.service.ExportPDF(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="task-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
