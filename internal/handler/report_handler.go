package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"apflow/internal/service"
)

// ReportHandler handles stats and weekly report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// parseWeekStart reads the optional week_start query param, defaulting to the
// current week.
func parseWeekStart(c *gin.Context) (time.Time, bool) {
	weekStart := time.Now().UTC()
	if v := c.Query("week_start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid 'week_start': must be YYYY-MM-DD")
			return time.Time{}, false
		}
		weekStart = t
	}
	return weekStart, true
}

// Overview handles GET /api/v1/stats/overview
func (h *ReportHandler) Overview(c *gin.Context) {
	weekStart, ok := parseWeekStart(c)
	if !ok {
		return
	}

	stats, topVendors, err := h.reportService.WeeklyStats(c.Request.Context(), weekStart)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"stats": stats, "top_failing_vendors": topVendors})
}

// GenerateWeekly handles POST /api/v1/reports/weekly
// Builds the XLSX workbook, uploads it to object storage, and emails the
// digest to the configured recipients.
func (h *ReportHandler) GenerateWeekly(c *gin.Context) {
	weekStart, ok := parseWeekStart(c)
	if !ok {
		return
	}

	out, err := h.reportService.GenerateWeeklyReport(c.Request.Context(), weekStart)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}
