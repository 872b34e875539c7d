package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"offio/backend/internal/dto"
	"offio/backend/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ReportHandler file downloads
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Export xlsx report
// GET /api/v1/reports/export?type=work-sessions
func (h *ReportHandler) Export(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReportExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.reportSvc.Export(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	setDownloadHeaders(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// VacationCalendar approved vacations as iCalendar
// GET /api/v1/reports/vacations.ics
func (h *ReportHandler) VacationCalendar(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.VacationCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	data, err := h.reportSvc.VacationCalendar(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	setDownloadHeaders(c, "vacations.ics")
	c.Data(http.StatusOK, icsContentType, data)
}

func setDownloadHeaders(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
