package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ReportController struct {
	reportService service.ReportService
	users         UserLoader
}

func NewReportController(reportService service.ReportService, users UserLoader) *ReportController {
	return &ReportController{
		reportService: reportService,
		users:         users,
	}
}

func (ctrl *ReportController) params(c *gin.Context) (service.ReportParams, bool) {
	var q service.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return service.ReportParams{}, false
	}
	params, err := ctrl.reportService.ParseParams(q)
	if err != nil {
		respondError(c, err, "parse report parameters")
		return service.ReportParams{}, false
	}
	return params, true
}

// Report returns every dataset for the range. Revenue is admin only.
// GET /api/v1/staff/reports?date_from=&date_to=&group_by=&supplier=&category_id=
func (ctrl *ReportController) Report(c *gin.Context) {
	viewer, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	params, ok := ctrl.params(c)
	if !ok {
		return
	}

	report, err := ctrl.reportService.Build(params, viewer)
	if err != nil {
		respondError(c, err, "build report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date_from": params.From,
		"date_to":   params.To,
		"group_by":  params.GroupBy,
		"report":    report,
	})
}

// Export downloads one dataset as CSV or XLSX
// GET /api/v1/staff/reports/export?kind=&format=&...
func (ctrl *ReportController) Export(c *gin.Context) {
	viewer, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	params, ok := ctrl.params(c)
	if !ok {
		return
	}

	kind := c.Query("kind")
	format := c.DefaultQuery("format", service.FormatCSV)
	file, err := ctrl.reportService.Export(params, viewer, kind, format)
	if err != nil {
		respondError(c, err, "export report")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Report exported", map[string]interface{}{
		"kind":     kind,
		"format":   format,
		"user_id":  viewer.ID,
		"filename": file.Filename,
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
