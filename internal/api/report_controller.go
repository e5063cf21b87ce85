package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// ReportController обрабатывает HTTP запросы отчетов
type ReportController struct {
	reportService *services.ReportService
}

// NewReportController создает новый контроллер отчетов
func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// GetDayReport возвращает отчет за инвентарный день
// GET /api/v1/reports/days/:id
func (rc *ReportController) GetDayReport(c *gin.Context) {
	report, err := rc.reportService.DayReport(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка формирования отчета")
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportDayReportXLSX выгружает отчет за день в Excel
// GET /api/v1/reports/days/:id/xlsx
func (rc *ReportController) ExportDayReportXLSX(c *gin.Context) {
	data, err := rc.reportService.ExportDayReportXLSX(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка выгрузки отчета")
		return
	}

	filename := fmt.Sprintf("day_report_%s.xlsx", c.Param("id"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
