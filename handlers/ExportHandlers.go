package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExportReport renders a report as a spreadsheet or PDF download
// @Summary Export report
// @Description An empty report answers 200 with no_data instead of a file
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param type query string true "Report type"
// @Param timePeriod query string false "all_time (default), last_7_days, last_30_days, last_3_months, last_6_months or last_year"
// @Param format query string false "xlsx (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Router /api/export-data [get]
func ExportReport(svc *services.ExportService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := svc.Export(c.Request.Context(), currentUser(c), c.Query("type"), c.Query("timePeriod"), c.Query("format"))
		if errors.Is(err, services.ErrNoData) {
			c.JSON(http.StatusOK, gin.H{"message": "No data available for the selected report", "no_data": true})
			return
		}
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
		c.Data(http.StatusOK, file.ContentType, file.Data)
	}
}
