package handlers

import (
	"net/http"
	"strconv"

	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetOverallStats returns the global submission summary
// @Summary Overall statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.OverallStats
// @Router /api/dashboard/overall-stats [get]
func GetOverallStats(svc *services.ReportService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.OverallStats(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GetDepartmentMetrics returns received ratings per department
// @Summary Department metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {array} models.DepartmentMetric
// @Router /api/dashboard/department-metrics [get]
func GetDepartmentMetrics(svc *services.ReportService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics, err := svc.DepartmentMetrics(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, metrics)
	}
}

// GetRecentSubmissions returns the newest submissions
// @Summary Recent submissions
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Maximum rows (default 20, max 100)"
// @Success 200 {array} models.SubmissionSummary
// @Router /api/dashboard/recent-submissions [get]
func GetRecentSubmissions(svc *services.ReportService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				badRequest(c, "invalid limit")
				return
			}
			limit = n
		}
		rows, err := svc.Recent(c.Request.Context(), limit)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
