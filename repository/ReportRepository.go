package repository

import (
	"context"
	"fmt"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Totals is the global aggregate over all submissions.
type Totals struct {
	Count   int64
	Average float64
}

// ReportRepository defines the interface for dashboard aggregates
type ReportRepository interface {
	// DepartmentMetrics returns one row per department, zero-filled
	DepartmentMetrics(ctx context.Context) ([]models.DepartmentMetric, error)

	Totals(ctx context.Context) (Totals, error)
}

// ReportDao implements ReportRepository using GORM
type ReportDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func (dao *ReportDao) DepartmentMetrics(ctx context.Context) ([]models.DepartmentMetric, error) {
	db := dao.DB.WithContext(ctx)

	received := db.Model(&models.SurveySubmission{}).
		Select("rated_department_id, AVG(overall_customer_rating) AS avg_rating, COUNT(id) AS total").
		Group("rated_department_id")

	unresponded := remarks(db).
		Select("s.rated_department_id, COUNT(*) AS pending").
		Where("r.id IS NULL").
		Group("s.rated_department_id")

	rows := []models.DepartmentMetric{}
	err := db.Table("departments AS d").
		Select("d.id AS department_id, d.name AS department_name, "+
			"COALESCE(rs.avg_rating, 0) AS average_rating_received, "+
			"COALESCE(rs.total, 0) AS total_surveys_received, "+
			"COALESCE(ur.pending, 0) AS unresponded_remarks_count").
		Joins("LEFT JOIN (?) AS rs ON rs.rated_department_id = d.id", received).
		Joins("LEFT JOIN (?) AS ur ON ur.rated_department_id = d.id", unresponded).
		Order("d.name ASC").
		Scan(&rows).Error
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "DepartmentMetrics",
			"error":     err.Error(),
		}).Error("Failed to aggregate department metrics")
		return nil, fmt.Errorf("failed to aggregate department metrics: %w", err)
	}
	return rows, nil
}

func (dao *ReportDao) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := dao.DB.WithContext(ctx).Model(&models.SurveySubmission{}).
		Select("COUNT(id) AS count, COALESCE(AVG(overall_customer_rating), 0) AS average").
		Scan(&t).Error
	if err != nil {
		return t, fmt.Errorf("failed to aggregate submissions: %w", err)
	}
	return t, nil
}
