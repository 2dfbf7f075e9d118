package repository

import (
	"context"
	"fmt"
	"time"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemarkRow is one remark joined with its submission and any response.
type RemarkRow struct {
	SubmissionID      uint
	QuestionID        uint
	RatingValue       *int
	TextResponse      string
	Category          *string
	SubmittedAt       time.Time
	RatedDepartmentID uint
	DepartmentName    string

	Explanation       *string
	ActionPlan        *string
	ResponsiblePerson *string
}

// RemarkRepository defines the interface for the remark workflow
type RemarkRepository interface {
	// Incoming lists unanswered remarks on submissions rating deptID
	Incoming(ctx context.Context, deptID uint) ([]RemarkRow, error)

	// Outgoing lists remarks submitted by deptID with any response
	Outgoing(ctx context.Context, deptID uint) ([]RemarkRow, error)

	// RemarkExists reports whether submissionID carries a remark on questionID
	RemarkExists(ctx context.Context, submissionID, questionID uint) (bool, error)

	// Upsert creates or overwrites the response for (submission, question)
	Upsert(ctx context.Context, resp *models.RemarkResponse) error
}

// RemarkDao implements RemarkRepository using GORM
type RemarkDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

// remarks selects rating answers with non-empty text; the remark predicate lives here only.
func remarks(db *gorm.DB) *gorm.DB {
	return db.Table("survey_answers AS a").
		Joins("JOIN survey_submissions s ON s.id = a.submission_id").
		Joins("JOIN questions q ON q.id = a.question_id").
		Joins("LEFT JOIN remark_responses r ON r.survey_submission_id = a.submission_id AND r.question_id = a.question_id").
		Where("q.type = ? AND a.text_response IS NOT NULL AND TRIM(a.text_response) <> ''", models.QuestionRating)
}

const remarkColumns = "a.submission_id, a.question_id, a.rating_value, a.text_response, q.category, " +
	"s.submitted_at, s.rated_department_id, d.name AS department_name, " +
	"r.explanation, r.action_plan, r.responsible_person"

func (dao *RemarkDao) Incoming(ctx context.Context, deptID uint) ([]RemarkRow, error) {
	rows := []RemarkRow{}
	err := remarks(dao.DB.WithContext(ctx)).
		Select(remarkColumns).
		Joins("LEFT JOIN departments d ON d.id = s.submitter_department_id").
		Where("s.rated_department_id = ? AND r.id IS NULL", deptID).
		Order("s.submitted_at DESC, a.submission_id DESC, a.question_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming remarks: %w", err)
	}
	return rows, nil
}

func (dao *RemarkDao) Outgoing(ctx context.Context, deptID uint) ([]RemarkRow, error) {
	rows := []RemarkRow{}
	err := remarks(dao.DB.WithContext(ctx)).
		Select(remarkColumns).
		Joins("LEFT JOIN departments d ON d.id = s.rated_department_id").
		Where("s.submitter_department_id = ?", deptID).
		Order("s.submitted_at DESC, a.submission_id DESC, a.question_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing remarks: %w", err)
	}
	return rows, nil
}

func (dao *RemarkDao) RemarkExists(ctx context.Context, submissionID, questionID uint) (bool, error) {
	var n int64
	err := remarks(dao.DB.WithContext(ctx)).
		Where("a.submission_id = ? AND a.question_id = ?", submissionID, questionID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up remark: %w", err)
	}
	return n > 0, nil
}

func (dao *RemarkDao) Upsert(ctx context.Context, resp *models.RemarkResponse) error {
	err := dao.DB.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "survey_submission_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"explanation", "action_plan", "responsible_person", "responded_at", "responded_by_department_id",
		}),
	}).Create(resp).Error
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":     "UpsertRemarkResponse",
			"submission_id": resp.SurveySubmissionID,
			"question_id":   resp.QuestionID,
			"error":         err.Error(),
		}).Error("Failed to store remark response")
		return fmt.Errorf("failed to store remark response: %w", err)
	}
	dao.Logger.WithFields(logrus.Fields{
		"submission_id": resp.SurveySubmissionID,
		"question_id":   resp.QuestionID,
	}).Info("Remark response stored")
	return nil
}
