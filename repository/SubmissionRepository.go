package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionFilter narrows submission listings. Zero values mean "any".
type SubmissionFilter struct {
	SubmitterUserID   uint
	RatedDepartmentID uint
	Since             *time.Time
	Limit             int
}

// SubmissionRepository defines the interface for survey submissions
type SubmissionRepository interface {
	// Find returns the submission of userID for surveyID or ErrNotFound
	Find(ctx context.Context, surveyID, userID uint) (*models.SurveySubmission, error)

	// Create inserts the submission and its answers in one transaction
	Create(ctx context.Context, sub *models.SurveySubmission) error

	GetByID(ctx context.Context, id uint) (*models.SurveySubmission, error)

	// List returns submissions newest first with survey, people, answers and responses loaded
	List(ctx context.Context, filter SubmissionFilter) ([]models.SurveySubmission, error)
}

// SubmissionDao implements SubmissionRepository using GORM
type SubmissionDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func (dao *SubmissionDao) Find(ctx context.Context, surveyID, userID uint) (*models.SurveySubmission, error) {
	var sub models.SurveySubmission
	err := dao.DB.WithContext(ctx).
		Where("survey_id = ? AND submitter_user_id = ?", surveyID, userID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up submission: %w", err)
	}
	return &sub, nil
}

func (dao *SubmissionDao) Create(ctx context.Context, sub *models.SurveySubmission) error {
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to insert submission: %w", err)
		}
		for i := range sub.Answers {
			sub.Answers[i].SubmissionID = sub.ID
		}
		if len(sub.Answers) > 0 {
			if err := tx.Omit(clause.Associations).Create(&sub.Answers).Error; err != nil {
				return fmt.Errorf("failed to insert answers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "CreateSubmission",
			"survey_id": sub.SurveyID,
			"user_id":   sub.SubmitterUserID,
			"error":     err.Error(),
		}).Warn("Submission not stored")
		return err
	}
	dao.Logger.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"survey_id":     sub.SurveyID,
		"user_id":       sub.SubmitterUserID,
		"answers":       len(sub.Answers),
	}).Info("Survey submitted")
	return nil
}

func (dao *SubmissionDao) withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Survey").
		Preload("Submitter").
		Preload("SubmitterDepartment").
		Preload("RatedDepartment").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		Preload("Answers.Question").
		Preload("Answers.SelectedOption").
		Preload("RemarkResponses").
		Preload("RemarkResponses.RespondedByDepartment")
}

func (dao *SubmissionDao) GetByID(ctx context.Context, id uint) (*models.SurveySubmission, error) {
	var sub models.SurveySubmission
	err := dao.withDetails(dao.DB.WithContext(ctx)).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %d: %w", id, err)
	}
	return &sub, nil
}

func (dao *SubmissionDao) List(ctx context.Context, filter SubmissionFilter) ([]models.SurveySubmission, error) {
	subs := []models.SurveySubmission{}
	q := dao.withDetails(dao.DB.WithContext(ctx)).Order("submitted_at DESC, id DESC")
	if filter.SubmitterUserID != 0 {
		q = q.Where("submitter_user_id = ?", filter.SubmitterUserID)
	}
	if filter.RatedDepartmentID != 0 {
		q = q.Where("rated_department_id = ?", filter.RatedDepartmentID)
	}
	if filter.Since != nil {
		q = q.Where("submitted_at >= ?", *filter.Since)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}
