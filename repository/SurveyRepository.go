package repository

import (
	"context"
	"errors"
	"fmt"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrHasSubmissions refuses to rewrite questions that answers point at.
var ErrHasSubmissions = errors.New("survey has submissions")

// SurveyRepository defines the interface for survey templates
type SurveyRepository interface {
	// List returns surveys with questions and options, newest first.
	// A non-nil ratedDeptID filters by rated department.
	List(ctx context.Context, ratedDeptID *uint) ([]models.Survey, error)

	GetByID(ctx context.Context, id uint) (*models.Survey, error)

	// Create inserts the survey with its questions and options
	Create(ctx context.Context, survey *models.Survey) error

	// Replace overwrites the survey's fields and questions. It returns
	// ErrHasSubmissions once anyone has answered the survey.
	Replace(ctx context.Context, survey *models.Survey) error

	// Delete removes the survey and everything hanging off it
	Delete(ctx context.Context, id uint) error

	CountSubmissions(ctx context.Context, surveyID uint) (int64, error)
}

// SurveyDao implements SurveyRepository using GORM
type SurveyDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func (dao *SurveyDao) withTree(db *gorm.DB) *gorm.DB {
	return db.Preload("RatedDepartment").
		Preload("ManagingDepartment").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		})
}

func (dao *SurveyDao) List(ctx context.Context, ratedDeptID *uint) ([]models.Survey, error) {
	surveys := []models.Survey{}
	q := dao.withTree(dao.DB.WithContext(ctx)).Order("created_at DESC, id DESC")
	if ratedDeptID != nil {
		q = q.Where("rated_department_id = ?", *ratedDeptID)
	}
	if err := q.Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, nil
}

func (dao *SurveyDao) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := dao.withTree(dao.DB.WithContext(ctx)).First(&survey, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get survey %d: %w", id, err)
	}
	return &survey, nil
}

func insertQuestions(tx *gorm.DB, surveyID uint, questions []models.Question) error {
	for i := range questions {
		q := &questions[i]
		q.SurveyID = surveyID
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return fmt.Errorf("failed to insert question %d: %w", q.Order, err)
		}
		for j := range q.Options {
			q.Options[j].QuestionID = q.ID
		}
		if len(q.Options) > 0 {
			if err := tx.Create(&q.Options).Error; err != nil {
				return fmt.Errorf("failed to insert options of question %d: %w", q.Order, err)
			}
		}
	}
	return nil
}

func (dao *SurveyDao) Create(ctx context.Context, survey *models.Survey) error {
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(survey).Error; err != nil {
			return fmt.Errorf("failed to insert survey: %w", err)
		}
		return insertQuestions(tx, survey.ID, survey.Questions)
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "CreateSurvey",
			"title":     survey.Title,
			"error":     err.Error(),
		}).Error("Failed to create survey")
		return err
	}
	dao.Logger.WithFields(logrus.Fields{
		"survey_id": survey.ID,
		"questions": len(survey.Questions),
	}).Info("Successfully created survey")
	return nil
}

func deleteQuestions(tx *gorm.DB, surveyID uint) error {
	questionIDs := tx.Model(&models.Question{}).Select("id").Where("survey_id = ?", surveyID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Option{}).Error; err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	return nil
}

func (dao *SurveyDao) Replace(ctx context.Context, survey *models.Survey) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR UPDATE waits out the key share lock of any submission insert in flight
		lock := tx
		if tx.Dialector.Name() == "postgres" {
			lock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := lock.Select("id").First(&models.Survey{}, survey.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock survey: %w", err)
		}
		var n int64
		if err := tx.Model(&models.SurveySubmission{}).Where("survey_id = ?", survey.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count submissions: %w", err)
		}
		if n > 0 {
			return ErrHasSubmissions
		}

		res := tx.Model(&models.Survey{}).Where("id = ?", survey.ID).Updates(map[string]any{
			"title":                  survey.Title,
			"description":            survey.Description,
			"rated_department_id":    survey.RatedDepartmentID,
			"managing_department_id": survey.ManagingDepartmentID,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update survey: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := deleteQuestions(tx, survey.ID); err != nil {
			return err
		}
		return insertQuestions(tx, survey.ID, survey.Questions)
	})
}

func (dao *SurveyDao) Delete(ctx context.Context, id uint) error {
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissionIDs := tx.Model(&models.SurveySubmission{}).Select("id").Where("survey_id = ?", id)
		if err := tx.Where("survey_submission_id IN (?)", submissionIDs).Delete(&models.RemarkResponse{}).Error; err != nil {
			return fmt.Errorf("failed to delete remark responses: %w", err)
		}
		if err := tx.Where("submission_id IN (?)", submissionIDs).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.SurveySubmission{}).Error; err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if err := deleteQuestions(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Survey{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete survey: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			dao.Logger.WithFields(logrus.Fields{
				"operation": "DeleteSurvey",
				"survey_id": id,
				"error":     err.Error(),
			}).Error("Failed to delete survey")
		}
		return err
	}
	dao.Logger.WithField("survey_id", id).Info("Successfully deleted survey")
	return nil
}

func (dao *SurveyDao) CountSubmissions(ctx context.Context, surveyID uint) (int64, error) {
	var n int64
	if err := dao.DB.WithContext(ctx).Model(&models.SurveySubmission{}).
		Where("survey_id = ?", surveyID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}
