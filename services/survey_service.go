package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/storage"

	"github.com/sirupsen/logrus"
)

// SurveyService manages survey templates.
type SurveyService struct {
	Surveys     repository.SurveyRepository
	Departments repository.DepartmentRepository
	Submissions repository.SubmissionRepository
	Logger      *logrus.Logger
}

// ToSurveyDTO renders a survey with its questions in display order.
func ToSurveyDTO(s models.Survey) models.SurveyDTO {
	dto := models.SurveyDTO{
		ID:                   s.ID,
		Title:                s.Title,
		Description:          s.Description,
		CreatedAt:            s.CreatedAt.UTC().Format(time.RFC3339),
		RatedDepartmentID:    s.RatedDepartmentID,
		ManagingDepartmentID: s.ManagingDepartmentID,
		Questions:            make([]models.QuestionDTO, 0, len(s.Questions)),
	}
	if s.RatedDepartment != nil {
		dto.RatedDeptName = s.RatedDepartment.Name
	}
	if s.ManagingDepartment != nil {
		name := s.ManagingDepartment.Name
		dto.ManagingDeptName = &name
	}
	for _, q := range s.Questions {
		qd := models.QuestionDTO{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Order:    q.Order,
			Category: q.Category,
		}
		if q.Type == models.QuestionMultipleChoice {
			qd.Options = make([]models.OptionDTO, 0, len(q.Options))
			for _, o := range q.Options {
				qd.Options = append(qd.Options, models.OptionDTO{ID: o.ID, Text: o.Text, Value: o.Value})
			}
		}
		dto.Questions = append(dto.Questions, qd)
	}
	return dto
}

func (s *SurveyService) List(ctx context.Context, ratedDeptID *uint) ([]models.SurveyDTO, error) {
	surveys, err := s.Surveys.List(ctx, ratedDeptID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SurveyDTO, 0, len(surveys))
	for _, sv := range surveys {
		out = append(out, ToSurveyDTO(sv))
	}
	return out, nil
}

// Get returns the survey model with questions and departments loaded.
func (s *SurveyService) Get(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.Surveys.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("survey %d not found", id)
	}
	return survey, err
}

func (s *SurveyService) build(ctx context.Context, req models.SurveyRequest) (*models.Survey, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if req.RatedDepartmentID == 0 {
		return nil, invalid("rated_department_id is required")
	}
	if len(req.Questions) == 0 {
		return nil, invalid("a survey needs at least one question")
	}

	ids := []uint{req.RatedDepartmentID}
	if req.ManagingDepartmentID != nil {
		ids = append(ids, *req.ManagingDepartmentID)
	}
	existing, err := s.Departments.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if !existing[req.RatedDepartmentID] {
		return nil, invalid("rated department %d does not exist", req.RatedDepartmentID)
	}
	if req.ManagingDepartmentID != nil && !existing[*req.ManagingDepartmentID] {
		return nil, invalid("managing department %d does not exist", *req.ManagingDepartmentID)
	}

	survey := &models.Survey{
		Title:                title,
		Description:          strings.TrimSpace(req.Description),
		RatedDepartmentID:    req.RatedDepartmentID,
		ManagingDepartmentID: req.ManagingDepartmentID,
	}

	orders := map[int]bool{}
	for i, qr := range req.Questions {
		text := strings.TrimSpace(qr.Text)
		if text == "" {
			return nil, invalid("question %d has no text", i+1)
		}
		if !models.ValidQuestionType(qr.Type) {
			return nil, invalid("question %d has unsupported type %q", i+1, qr.Type)
		}
		order := i + 1
		if qr.Order != nil {
			order = *qr.Order
		}
		if orders[order] {
			return nil, invalid("question order %d is used twice", order)
		}
		orders[order] = true

		q := models.Question{
			Text:     text,
			Type:     qr.Type,
			Order:    order,
			Category: strings.TrimSpace(qr.Category),
		}

		switch {
		case qr.Type == models.QuestionMultipleChoice && len(qr.Options) == 0:
			return nil, invalid("multiple choice question %d needs options", i+1)
		case qr.Type != models.QuestionMultipleChoice && len(qr.Options) > 0:
			return nil, invalid("question %d of type %s cannot have options", i+1, qr.Type)
		}
		optOrders := map[int]bool{}
		for j, opt := range qr.Options {
			if strings.TrimSpace(opt.Text) == "" {
				return nil, invalid("option %d of question %d has no text", j+1, i+1)
			}
			oo := j
			if opt.Order != nil {
				oo = *opt.Order
			}
			if optOrders[oo] {
				return nil, invalid("option order %d is used twice in question %d", oo, i+1)
			}
			optOrders[oo] = true
			q.Options = append(q.Options, models.Option{Text: strings.TrimSpace(opt.Text), Value: opt.Value, Order: oo})
		}
		survey.Questions = append(survey.Questions, q)
	}
	return survey, nil
}

// Create validates and stores a new template.
func (s *SurveyService) Create(ctx context.Context, req models.SurveyRequest) (*models.SurveyDTO, error) {
	survey, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Surveys.Create(ctx, survey); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, invalid("question or option order is not unique")
		}
		return nil, err
	}
	return s.dto(ctx, survey.ID)
}

// Update replaces a template that nobody has answered yet.
func (s *SurveyService) Update(ctx context.Context, id uint, req models.SurveyRequest) (*models.SurveyDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	n, err := s.Surveys.CountSubmissions(ctx, id)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, conflict("survey %d already has %d submissions", id, n)
	}

	survey, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	survey.ID = id
	if err := s.Surveys.Replace(ctx, survey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("survey %d not found", id)
		}
		if errors.Is(err, repository.ErrHasSubmissions) {
			return nil, conflict("survey %d already has submissions", id)
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"operation": "UpdateSurvey", "survey_id": id}).Info("Survey replaced")
	return s.dto(ctx, id)
}

// Delete removes a template with its submissions, answers and responses.
func (s *SurveyService) Delete(ctx context.Context, id uint) error {
	err := s.Surveys.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("survey %d not found", id)
	}
	return err
}

// Status tells whether user already submitted survey id.
func (s *SurveyService) Status(ctx context.Context, id uint, user *models.User) (*models.SubmissionStatus, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	status := &models.SubmissionStatus{SurveyID: id}
	sub, err := s.Submissions.Find(ctx, id, user.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return status, nil
	case err != nil:
		return nil, err
	}
	status.Submitted = true
	status.SubmissionID = &sub.ID
	return status, nil
}

func (s *SurveyService) dto(ctx context.Context, id uint) (*models.SurveyDTO, error) {
	survey, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToSurveyDTO(*survey)
	return &dto, nil
}
