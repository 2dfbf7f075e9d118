package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/storage"

	"github.com/sirupsen/logrus"
)

// Rating scale of rating questions, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// SubmissionService runs the one-shot submission workflow.
type SubmissionService struct {
	Surveys     repository.SurveyRepository
	Submissions repository.SubmissionRepository
	Permissions *PermissionService

	// Ratings at or below LowRatingThreshold need a remark; 0 disables the rule.
	LowRatingThreshold int

	// RequirePermission also demands an active permission window.
	RequirePermission bool

	Logger *logrus.Logger

	now func() time.Time
}

func (s *SubmissionService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func optionalText(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	if t == "" {
		return nil
	}
	return &t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Submit stores the user's answers to survey surveyID.
func (s *SubmissionService) Submit(ctx context.Context, user *models.User, surveyID uint, req models.SubmitSurveyRequest) (*models.SurveySubmission, error) {
	log := s.Logger.WithFields(logrus.Fields{
		"operation": "SubmitSurvey",
		"survey_id": surveyID,
		"username":  user.Username,
	})

	if user.DepartmentID == nil {
		return nil, notFound("user %q has no department", user.Username)
	}
	deptID := *user.DepartmentID

	survey, err := s.Surveys.GetByID(ctx, surveyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("survey %d not found", surveyID)
	}
	if err != nil {
		return nil, err
	}

	if survey.RatedDepartmentID == deptID {
		log.Warn("Self rating refused")
		return nil, NewError(ErrSelfRating, "users cannot rate their own department")
	}

	if s.RequirePermission && s.Permissions != nil {
		ok, err := s.Permissions.CanSurvey(ctx, deptID, survey.RatedDepartmentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, forbidden("your department has no active permission to survey this department")
		}
	}

	_, err = s.Submissions.Find(ctx, surveyID, user.ID)
	if err == nil {
		return nil, NewError(ErrDuplicateSubmission, "you have already submitted this survey")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	answers, overall, err := s.validateAnswers(survey, req)
	if err != nil {
		return nil, err
	}

	sub := &models.SurveySubmission{
		SurveyID:              survey.ID,
		SubmitterUserID:       user.ID,
		SubmittedAt:           s.clock(),
		SubmitterDepartmentID: deptID,
		RatedDepartmentID:     survey.RatedDepartmentID,
		OverallCustomerRating: &overall,
		RatingDescription:     optionalText(req.RatingDescription),
		Suggestions:           optionalText(strPtr(req.SuggestionText())),
		Answers:               answers,
	}
	if err := s.Submissions.Create(ctx, sub); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, NewError(ErrDuplicateSubmission, "you have already submitted this survey")
		}
		return nil, err
	}
	return sub, nil
}

func strPtr(s string) *string { return &s }

// validateAnswers checks one answer per survey question and derives the
// overall percentage when the client did not send one.
func (s *SubmissionService) validateAnswers(survey *models.Survey, req models.SubmitSurveyRequest) ([]models.Answer, float64, error) {
	if len(req.Answers) != len(survey.Questions) {
		return nil, 0, invalid("expected %d answers, got %d", len(survey.Questions), len(req.Answers))
	}

	questions := make(map[uint]*models.Question, len(survey.Questions))
	for i := range survey.Questions {
		questions[survey.Questions[i].ID] = &survey.Questions[i]
	}

	answered := map[uint]bool{}
	answers := make([]models.Answer, 0, len(req.Answers))
	ratingSum, ratingCount := 0, 0

	for i, in := range req.Answers {
		qid, ok := in.Question()
		if !ok {
			return nil, 0, invalid("answer %d has no question_id", i+1)
		}
		q, ok := questions[qid]
		if !ok {
			return nil, 0, invalid("question %d does not belong to this survey", qid)
		}
		if answered[qid] {
			return nil, 0, invalid("question %d answered twice", qid)
		}
		answered[qid] = true

		text := strings.TrimSpace(in.FreeText())
		ans := models.Answer{QuestionID: qid}
		if text != "" {
			ans.TextResponse = &text
		}

		switch q.Type {
		case models.QuestionRating:
			if in.Rating == nil {
				return nil, 0, invalid("question %d needs a rating", qid)
			}
			r := *in.Rating
			if r < MinRating || r > MaxRating {
				return nil, 0, invalid("rating for question %d must be between %d and %d", qid, MinRating, MaxRating)
			}
			if r <= s.LowRatingThreshold && text == "" {
				return nil, 0, invalid("a remark is required for ratings of %d or below (question %d)", s.LowRatingThreshold, qid)
			}
			ans.RatingValue = &r
			ratingSum += r
			ratingCount++
		case models.QuestionMultipleChoice:
			if in.SelectedOptionID == nil {
				return nil, 0, invalid("question %d needs a selected option", qid)
			}
			if !hasOption(q, *in.SelectedOptionID) {
				return nil, 0, invalid("option %d does not belong to question %d", *in.SelectedOptionID, qid)
			}
			opt := *in.SelectedOptionID
			ans.SelectedOptionID = &opt
		}
		answers = append(answers, ans)
	}

	if req.OverallCustomerRating != nil {
		v := *req.OverallCustomerRating
		if math.IsNaN(v) || v < 0 || v > 100 {
			return nil, 0, invalid("overall_customer_rating must be between 0 and 100")
		}
		return answers, v, nil
	}
	if ratingCount == 0 {
		return answers, 0, nil
	}
	return answers, round2(float64(ratingSum) / float64(ratingCount) / MaxRating * 100), nil
}

func hasOption(q *models.Question, optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// ToSubmissionDTO flattens a submission with its relations.
func ToSubmissionDTO(sub models.SurveySubmission) models.SubmissionDTO {
	dto := models.SubmissionDTO{
		ID:                    sub.ID,
		SurveyID:              sub.SurveyID,
		SubmitterUserID:       sub.SubmitterUserID,
		SubmitterDepartmentID: sub.SubmitterDepartmentID,
		RatedDepartmentID:     sub.RatedDepartmentID,
		SubmittedAt:           sub.SubmittedAt.UTC().Format(time.RFC3339),
		OverallCustomerRating: sub.OverallCustomerRating,
		RatingDescription:     sub.RatingDescription,
		Suggestions:           sub.Suggestions,
	}
	if sub.Survey != nil {
		dto.SurveyTitle = sub.Survey.Title
	}
	if sub.SubmitterDepartment != nil {
		dto.SubmitterDepartmentName = sub.SubmitterDepartment.Name
	}
	if sub.RatedDepartment != nil {
		dto.RatedDepartmentName = sub.RatedDepartment.Name
	}
	if sub.Submitter != nil {
		dto.SubmitterUsername = sub.Submitter.Username
	}
	return dto
}

// MySubmissions lists the user's submissions, newest first.
func (s *SubmissionService) MySubmissions(ctx context.Context, user *models.User) ([]models.SubmissionDTO, error) {
	subs, err := s.Submissions.List(ctx, repository.SubmissionFilter{SubmitterUserID: user.ID})
	if err != nil {
		return nil, err
	}
	out := make([]models.SubmissionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, ToSubmissionDTO(sub))
	}
	return out, nil
}
