package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_CrossDepartmentExample(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.deptWithID(t, 7, "IT")
	sales := e.deptWithID(t, 3, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality", "Delivery")
	e.allow(t, sales, it)
	e.submitSvc.RequirePermission = true

	req := models.SubmitSurveyRequest{Answers: []models.AnswerInput{
		rate(s.Questions[0], 4, ""),
		rate(s.Questions[1], 5, ""),
	}}
	sub, err := e.submitSvc.Submit(ctx, u, s.ID, req)
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.Equal(t, uint(3), sub.SubmitterDepartmentID)
	assert.Equal(t, uint(7), sub.RatedDepartmentID)
	require.NotNil(t, sub.OverallCustomerRating)
	assert.InDelta(t, 90, *sub.OverallCustomerRating, 0.001)

	_, err = e.submitSvc.Submit(ctx, u, s.ID, req)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	subs, err := e.submissions.List(ctx, repository.SubmissionFilter{SubmitterUserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubmit_SelfRatingRefused(t *testing.T) {
	e := newEnv(t)
	it := e.dept(t, "IT")
	u := e.member(t, "u", it)
	s := e.ratingSurvey(t, it, "Quality")

	_, err := e.submitSvc.Submit(context.Background(), u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 5, "")},
	})
	assert.ErrorIs(t, err, ErrSelfRating)
}

func TestSubmit_LowRatingNeedsRemark(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")

	_, err := e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 1, "")},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 1, "   ")},
	})
	require.ErrorIs(t, err, ErrValidation, "blank remark does not count")

	sub, err := e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 1, "Deliveries were late")},
	})
	require.NoError(t, err)
	require.Len(t, sub.Answers, 1)
	assert.Equal(t, "Deliveries were late", *sub.Answers[0].TextResponse)
}

func TestSubmit_ThresholdZeroDisablesRemarkRule(t *testing.T) {
	e := newEnv(t)
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")
	e.submitSvc.LowRatingThreshold = 0

	_, err := e.submitSvc.Submit(context.Background(), u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 1, "")},
	})
	assert.NoError(t, err)
}

func TestSubmit_AnswerValidation(t *testing.T) {
	e := newEnv(t)
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality", "Delivery")
	other := e.ratingSurvey(t, sales, "Quality")
	q1, q2 := s.Questions[0], s.Questions[1]

	cases := map[string][]models.AnswerInput{
		"too few answers":     {rate(q1, 4, "")},
		"duplicate question":  {rate(q1, 4, ""), rate(q1, 4, "")},
		"foreign question":    {rate(q1, 4, ""), rate(other.Questions[0], 4, "")},
		"rating above scale":  {rate(q1, 6, ""), rate(q2, 4, "")},
		"rating below scale":  {rate(q1, 0, "x"), rate(q2, 4, "")},
		"missing rating":      {{QuestionID: &q1.ID}, rate(q2, 4, "")},
		"missing question id": {{Rating: intPtr(3)}, rate(q2, 4, "")},
	}
	for name, answers := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.submitSvc.Submit(context.Background(), u, s.ID, models.SubmitSurveyRequest{Answers: answers})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSubmit_ErrorTextIsPlain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	s := e.ratingSurvey(t, it, "Quality", "Delivery")

	_, err := e.submitSvc.Submit(ctx, e.member(t, "u", sales), s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 4, "")},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "expected 2 answers, got 1", err.Error())

	_, err = e.submitSvc.Submit(ctx, e.member(t, "v", it), s.ID, models.SubmitSurveyRequest{})
	require.ErrorIs(t, err, ErrSelfRating)
	assert.Equal(t, "users cannot rate their own department", err.Error())
}

func TestSubmit_ConcurrentAttemptsOneWins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
				Answers: []models.AnswerInput{rate(s.Questions[0], 4, "")},
			})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateSubmission):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)

	var rows int64
	require.NoError(t, e.db.Model(&models.SurveySubmission{}).Where("survey_id = ?", s.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

// staleFind never sees an earlier submission, so only the unique index can refuse a repeat.
type staleFind struct {
	repository.SubmissionRepository
}

func (staleFind) Find(context.Context, uint, uint) (*models.SurveySubmission, error) {
	return nil, repository.ErrNotFound
}

func TestSubmit_DuplicateCaughtAtInsert(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")
	svc := &SubmissionService{
		Surveys:            e.surveys,
		Submissions:        staleFind{e.submissions},
		LowRatingThreshold: 2,
		Logger:             e.log,
	}
	req := models.SubmitSurveyRequest{Answers: []models.AnswerInput{rate(s.Questions[0], 4, "")}}

	_, err := svc.Submit(ctx, u, s.ID, req)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, u, s.ID, req)
	require.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.Equal(t, "you have already submitted this survey", err.Error())

	var answers int64
	require.NoError(t, e.db.Model(&models.Answer{}).Count(&answers).Error)
	assert.Equal(t, int64(1), answers)
}

func TestSubmit_OverallRatingBounds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")
	answers := []models.AnswerInput{rate(s.Questions[0], 3, "")}

	tooHigh := 101.0
	_, err := e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{Answers: answers, OverallCustomerRating: &tooHigh})
	require.ErrorIs(t, err, ErrValidation)

	given := 75.5
	suggestion := "  More training  "
	sub, err := e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
		Answers:               answers,
		OverallCustomerRating: &given,
		Suggestion:            &suggestion,
	})
	require.NoError(t, err)
	assert.Equal(t, 75.5, *sub.OverallCustomerRating)
	require.NotNil(t, sub.Suggestions)
	assert.Equal(t, "More training", *sub.Suggestions)
}

func TestSubmit_MultipleChoiceOption(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)

	dto, err := e.surveySvc.Create(ctx, models.SurveyRequest{
		Title:             "Channel",
		RatedDepartmentID: it.ID,
		Questions: []models.QuestionRequest{{
			Text: "Preferred channel",
			Type: models.QuestionMultipleChoice,
			Options: []models.OptionRequest{
				{Text: "Email"},
				{Text: "Phone"},
			},
		}},
	})
	require.NoError(t, err)
	s, err := e.surveys.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	q := s.Questions[0]

	bogus := uint(9999)
	_, err = e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{{QuestionID: &q.ID, SelectedOptionID: &bogus}},
	})
	require.ErrorIs(t, err, ErrValidation)

	sub, err := e.submitSvc.Submit(ctx, u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{{QuestionID: &q.ID, SelectedOptionID: &q.Options[1].ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, *sub.OverallCustomerRating, "no rating answers")
}

func TestSubmit_PermissionRequired(t *testing.T) {
	e := newEnv(t)
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")
	e.submitSvc.RequirePermission = true

	_, err := e.submitSvc.Submit(context.Background(), u, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{rate(s.Questions[0], 4, "")},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmit_NotFound(t *testing.T) {
	e := newEnv(t)
	it := e.dept(t, "IT")
	loner := e.member(t, "loner", nil)
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	s := e.ratingSurvey(t, it, "Quality")

	_, err := e.submitSvc.Submit(context.Background(), loner, s.ID, models.SubmitSurveyRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.submitSvc.Submit(context.Background(), u, 4242, models.SubmitSurveyRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySubmissions_NewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	hr := e.dept(t, "HR")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)
	first := e.ratingSurvey(t, it, "Quality")
	second := e.ratingSurvey(t, hr, "Quality")

	_, err := e.submitSvc.Submit(ctx, u, first.ID, models.SubmitSurveyRequest{Answers: []models.AnswerInput{rate(first.Questions[0], 4, "")}})
	require.NoError(t, err)
	e.now = e.now.Add(time.Minute)
	_, err = e.submitSvc.Submit(ctx, u, second.ID, models.SubmitSurveyRequest{Answers: []models.AnswerInput{rate(second.Questions[0], 3, "")}})
	require.NoError(t, err)

	subs, err := e.submitSvc.MySubmissions(ctx, u)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "HR", subs[0].RatedDepartmentName)
	assert.Equal(t, "Sales", subs[0].SubmitterDepartmentName)
	assert.Equal(t, "u", subs[0].SubmitterUsername)
}
