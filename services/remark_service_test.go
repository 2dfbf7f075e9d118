package services

import (
	"context"
	"testing"

	"deptsurvey/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemarks_RespondTwiceUpdatesSameRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	alice := e.member(t, "alice", sales)
	bob := e.member(t, "bob", it)
	s := e.ratingSurvey(t, it, "Quality", "Delivery")

	sub, err := e.submitSvc.Submit(ctx, alice, s.ID, models.SubmitSurveyRequest{Answers: []models.AnswerInput{
		rate(s.Questions[0], 2, "Reports arrive late"),
		rate(s.Questions[1], 5, ""),
	}})
	require.NoError(t, err)

	incoming, err := e.remarkSvc.Incoming(ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, sub.ID, incoming[0].ID)
	assert.Equal(t, s.Questions[0].ID, incoming[0].QuestionDataID)
	assert.Equal(t, "Sales", incoming[0].FromDepartment)
	assert.Equal(t, "Reports arrive late", incoming[0].Remark)
	assert.Equal(t, "2024-06-15", incoming[0].SurveyDate)

	req := models.RemarkRespondRequest{
		SubmissionID:      sub.ID,
		QuestionID:        s.Questions[0].ID,
		Explanation:       "Staff shortage",
		ActionPlan:        "Hire",
		ResponsiblePerson: "bob",
	}
	first, err := e.remarkSvc.Respond(ctx, bob, req)
	require.NoError(t, err)

	req.Explanation = "Staff shortage, now resolved"
	second, err := e.remarkSvc.Respond(ctx, bob, req)
	require.NoError(t, err)
	assert.Equal(t, first.SurveySubmissionID, second.SurveySubmissionID)

	var rows []models.RemarkResponse
	require.NoError(t, e.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Staff shortage, now resolved", rows[0].Explanation)
	assert.Equal(t, it.ID, rows[0].RespondedByDepartmentID)

	incoming, err = e.remarkSvc.Incoming(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	outgoing, err := e.remarkSvc.Outgoing(ctx, alice)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.True(t, outgoing[0].Responded)
	assert.Equal(t, "IT", outgoing[0].Department)
	assert.Equal(t, "Hire", outgoing[0].TheirResponse.ActionPlan)
}

func TestRemarks_LegacyFieldNames(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	alice := e.member(t, "alice", sales)
	bob := e.member(t, "bob", it)
	s := e.ratingSurvey(t, it, "Quality")
	sub, err := e.submitSvc.Submit(ctx, alice, s.ID, models.SubmitSurveyRequest{Answers: []models.AnswerInput{
		rate(s.Questions[0], 1, "Bad"),
	}})
	require.NoError(t, err)

	_, err = e.remarkSvc.Respond(ctx, bob, models.RemarkRespondRequest{
		SurveyID:          sub.ID,
		QuestionDataID:    s.Questions[0].ID,
		Explanation:       "e",
		ActionPlan:        "a",
		ResponsiblePerson: "p",
	})
	assert.NoError(t, err)
}

func TestRemarks_RespondRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	hr := e.dept(t, "HR")
	alice := e.member(t, "alice", sales)
	bob := e.member(t, "bob", it)
	carol := e.member(t, "carol", hr)
	s := e.ratingSurvey(t, it, "Quality", "Delivery")
	sub, err := e.submitSvc.Submit(ctx, alice, s.ID, models.SubmitSurveyRequest{Answers: []models.AnswerInput{
		rate(s.Questions[0], 1, "Bad"),
		rate(s.Questions[1], 4, ""),
	}})
	require.NoError(t, err)

	valid := models.RemarkRespondRequest{
		SubmissionID:      sub.ID,
		QuestionID:        s.Questions[0].ID,
		Explanation:       "e",
		ActionPlan:        "a",
		ResponsiblePerson: "p",
	}

	missing := valid
	missing.ActionPlan = " "
	_, err = e.remarkSvc.Respond(ctx, bob, missing)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.remarkSvc.Respond(ctx, carol, valid)
	assert.ErrorIs(t, err, ErrNotFound, "other departments cannot respond")

	unknown := valid
	unknown.SubmissionID = 9999
	_, err = e.remarkSvc.Respond(ctx, bob, unknown)
	assert.ErrorIs(t, err, ErrNotFound)

	noRemark := valid
	noRemark.QuestionID = s.Questions[1].ID
	_, err = e.remarkSvc.Respond(ctx, bob, noRemark)
	assert.ErrorIs(t, err, ErrNotFound)
}
