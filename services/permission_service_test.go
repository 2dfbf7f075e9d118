package services

import (
	"context"
	"testing"
	"time"

	"deptsurvey/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOTime(t *testing.T) {
	for _, in := range []string{
		"2024-06-01T08:30:00Z",
		"2024-06-01T10:30:00+02:00",
		"2024-06-01T08:30:00.000Z",
		"2024-06-01T08:30:00",
		"2024-06-01T08:30",
	} {
		got, err := ParseISOTime(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)), in)
		assert.Equal(t, time.UTC, got.Location())
	}

	day, err := ParseISOTime("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseISOTime("01/06/2024")
	assert.Error(t, err)
}

func TestReplace_SkipsInvalidPairs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	hr := e.dept(t, "HR")
	unknown := uint(999)

	res, err := e.permSvc.Replace(ctx, models.SetPermissionsRequest{
		AllowedPairs: []models.PermissionPair{
			{FromDeptID: &sales.ID, ToDeptID: &it.ID},
			{FromDeptID: &sales.ID, ToDeptID: &unknown},
			{FromDeptID: &it.ID, ToDeptID: &it.ID},
			{FromDeptID: &hr.ID, ToDeptID: &hr.ID, CanSurveySelf: true},
			{FromDeptID: &sales.ID, ToDeptID: &it.ID},
			{FromDeptID: nil, ToDeptID: &it.ID},
		},
		StartDate: "2024-06-01T00:00:00Z",
		EndDate:   "2024-06-30T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Saved)
	require.Len(t, res.Skipped, 4)
	reasons := []string{}
	for _, s := range res.Skipped {
		reasons = append(reasons, s.Reason)
	}
	assert.Equal(t, []string{SkipUnknownDept, SkipSelfNotAllowed, SkipDuplicatePair, SkipMissingID}, reasons)

	perms, err := e.permSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, "2024-06-01T00:00:00Z", perms[0].StartDate)
	assert.Equal(t, "2024-06-30T00:00:00Z", perms[0].EndDate)
}

func TestReplace_BadDatesWriteNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	e.allow(t, sales, it)

	for name, req := range map[string]models.SetPermissionsRequest{
		"missing end": {StartDate: "2024-06-01"},
		"garbage":     {StartDate: "soon", EndDate: "later"},
		"reversed":    {StartDate: "2024-06-30", EndDate: "2024-06-01"},
	} {
		req.AllowedPairs = []models.PermissionPair{{FromDeptID: &it.ID, ToDeptID: &sales.ID}}
		_, err := e.permSvc.Replace(ctx, req)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	perms, err := e.permSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, sales.ID, perms[0].FromDepartmentID)
}

func TestReplace_EmptyClearsMatrix(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.allow(t, e.dept(t, "Sales"), e.dept(t, "IT"))

	res, err := e.permSvc.Replace(ctx, models.SetPermissionsRequest{StartDate: "2024-06-01", EndDate: "2024-06-30"})
	require.NoError(t, err)
	assert.Zero(t, res.Saved)

	perms, err := e.permSvc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestSurveyableDepartments_Window(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	hr := e.dept(t, "HR")
	sales := e.dept(t, "Sales")
	u := e.member(t, "u", sales)

	_, err := e.permSvc.Replace(ctx, models.SetPermissionsRequest{
		AllowedPairs: []models.PermissionPair{
			{FromDeptID: &sales.ID, ToDeptID: &it.ID},
			{FromDeptID: &sales.ID, ToDeptID: &hr.ID},
		},
		StartDate: "2024-06-10",
		EndDate:   "2024-06-20",
	})
	require.NoError(t, err)

	depts, err := e.permSvc.SurveyableDepartments(ctx, u)
	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, "HR", depts[0].Name)
	assert.Equal(t, "IT", depts[1].Name)

	e.now = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	depts, err = e.permSvc.SurveyableDepartments(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, depts)

	_, err = e.permSvc.SurveyableDepartments(ctx, e.member(t, "loner", nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMailAlert_Simulated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")
	e.member(t, "alice", sales)
	e.member(t, "bob", it)

	res, err := e.permSvc.MailAlert(ctx, models.SetPermissionsRequest{
		AllowedPairs: []models.PermissionPair{{FromDeptID: &sales.ID, ToDeptID: &it.ID}},
		StartDate:    "2024-06-01",
		EndDate:      "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, res.AlertDetails, 1)
	assert.Contains(t, res.AlertDetails[0], "alice")
	assert.Contains(t, res.AlertDetails[0], "Can now survey: IT")
	assert.Contains(t, res.Message, "simulated")

	require.Len(t, e.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", e.mailer.sent[0].To)

	_, err = e.permSvc.MailAlert(ctx, models.SetPermissionsRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMailAlert_NoUsers(t *testing.T) {
	e := newEnv(t)
	it := e.dept(t, "IT")
	sales := e.dept(t, "Sales")

	res, err := e.permSvc.MailAlert(context.Background(), models.SetPermissionsRequest{
		AllowedPairs: []models.PermissionPair{{FromDeptID: &sales.ID, ToDeptID: &it.ID}},
		StartDate:    "2024-06-01",
		EndDate:      "2024-06-30",
	})
	require.NoError(t, err)
	assert.Empty(t, res.AlertDetails)
	assert.Contains(t, res.Message, "No relevant users")
}
