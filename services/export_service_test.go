package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"deptsurvey/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseExportType(t *testing.T) {
	for in, want := range map[string]string{
		"My Submitted Surveys":   ExportSubmittedByMe,
		"submitted-by-me":        ExportSubmittedByMe,
		" Department Ratings ":   ExportDepartmentRatings,
		"Submitted Remarks Only": ExportRemarksOnly,
		"remarks-only":           ExportRemarksOnly,
	} {
		got, err := ParseExportType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseExportType("")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseExportType("everything")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 17, 45, 0, 0, time.UTC)

	start, err := PeriodStart("last_7_days", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), *start)

	start, err = PeriodStart("last_3_months", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), *start)

	for _, all := range []string{"", "all_time"} {
		start, err = PeriodStart(all, now)
		require.NoError(t, err)
		assert.Nil(t, start)
	}

	_, err = PeriodStart("last_decade", now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExport_EmptyDepartmentRatings(t *testing.T) {
	e := newEnv(t)
	u := e.member(t, "admin", e.dept(t, "IT"))

	_, err := e.exportSvc.Export(context.Background(), u, "department-ratings", "last_30_days", "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExport_UnknownType(t *testing.T) {
	e := newEnv(t)
	u := e.member(t, "admin", e.dept(t, "IT"))

	_, err := e.exportSvc.Export(context.Background(), u, "nope", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

// seedRatings stores two submissions on IT from Sales users.
func seedRatings(t *testing.T, e *env) (*models.User, *models.Survey) {
	t.Helper()
	ctx := context.Background()
	it := e.deptWithID(t, 7, "IT")
	sales := e.deptWithID(t, 3, "Sales")
	s := e.ratingSurvey(t, it, "Quality", "Delivery")

	alice := e.member(t, "alice", sales)
	suggestion := "Share a weekly status"
	_, err := e.submitSvc.Submit(ctx, alice, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{
			rate(s.Questions[0], 2, "Too many reopened tickets"),
			rate(s.Questions[1], 4, ""),
		},
		Suggestions: &suggestion,
	})
	require.NoError(t, err)

	bob := e.member(t, "bob", sales)
	_, err = e.submitSvc.Submit(ctx, bob, s.ID, models.SubmitSurveyRequest{
		Answers: []models.AnswerInput{
			rate(s.Questions[0], 4, ""),
			rate(s.Questions[1], 5, ""),
		},
	})
	require.NoError(t, err)
	return alice, s
}

func TestBuildTable_DepartmentRatings(t *testing.T) {
	e := newEnv(t)
	alice, _ := seedRatings(t, e)

	table, err := e.exportSvc.BuildTable(context.Background(), alice, ExportDepartmentRatings, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Header, 10)

	row := table.Rows[0]
	assert.Equal(t, uint(7), row[0])
	assert.Equal(t, "IT", row[1])
	// alice 60%, bob 90%
	assert.Equal(t, 75.0, row[2])
	assert.Equal(t, BandSatisfactory, row[3])
	assert.Equal(t, 3.0, row[4], "Quality")
	assert.Equal(t, 4.5, row[5], "Delivery")
	assert.Equal(t, 0.0, row[6], "Communication")
	assert.Equal(t, 2, row[9])
}

func TestBuildTable_SubmittedByMe(t *testing.T) {
	e := newEnv(t)
	alice, s := seedRatings(t, e)

	table, err := e.exportSvc.BuildTable(context.Background(), alice, ExportSubmittedByMe, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2, "one row per answer of alice only")
	assert.Equal(t, s.Title, table.Rows[0][1])
	assert.Equal(t, "alice", table.Rows[0][3])
	assert.Equal(t, "Sales", table.Rows[0][5])
	assert.Equal(t, "Too many reopened tickets", table.Rows[0][12])
	assert.Equal(t, notAvailable, table.Rows[1][12])
	assert.Equal(t, "Share a weekly status", table.Rows[0][15])
}

func TestBuildTable_RemarksWithResponses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, s := seedRatings(t, e)
	it, err := e.departments.GetByID(ctx, 7)
	require.NoError(t, err)
	responder := e.member(t, "ivan", it)

	subs, err := e.submitSvc.MySubmissions(ctx, alice)
	require.NoError(t, err)
	_, err = e.remarkSvc.Respond(ctx, responder, models.RemarkRespondRequest{
		SubmissionID:      subs[0].ID,
		QuestionID:        s.Questions[0].ID,
		Explanation:       "Regression in release 4",
		ActionPlan:        "Add tests",
		ResponsiblePerson: "ivan",
	})
	require.NoError(t, err)

	table, err := e.exportSvc.BuildTable(ctx, alice, ExportRemarksOnly, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2, "the remark and the suggestion")
	remark := table.Rows[0]
	assert.Equal(t, "Too many reopened tickets", remark[9])
	assert.Equal(t, "Regression in release 4", remark[10])
	assert.Equal(t, "2024-06-15", remark[13])
	assert.Equal(t, "IT", remark[14])
	assert.Equal(t, "Share a weekly status", table.Rows[1][9])
	assert.Equal(t, notAvailable, table.Rows[1][10])
}

func TestExport_XLSX(t *testing.T) {
	e := newEnv(t)
	alice, _ := seedRatings(t, e)

	file, err := e.exportSvc.Export(context.Background(), alice, "Department Ratings", "all_time", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "department_ratings_20240615_120000.xlsx", file.Filename)
	assert.Equal(t, contentTypeXLSX, file.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Department Ratings"}, wb.GetSheetList())
	rows, err := wb.GetRows("Department Ratings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Department ID", rows[0][0])
	assert.Equal(t, "IT", rows[1][1])
}

func TestExport_PDF(t *testing.T) {
	e := newEnv(t)
	alice, _ := seedRatings(t, e)

	file, err := e.exportSvc.Export(context.Background(), alice, "remarks-only", "last_7_days", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "submitted_remarks_20240615_120000.pdf", file.Filename)
	assert.Equal(t, contentTypePDF, file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}
