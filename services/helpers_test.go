package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/storage"
	"deptsurvey/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingMailer keeps every message instead of delivering it.
type recordingMailer struct {
	sent []sentMail
}

type sentMail struct {
	To, Subject, Body string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type env struct {
	db     *gorm.DB
	log    *logrus.Logger
	mailer *recordingMailer
	now    time.Time

	departments *repository.DepartmentDao
	users       *repository.UserDao
	permissions *repository.PermissionDao
	surveys     *repository.SurveyDao
	submissions *repository.SubmissionDao
	remarks     *repository.RemarkDao
	reports     *repository.ReportDao

	auth      *AuthService
	deptSvc   *DepartmentService
	userSvc   *UserService
	permSvc   *PermissionService
	surveySvc *SurveyService
	submitSvc *SubmissionService
	remarkSvc *RemarkService
	reportSvc *ReportService
	exportSvc *ExportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := utils.NewDiscardLogger()
	db, err := storage.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := &env{
		db:          db,
		log:         log,
		mailer:      &recordingMailer{},
		now:         time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		departments: &repository.DepartmentDao{DB: db, Logger: log},
		users:       &repository.UserDao{DB: db, Logger: log},
		permissions: &repository.PermissionDao{DB: db, Logger: log},
		surveys:     &repository.SurveyDao{DB: db, Logger: log},
		submissions: &repository.SubmissionDao{DB: db, Logger: log},
		remarks:     &repository.RemarkDao{DB: db, Logger: log},
		reports:     &repository.ReportDao{DB: db, Logger: log},
	}
	clock := func() time.Time { return e.now }
	mail := NewEmailService(e.mailer)

	e.auth = &AuthService{
		Users:           e.users,
		Tokens:          utils.NewTokenIssuer("test-secret", time.Hour),
		Revoker:         NewMemoryRevoker(),
		Mail:            mail,
		ResetTTL:        15 * time.Minute,
		FrontendBaseURL: "http://frontend.test",
		Logger:          log,
		now:             clock,
	}
	e.deptSvc = &DepartmentService{Departments: e.departments}
	e.userSvc = &UserService{Users: e.users, Departments: e.departments, Submissions: e.submissions, Logger: log}
	e.permSvc = &PermissionService{
		Permissions: e.permissions,
		Departments: e.departments,
		Users:       e.users,
		Mail:        mail,
		Logger:      log,
		now:         clock,
	}
	e.surveySvc = &SurveyService{Surveys: e.surveys, Departments: e.departments, Submissions: e.submissions, Logger: log}
	e.submitSvc = &SubmissionService{
		Surveys:            e.surveys,
		Submissions:        e.submissions,
		Permissions:        e.permSvc,
		LowRatingThreshold: 2,
		Logger:             log,
		now:                clock,
	}
	e.remarkSvc = &RemarkService{Remarks: e.remarks, Submissions: e.submissions, now: clock}
	e.reportSvc = &ReportService{Reports: e.reports, Submissions: e.submissions}
	e.exportSvc = &ExportService{Submissions: e.submissions, Logger: log, now: clock}
	return e
}

func (e *env) deptWithID(t *testing.T, id uint, name string) *models.Department {
	t.Helper()
	d := &models.Department{ID: id, Name: name}
	require.NoError(t, e.db.Create(d).Error)
	return d
}

func (e *env) dept(t *testing.T, name string) *models.Department {
	t.Helper()
	d := &models.Department{Name: name}
	require.NoError(t, e.departments.Create(context.Background(), d))
	return d
}

// member creates an active user in dept and reloads it with the department.
func (e *env) member(t *testing.T, username string, dept *models.Department) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	u := &models.User{
		Username:       username,
		Name:           "User " + username,
		Email:          username + "@example.com",
		HashedPassword: hash,
		Role:           utils.RoleUser,
		IsActive:       true,
	}
	if dept != nil {
		u.DepartmentID = &dept.ID
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	got, err := e.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

// ratingSurvey creates a survey on rated with rating questions in the given categories.
func (e *env) ratingSurvey(t *testing.T, rated *models.Department, categories ...string) *models.Survey {
	t.Helper()
	req := models.SurveyRequest{Title: "Review of " + rated.Name, RatedDepartmentID: rated.ID}
	for i, c := range categories {
		req.Questions = append(req.Questions, models.QuestionRequest{
			Text:     fmt.Sprintf("Question %d", i+1),
			Type:     models.QuestionRating,
			Category: c,
		})
	}
	dto, err := e.surveySvc.Create(context.Background(), req)
	require.NoError(t, err)
	s, err := e.surveys.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	return s
}

func rate(q models.Question, rating int, remark string) models.AnswerInput {
	id := q.ID
	in := models.AnswerInput{QuestionID: &id, Rating: &rating}
	if remark != "" {
		in.Remarks = &remark
	}
	return in
}

func (e *env) allow(t *testing.T, from, to *models.Department) {
	t.Helper()
	_, err := e.permSvc.Replace(context.Background(), models.SetPermissionsRequest{
		AllowedPairs: []models.PermissionPair{{FromDeptID: &from.ID, ToDeptID: &to.ID}},
		StartDate:    e.now.Add(-24 * time.Hour).Format(time.RFC3339),
		EndDate:      e.now.Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
