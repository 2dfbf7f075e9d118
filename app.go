package main

import (
	"deptsurvey/config"
	"deptsurvey/handlers"
	"deptsurvey/repository"
	"deptsurvey/services"
	"deptsurvey/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the wired service graph behind the router.
type App struct {
	Config config.Config
	DB     *gorm.DB
	Logger *logrus.Logger

	Cookies handlers.CookieSettings

	Auth        *services.AuthService
	Departments *services.DepartmentService
	Users       *services.UserService
	Permissions *services.PermissionService
	Surveys     *services.SurveyService
	Submissions *services.SubmissionService
	Remarks     *services.RemarkService
	Reports     *services.ReportService
	Exports     *services.ExportService

	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
}

// NewApp builds repositories and services over db.
func NewApp(cfg config.Config, db *gorm.DB, revoker services.TokenRevoker, log *logrus.Logger) *App {
	departments := &repository.DepartmentDao{DB: db, Logger: log}
	users := &repository.UserDao{DB: db, Logger: log}
	permissions := &repository.PermissionDao{DB: db, Logger: log}
	surveys := &repository.SurveyDao{DB: db, Logger: log}
	submissions := &repository.SubmissionDao{DB: db, Logger: log}
	remarks := &repository.RemarkDao{DB: db, Logger: log}
	reports := &repository.ReportDao{DB: db, Logger: log}

	mail := services.NewEmailService(services.LogMailer{Logger: log})
	permissionSvc := &services.PermissionService{
		Permissions: permissions,
		Departments: departments,
		Users:       users,
		Mail:        mail,
		Logger:      log,
	}

	return &App{
		Config: cfg,
		DB:     db,
		Logger: log,
		Cookies: handlers.CookieSettings{
			Secure:      cfg.CookieSecure,
			CSRFProtect: cfg.CSRFProtect,
			MaxAge:      cfg.TokenTTL,
		},
		Auth: &services.AuthService{
			Users:           users,
			Tokens:          utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
			Revoker:         revoker,
			Mail:            mail,
			ResetTTL:        cfg.ResetTokenTTL,
			FrontendBaseURL: cfg.FrontendBaseURL,
			Logger:          log,
		},
		Departments: &services.DepartmentService{Departments: departments},
		Users: &services.UserService{
			Users:       users,
			Departments: departments,
			Submissions: submissions,
			Logger:      log,
		},
		Permissions: permissionSvc,
		Surveys: &services.SurveyService{
			Surveys:     surveys,
			Departments: departments,
			Submissions: submissions,
			Logger:      log,
		},
		Submissions: &services.SubmissionService{
			Surveys:            surveys,
			Submissions:        submissions,
			Permissions:        permissionSvc,
			LowRatingThreshold: cfg.LowRatingThreshold,
			RequirePermission:  cfg.RequirePermission,
			Logger:             log,
		},
		Remarks: &services.RemarkService{Remarks: remarks, Submissions: submissions},
		Reports: &services.ReportService{Reports: reports, Submissions: submissions},
		Exports: &services.ExportService{Submissions: submissions, Logger: log},

		DepartmentRepo: departments,
		UserRepo:       users,
	}
}
