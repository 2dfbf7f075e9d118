package main

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"deptsurvey/handlers"
	"deptsurvey/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

func CORSConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-TOKEN",
		"Accept", "Origin", "X-Requested-With", "Authorization", "X-Request-ID",
		"Cache-Control",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// NewRouter registers every route on a fresh engine.
func NewRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestID(), handlers.RequestLogger(app.Logger))
	if len(app.Config.CORSOrigins) > 0 {
		r.Use(cors.New(CORSConfig(app.Config.CORSOrigins)))
	}

	log := app.Logger
	auth := handlers.AuthRequired(app.Auth, app.Cookies, log)
	admin := handlers.AdminOnly()

	r.GET("/healthz", handlers.Health(app.DB))

	// ==================== AUTH ====================
	r.POST("/login", handlers.LoginHandler(app.Auth, app.Cookies, log))
	r.POST("/logout", auth, handlers.LogoutHandler(app.Auth, app.Cookies, log))
	r.GET("/verify_auth", handlers.VerifyAuthHandler(app.Auth, app.Cookies))
	r.POST("/request_password_reset", handlers.ForgetPasswordHandler(app.Auth, log))
	r.POST("/reset_password", handlers.ResetPasswordHandler(app.Auth, log))

	api := r.Group("/api", auth)
	std := api.Group("", handlers.QueryDeadline(utils.QueryTimeout))
	reports := api.Group("", handlers.QueryDeadline(utils.ReportTimeout))

	// ==================== DEPARTMENTS ====================
	std.GET("/departments", handlers.GetDepartments(app.Departments, log))
	std.POST("/departments", admin, handlers.CreateDepartment(app.Departments, log))
	std.DELETE("/departments/:id", admin, handlers.DeleteDepartment(app.Departments, log))

	// ==================== PERMISSIONS ====================
	std.GET("/permissions", handlers.GetPermissions(app.Permissions, log))
	std.POST("/permissions", admin, handlers.SetPermissions(app.Permissions, log))
	std.POST("/permissions/mail-alert", admin, handlers.MailAlert(app.Permissions, log))
	std.GET("/surveyable-departments", handlers.GetSurveyableDepartments(app.Permissions, log))

	// ==================== SURVEYS ====================
	std.GET("/surveys", handlers.GetSurveys(app.Surveys, log))
	std.POST("/surveys", admin, handlers.CreateSurvey(app.Surveys, log))
	std.GET("/surveys/:id", handlers.GetSurvey(app.Surveys, log))
	std.PUT("/surveys/:id", admin, handlers.UpdateSurvey(app.Surveys, log))
	std.DELETE("/surveys/:id", admin, handlers.DeleteSurvey(app.Surveys, log))
	std.GET("/surveys/:id/status", handlers.GetSurveyStatus(app.Surveys, log))

	// ==================== SUBMISSIONS ====================
	std.POST("/surveys/:id/submit_response", handlers.SubmitSurveyResponse(app.Submissions, log))
	std.GET("/my-submissions", handlers.GetMySubmissions(app.Submissions, log))

	// ==================== REMARKS ====================
	std.GET("/remarks/incoming", handlers.GetIncomingRemarks(app.Remarks, log))
	std.GET("/remarks/outgoing", handlers.GetOutgoingRemarks(app.Remarks, log))
	std.POST("/remarks/respond", handlers.RespondToRemark(app.Remarks, log))

	// ==================== DASHBOARD ====================
	dash := reports.Group("/dashboard", admin)
	dash.GET("/overall-stats", handlers.GetOverallStats(app.Reports, log))
	dash.GET("/department-metrics", handlers.GetDepartmentMetrics(app.Reports, log))
	dash.GET("/recent-submissions", handlers.GetRecentSubmissions(app.Reports, log))

	// ==================== EXPORT ====================
	reports.GET("/export-data", handlers.ExportReport(app.Exports, log))

	// ==================== USERS ====================
	users := std.Group("/users", admin)
	users.GET("", handlers.GetUsers(app.Users, log))
	users.POST("", handlers.CreateUser(app.Users, log))
	users.GET("/:id", handlers.GetUser(app.Users, log))
	users.PUT("/:id", handlers.UpdateUser(app.Users, log))
	users.DELETE("/:id", handlers.DeleteUser(app.Users, log))

	// ==================== SWAGGER ====================
	r.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			buildSwaggerFromRoutes(r)(c)
			return
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"))(c)
	})

	return r
}

// ginPathToSwaggerPath converts Gin path params :param to Swagger {param}
var ginPathParamRe = regexp.MustCompile(`:([^/]+)`)

func ginPathToSwaggerPath(path string) string {
	return ginPathParamRe.ReplaceAllString(path, "{$1}")
}

// buildSwaggerFromRoutes serves the registered Swagger document with a
// generic operation added for every route it does not describe.
func buildSwaggerFromRoutes(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := map[string]interface{}{}
		if raw, err := swag.ReadDoc(); err == nil {
			_ = json.Unmarshal([]byte(raw), &doc)
		}
		paths, _ := doc["paths"].(map[string]interface{})
		if paths == nil {
			paths = map[string]interface{}{}
		}

		for _, route := range engine.Routes() {
			if strings.HasPrefix(route.Path, "/swagger") {
				continue
			}
			path := ginPathToSwaggerPath(route.Path)
			ops, _ := paths[path].(map[string]interface{})
			if ops == nil {
				ops = map[string]interface{}{}
				paths[path] = ops
			}
			method := strings.ToLower(route.Method)
			if _, ok := ops[method]; ok {
				continue
			}
			op := map[string]interface{}{
				"summary":  route.Method + " " + route.Path,
				"tags":     []string{"API"},
				"produces": []string{"application/json"},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "OK"},
					"400": map[string]interface{}{"description": "Bad Request"},
				},
			}
			if method == "post" || method == "put" || method == "patch" {
				op["consumes"] = []string{"application/json"}
			}
			ops[method] = op
		}

		doc["paths"] = paths
		doc["host"] = c.Request.Host
		c.JSON(http.StatusOK, doc)
	}
}
