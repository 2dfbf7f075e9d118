package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetPermissions lists the permission matrix
// @Summary List permissions
// @Tags Permissions
// @Produce json
// @Success 200 {array} models.PermissionDTO
// @Router /api/permissions [get]
func GetPermissions(svc *services.PermissionService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, perms)
	}
}

// SetPermissions replaces the whole matrix
// @Summary Replace permissions
// @Description Deletes every permission and stores the valid pairs; invalid pairs are skipped and listed
// @Tags Permissions
// @Accept json
// @Produce json
// @Param request body models.SetPermissionsRequest true "Allowed pairs and window"
// @Success 200 {object} models.PermissionSaveResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/permissions [post]
func SetPermissions(svc *services.PermissionService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SetPermissionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid permission payload: "+err.Error())
			return
		}
		result, err := svc.Replace(c.Request.Context(), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// MailAlert simulates alerting the users of every from department
// @Summary Simulated permission mail alert
// @Tags Permissions
// @Accept json
// @Produce json
// @Param request body models.SetPermissionsRequest true "Allowed pairs and window"
// @Success 200 {object} models.MailAlertResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/permissions/mail-alert [post]
func MailAlert(svc *services.PermissionService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SetPermissionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid mail alert payload: "+err.Error())
			return
		}
		resp, err := svc.MailAlert(c.Request.Context(), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetSurveyableDepartments lists what the caller's department may survey now
// @Summary Surveyable departments
// @Tags Permissions
// @Produce json
// @Success 200 {array} models.DepartmentRef
// @Failure 404 {object} models.ErrorResponse
// @Router /api/surveyable-departments [get]
func GetSurveyableDepartments(svc *services.PermissionService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		depts, err := svc.SurveyableDepartments(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		out := make([]models.DepartmentRef, 0, len(depts))
		for _, d := range depts {
			out = append(out, models.DepartmentRef{ID: d.ID, Name: d.Name})
		}
		c.JSON(http.StatusOK, out)
	}
}
