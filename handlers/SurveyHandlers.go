package handlers

import (
	"net/http"
	"strconv"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetSurveys lists survey templates
// @Summary List surveys
// @Tags Surveys
// @Produce json
// @Param rated_department_id query int false "Filter by rated department"
// @Success 200 {array} models.SurveyDTO
// @Router /api/surveys [get]
func GetSurveys(svc *services.SurveyService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rated *uint
		if raw := c.Query("rated_department_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				badRequest(c, "invalid rated_department_id")
				return
			}
			v := uint(id)
			rated = &v
		}
		surveys, err := svc.List(c.Request.Context(), rated)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, surveys)
	}
}

// GetSurvey returns one survey template
// @Summary Get survey
// @Tags Surveys
// @Produce json
// @Param id path int true "Survey ID"
// @Success 200 {object} models.SurveyDTO
// @Failure 404 {object} models.ErrorResponse
// @Router /api/surveys/{id} [get]
func GetSurvey(svc *services.SurveyService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		survey, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, services.ToSurveyDTO(*survey))
	}
}

// CreateSurvey stores a new template
// @Summary Create survey
// @Tags Surveys
// @Accept json
// @Produce json
// @Param request body models.SurveyRequest true "Survey template"
// @Success 201 {object} models.SurveyDTO
// @Failure 400 {object} models.ErrorResponse
// @Router /api/surveys [post]
func CreateSurvey(svc *services.SurveyService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SurveyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid survey payload: "+err.Error())
			return
		}
		survey, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, survey)
	}
}

// UpdateSurvey replaces a template that has no submissions
// @Summary Replace survey
// @Tags Surveys
// @Accept json
// @Produce json
// @Param id path int true "Survey ID"
// @Param request body models.SurveyRequest true "Survey template"
// @Success 200 {object} models.SurveyDTO
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/surveys/{id} [put]
func UpdateSurvey(svc *services.SurveyService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.SurveyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid survey payload: "+err.Error())
			return
		}
		survey, err := svc.Update(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, survey)
	}
}

// DeleteSurvey removes a template and its submissions
// @Summary Delete survey
// @Tags Surveys
// @Produce json
// @Param id path int true "Survey ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/surveys/{id} [delete]
func DeleteSurvey(svc *services.SurveyService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Survey deleted successfully"})
	}
}

// GetSurveyStatus tells whether the caller already submitted a survey
// @Summary Submission status
// @Tags Surveys
// @Produce json
// @Param id path int true "Survey ID"
// @Success 200 {object} models.SubmissionStatus
// @Failure 404 {object} models.ErrorResponse
// @Router /api/surveys/{id}/status [get]
func GetSurveyStatus(svc *services.SurveyService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		status, err := svc.Status(c.Request.Context(), id, currentUser(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
