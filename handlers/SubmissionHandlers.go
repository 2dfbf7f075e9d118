package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SubmitSurveyResponse stores the caller's answers to a survey
// @Summary Submit survey
// @Description One submission per user and survey; ratings at or below the threshold need a remark
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Survey ID"
// @Param request body models.SubmitSurveyRequest true "Answers"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/surveys/{id}/submit_response [post]
func SubmitSurveyResponse(svc *services.SubmissionService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.SubmitSurveyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid submission payload: "+err.Error())
			return
		}
		sub, err := svc.Submit(c.Request.Context(), currentUser(c), id, req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":       "Survey submitted successfully",
			"submission_id": sub.ID,
		})
	}
}

// GetMySubmissions lists the caller's submissions
// @Summary My submissions
// @Tags Submissions
// @Produce json
// @Success 200 {array} models.SubmissionDTO
// @Router /api/my-submissions [get]
func GetMySubmissions(svc *services.SubmissionService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := svc.MySubmissions(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, subs)
	}
}
