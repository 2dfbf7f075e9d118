package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetIncomingRemarks lists unanswered remarks on the caller's department
// @Summary Incoming remarks
// @Tags Remarks
// @Produce json
// @Success 200 {array} models.IncomingRemark
// @Router /api/remarks/incoming [get]
func GetIncomingRemarks(svc *services.RemarkService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		remarks, err := svc.Incoming(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, remarks)
	}
}

// GetOutgoingRemarks lists remarks the caller's department made, with responses
// @Summary Outgoing remarks
// @Tags Remarks
// @Produce json
// @Success 200 {array} models.OutgoingRemark
// @Router /api/remarks/outgoing [get]
func GetOutgoingRemarks(svc *services.RemarkService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		remarks, err := svc.Outgoing(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, remarks)
	}
}

// RespondToRemark stores the rated department's answer to a remark
// @Summary Respond to remark
// @Description Responding again overwrites the previous response
// @Tags Remarks
// @Accept json
// @Produce json
// @Param request body models.RemarkRespondRequest true "Response"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/remarks/respond [post]
func RespondToRemark(svc *services.RemarkService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RemarkRespondRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid response payload: "+err.Error())
			return
		}
		if _, err := svc.Respond(c.Request.Context(), currentUser(c), req); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Response submitted successfully"})
	}
}
