package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const resetRequestedMessage = "If an account with that email exists, a password reset link has been sent."

// ForgetPasswordHandler issues a reset token for an email address
// @Summary      Forgot password
// @Description  Always answers with the same message so accounts cannot be enumerated
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body models.PasswordResetRequest true "Account email"
// @Success      200 {object} models.MessageResponse
// @Failure      400 {object} models.ErrorResponse
// @Router       /request_password_reset [post]
func ForgetPasswordHandler(auth *services.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PasswordResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Email is required")
			return
		}
		if err := auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: resetRequestedMessage})
	}
}

// ResetPasswordHandler sets a new password from a reset token
// @Summary      Reset password with token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body models.ResetPasswordRequest true "Token and new password"
// @Success      200 {object} models.MessageResponse
// @Failure      400 {object} models.ErrorResponse
// @Router       /reset_password [post]
func ResetPasswordHandler(auth *services.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Token and a password of at least 6 characters are required")
			return
		}
		if err := auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Password has been reset successfully"})
	}
}
