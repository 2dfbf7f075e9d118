package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate user and set the access token and CSRF cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /login [post]
func LoginHandler(auth *services.AuthService, cs CookieSettings, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Username and password are required")
			return
		}

		user, token, claims, err := auth.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, log, err)
			return
		}

		setAuthCookies(c, cs, token, claims)
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user":    services.ToProfile(*user),
		})
	}
}

// LogoutHandler clears the cookies and revokes the token
// @Summary Logout user
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /logout [post]
func LogoutHandler(auth *services.AuthService, cs CookieSettings, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), currentClaims(c)); err != nil {
			// the cookies go regardless
			log.WithError(err).Warn("Token revocation failed")
		}
		clearAuthCookies(c, cs)
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Logout successful"})
	}
}

// VerifyAuthHandler reports whether the caller holds a valid token
// @Summary Verify authentication
// @Tags Authentication
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /verify_auth [get]
func VerifyAuthHandler(auth *services.AuthService, cs CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := authenticate(c, auth, cs)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"isAuthenticated": false,
				"message":         "Not authenticated",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"isAuthenticated": true,
			"message":         "Authenticated",
			"user":            services.ToProfile(*user),
		})
	}
}
