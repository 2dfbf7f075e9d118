package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/services"
	"deptsurvey/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	accessCookieName = "access_token_cookie"
	csrfCookieName   = "csrf_access_token"
	csrfHeaderName   = "X-CSRF-TOKEN"

	userKey   = "current_user"
	claimsKey = "current_claims"
)

// CookieSettings controls the auth cookies.
type CookieSettings struct {
	Secure      bool
	CSRFProtect bool
	MaxAge      time.Duration
}

func setAuthCookies(c *gin.Context, cs CookieSettings, token string, claims *utils.AccessClaims) {
	maxAge := int(cs.MaxAge.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookieName, token, maxAge, "/", "", cs.Secure, true)
	c.SetCookie(csrfCookieName, claims.CSRF, maxAge, "/", "", cs.Secure, false)
}

func clearAuthCookies(c *gin.Context, cs CookieSettings) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookieName, "", -1, "/", "", cs.Secure, true)
	c.SetCookie(csrfCookieName, "", -1, "/", "", cs.Secure, false)
}

// extractToken prefers the Authorization header and falls back to the cookie.
func extractToken(c *gin.Context) (token string, fromCookie bool) {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		const bearerPrefix = "Bearer "
		if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(h[len(bearerPrefix):]), false
		}
	}
	if cookie, err := c.Cookie(accessCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func stateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// authenticate resolves the caller; cookie-authenticated writes must echo the CSRF value.
func authenticate(c *gin.Context, auth *services.AuthService, cs CookieSettings) (*models.User, *utils.AccessClaims, error) {
	token, fromCookie := extractToken(c)
	if token == "" {
		return nil, nil, services.NewError(services.ErrUnauthenticated, "missing authentication token")
	}
	user, claims, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil, nil, err
	}
	if fromCookie && cs.CSRFProtect && stateChanging(c.Request.Method) {
		header := c.GetHeader(csrfHeaderName)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(claims.CSRF)) != 1 {
			return nil, nil, services.NewError(services.ErrUnauthenticated, "CSRF token missing or invalid")
		}
	}
	return user, claims, nil
}

// AuthRequired rejects requests without a valid token.
func AuthRequired(auth *services.AuthService, cs CookieSettings, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, err := authenticate(c, auth, cs)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				respondError(c, log, err)
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Detail: err.Error(), Error: "unauthenticated"})
			return
		}
		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !utils.IsAdminRole(user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Detail: "Admin access required", Error: "forbidden"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func currentClaims(c *gin.Context) *utils.AccessClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.AccessClaims)
	return claims
}

func currentUsername(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.Username
	}
	return ""
}
