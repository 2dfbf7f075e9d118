package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetUsers lists all accounts
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} models.UserProfile
// @Router /api/users [get]
func GetUsers(svc *services.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// GetUser retrieves user information by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [get]
func GetUser(svc *services.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		user, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// CreateUser registers an account
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.UserCreateRequest true "User"
// @Success 201 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users [post]
func CreateUser(svc *services.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UserCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid user payload: "+err.Error())
			return
		}
		user, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		log.WithFields(logrus.Fields{"username": user.Username, "by": currentUsername(c)}).Info("User created")
		c.JSON(http.StatusCreated, user)
	}
}

// UpdateUser applies a partial update
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body models.UserUpdateRequest true "Changed fields"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [put]
func UpdateUser(svc *services.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.UserUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid user payload: "+err.Error())
			return
		}
		user, err := svc.Update(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUser removes an account without submissions
// @Summary Delete user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users/{id} [delete]
func DeleteUser(svc *services.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}
		log.WithFields(logrus.Fields{"user_id": id, "by": currentUsername(c)}).Info("User deleted")
		c.JSON(http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
	}
}
