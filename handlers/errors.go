package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps a service error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, services.ErrSelfRating):
		return http.StatusForbidden, "self_rating"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrDuplicateSubmission):
		return http.StatusConflict, "already_submitted"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes the error body. Internal errors are logged and
// answered with a generic message.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDKey),
			"error":      err.Error(),
		}).Error("Request failed")
		c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: "Internal server error", Error: code})
		return
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: err.Error(), Error: code})
}

func badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Detail: detail, Error: "validation_error"})
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
