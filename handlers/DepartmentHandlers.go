package handlers

import (
	"net/http"

	"deptsurvey/models"
	"deptsurvey/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ==================== DEPARTMENT OPERATIONS ====================

// GetDepartments lists departments
// @Summary List departments
// @Tags Departments
// @Produce json
// @Success 200 {array} models.Department
// @Failure 401 {object} models.ErrorResponse
// @Router /api/departments [get]
func GetDepartments(svc *services.DepartmentService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		depts, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, depts)
	}
}

// CreateDepartment creates a new department
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Param request body models.DepartmentRequest true "Department creation request"
// @Success 201 {object} models.Department
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/departments [post]
func CreateDepartment(svc *services.DepartmentService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DepartmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Department name is required")
			return
		}
		dept, err := svc.Create(c.Request.Context(), req.Name)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, dept)
	}
}

// DeleteDepartment deletes an unreferenced department
// @Summary Delete department
// @Tags Departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/departments/{id} [delete]
func DeleteDepartment(svc *services.DepartmentService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Department deleted successfully"})
	}
}
