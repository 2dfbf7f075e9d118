package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DepartmentRepository defines the interface for department data operations
type DepartmentRepository interface {
	// List returns every department sorted by name
	List(ctx context.Context) ([]models.Department, error)

	// GetByID returns ErrNotFound for an unknown id
	GetByID(ctx context.Context, id uint) (*models.Department, error)

	// GetByName matches case-insensitively after trimming
	GetByName(ctx context.Context, name string) (*models.Department, error)

	// ExistingIDs returns the subset of ids that exist
	ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error)

	Create(ctx context.Context, dept *models.Department) error

	// References counts rows pointing at the department
	References(ctx context.Context, id uint) (int64, error)

	Delete(ctx context.Context, id uint) error
}

// DepartmentDao implements DepartmentRepository using GORM
type DepartmentDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func (dao *DepartmentDao) List(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := dao.DB.WithContext(ctx).Order("name ASC").Find(&depts).Error; err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "ListDepartments",
			"error":     err.Error(),
		}).Error("Failed to list departments")
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return depts, nil
}

func (dao *DepartmentDao) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	var dept models.Department
	err := dao.DB.WithContext(ctx).First(&dept, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department %d: %w", id, err)
	}
	return &dept, nil
}

func (dao *DepartmentDao) GetByName(ctx context.Context, name string) (*models.Department, error) {
	var dept models.Department
	err := dao.DB.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&dept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department %q: %w", name, err)
	}
	return &dept, nil
}

func (dao *DepartmentDao) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []uint
	if err := dao.DB.WithContext(ctx).Model(&models.Department{}).
		Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to look up departments: %w", err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

func (dao *DepartmentDao) Create(ctx context.Context, dept *models.Department) error {
	if err := dao.DB.WithContext(ctx).Create(dept).Error; err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "CreateDepartment",
			"name":      dept.Name,
			"error":     err.Error(),
		}).Error("Failed to create department")
		return fmt.Errorf("failed to create department: %w", err)
	}
	dao.Logger.WithFields(logrus.Fields{
		"department_id": dept.ID,
		"name":          dept.Name,
	}).Info("Successfully created department")
	return nil
}

func (dao *DepartmentDao) References(ctx context.Context, id uint) (int64, error) {
	checks := []struct {
		model any
		where string
	}{
		{&models.User{}, "department_id = ?"},
		{&models.Permission{}, "from_department_id = ? OR to_department_id = ?"},
		{&models.Survey{}, "rated_department_id = ? OR managing_department_id = ?"},
		{&models.SurveySubmission{}, "submitter_department_id = ? OR rated_department_id = ?"},
	}

	var total int64
	for _, c := range checks {
		args := []any{id}
		if strings.Contains(c.where, " OR ") {
			args = append(args, id)
		}
		var n int64
		if err := dao.DB.WithContext(ctx).Model(c.model).Where(c.where, args...).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("failed to count department references: %w", err)
		}
		total += n
	}
	return total, nil
}

func (dao *DepartmentDao) Delete(ctx context.Context, id uint) error {
	res := dao.DB.WithContext(ctx).Delete(&models.Department{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete department %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	dao.Logger.WithField("department_id", id).Info("Successfully deleted department")
	return nil
}
