package repository

import (
	"context"
	"fmt"
	"time"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PermissionRepository defines the interface for the permission matrix
type PermissionRepository interface {
	List(ctx context.Context) ([]models.Permission, error)

	// ReplaceAll deletes every permission and inserts perms in one transaction
	ReplaceAll(ctx context.Context, perms []models.Permission) error

	// ActiveTargets returns the departments fromDeptID may survey at now
	ActiveTargets(ctx context.Context, fromDeptID uint, now time.Time) ([]models.Department, error)

	// IsActive reports whether an active edge from -> to exists at now
	IsActive(ctx context.Context, fromDeptID, toDeptID uint, now time.Time) (bool, error)
}

// PermissionDao implements PermissionRepository using GORM
type PermissionDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func (dao *PermissionDao) List(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := dao.DB.WithContext(ctx).Order("from_department_id, to_department_id").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return perms, nil
}

func (dao *PermissionDao) ReplaceAll(ctx context.Context, perms []models.Permission) error {
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Permission{}).Error; err != nil {
			return fmt.Errorf("failed to clear permissions: %w", err)
		}
		if len(perms) == 0 {
			return nil
		}
		if err := tx.Omit("FromDepartment", "ToDepartment").Create(&perms).Error; err != nil {
			return fmt.Errorf("failed to insert permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "ReplacePermissions",
			"count":     len(perms),
			"error":     err.Error(),
		}).Error("Failed to replace permission matrix")
		return err
	}
	dao.Logger.WithField("count", len(perms)).Info("Permission matrix replaced")
	return nil
}

func (dao *PermissionDao) activeScope(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("permissions.start_date <= ? AND permissions.end_date >= ?", now, now).
		Where("(permissions.from_department_id <> permissions.to_department_id OR permissions.can_survey_self = ?)", true)
}

func (dao *PermissionDao) ActiveTargets(ctx context.Context, fromDeptID uint, now time.Time) ([]models.Department, error) {
	depts := []models.Department{}
	q := dao.DB.WithContext(ctx).Model(&models.Department{}).
		Select("DISTINCT departments.*").
		Joins("JOIN permissions ON permissions.to_department_id = departments.id").
		Where("permissions.from_department_id = ?", fromDeptID)
	if err := dao.activeScope(q, now).Order("departments.name ASC").Find(&depts).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveyable departments: %w", err)
	}
	return depts, nil
}

func (dao *PermissionDao) IsActive(ctx context.Context, fromDeptID, toDeptID uint, now time.Time) (bool, error) {
	var n int64
	q := dao.DB.WithContext(ctx).Model(&models.Permission{}).
		Where("from_department_id = ? AND to_department_id = ?", fromDeptID, toDeptID)
	if err := dao.activeScope(q, now).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return n > 0, nil
}
