package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deptsurvey/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrTokenInvalid covers unknown, used and expired reset tokens alike.
var ErrTokenInvalid = errors.New("reset token invalid or expired")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)

	// ListByDepartments returns active users of the given departments
	ListByDepartments(ctx context.Context, deptIDs []uint) ([]models.User, error)

	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error

	// CreateResetToken stores a single-use password reset token
	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error

	// ConsumeResetToken sets the password of the token's owner and marks the token used
	ConsumeResetToken(ctx context.Context, token, hashedPassword string, now time.Time) (*models.User, error)
}

// UserDao implements UserRepository using GORM
type UserDao struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func (dao *UserDao) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).Preload("Department").Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (dao *UserDao) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return dao.first(ctx, "id = ?", id)
}

func (dao *UserDao) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return dao.first(ctx, "username = ?", strings.TrimSpace(username))
}

func (dao *UserDao) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return dao.first(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (dao *UserDao) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := dao.DB.WithContext(ctx).Preload("Department").Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (dao *UserDao) ListByDepartments(ctx context.Context, deptIDs []uint) ([]models.User, error) {
	var users []models.User
	if len(deptIDs) == 0 {
		return users, nil
	}
	err := dao.DB.WithContext(ctx).Preload("Department").
		Where("department_id IN ? AND is_active = ?", deptIDs, true).
		Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list department users: %w", err)
	}
	return users, nil
}

func (dao *UserDao) Create(ctx context.Context, user *models.User) error {
	if err := dao.DB.WithContext(ctx).Omit("Department").Create(user).Error; err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "CreateUser",
			"username":  user.Username,
			"error":     err.Error(),
		}).Error("Failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	dao.Logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Successfully created user")
	return nil
}

func (dao *UserDao) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := dao.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "UpdateUser",
			"user_id":   id,
			"error":     res.Error.Error(),
		}).Error("Failed to update user")
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user with their reset tokens. Users that submitted
// surveys are kept by the caller as inactive instead.
func (dao *UserDao) Delete(ctx context.Context, id uint) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete reset tokens: %w", err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (dao *UserDao) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if err := dao.DB.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (dao *UserDao) ConsumeResetToken(ctx context.Context, token, hashedPassword string, now time.Time) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.PasswordResetToken
		err := tx.Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).First(&rt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", rt.UserID).
			Update("hashed_password", hashedPassword).Error; err != nil {
			return err
		}
		// one use only; other outstanding tokens of the user go too
		if err := tx.Model(&models.PasswordResetToken{}).
			Where("user_id = ? AND used_at IS NULL", rt.UserID).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Preload("Department").First(&user, rt.UserID).Error
	})
	if err != nil {
		if !errors.Is(err, ErrTokenInvalid) {
			dao.Logger.WithFields(logrus.Fields{
				"operation": "ConsumeResetToken",
				"error":     err.Error(),
			}).Error("Failed to reset password")
		}
		return nil, err
	}
	return &user, nil
}
