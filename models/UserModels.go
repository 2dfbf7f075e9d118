package models

import (
	"time"
)

// User represents the admin_users table. Department is a real reference;
// the API still speaks department names.
type User struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	Username       string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Email          string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	DepartmentID   *uint     `gorm:"column:department_id;index" json:"department_id"`
	HashedPassword string    `gorm:"column:hashed_password;not null" json:"-"`
	Role           string    `gorm:"column:role;not null" json:"role"`
	IsActive       bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "admin_users"
}

// DepartmentName is empty when the user has no department.
func (u User) DepartmentName() string {
	if u.Department == nil {
		return ""
	}
	return u.Department.Name
}

// PasswordResetToken is a single-use reset credential.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey;column:id"`
	UserID    uint       `gorm:"column:user_id;not null;index"`
	Token     string     `gorm:"column:token;not null;uniqueIndex"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

// TableName specifies the table name for PasswordResetToken
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
