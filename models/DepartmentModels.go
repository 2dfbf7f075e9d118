package models

import (
	"time"
)

// Department represents the departments table
type Department struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id" example:"7"`
	Name      string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name" example:"IT"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for Department
func (Department) TableName() string {
	return "departments"
}

// Permission is a directed edge From -> To valid inside [StartDate, EndDate].
// A self edge (From == To) is only active when CanSurveySelf is set.
type Permission struct {
	ID               uint      `gorm:"primaryKey;column:id" json:"id"`
	FromDepartmentID uint      `gorm:"column:from_department_id;not null;uniqueIndex:uq_from_to_dept,priority:1" json:"from_department_id"`
	ToDepartmentID   uint      `gorm:"column:to_department_id;not null;uniqueIndex:uq_from_to_dept,priority:2;index" json:"to_department_id"`
	CanSurveySelf    bool      `gorm:"column:can_survey_self;not null" json:"can_survey_self"`
	StartDate        time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate          time.Time `gorm:"column:end_date;not null" json:"end_date"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`

	FromDepartment *Department `gorm:"foreignKey:FromDepartmentID" json:"-"`
	ToDepartment   *Department `gorm:"foreignKey:ToDepartmentID" json:"-"`
}

// TableName specifies the table name for Permission
func (Permission) TableName() string {
	return "permissions"
}
