package services

import (
	"context"
	"errors"
	"strings"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/storage"
)

// DepartmentService manages the department list.
type DepartmentService struct {
	Departments repository.DepartmentRepository
}

func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	return s.Departments.List(ctx)
}

// Create rejects blank names and names differing from an existing one only by case.
func (s *DepartmentService) Create(ctx context.Context, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("department name is required")
	}

	_, err := s.Departments.GetByName(ctx, name)
	if err == nil {
		return nil, conflict("department %q already exists", name)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	dept := &models.Department{Name: name}
	if err := s.Departments.Create(ctx, dept); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, conflict("department %q already exists", name)
		}
		return nil, err
	}
	return dept, nil
}

// Delete refuses while anything still references the department.
func (s *DepartmentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Departments.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("department %d not found", id)
		}
		return err
	}

	refs, err := s.Departments.References(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return conflict("department %d is still referenced by %d records", id, refs)
	}

	err = s.Departments.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("department %d not found", id)
	}
	return err
}
