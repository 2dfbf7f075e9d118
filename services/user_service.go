package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/storage"
	"deptsurvey/utils"

	"github.com/sirupsen/logrus"
)

// UserService is the admin surface over user accounts.
type UserService struct {
	Users       repository.UserRepository
	Departments repository.DepartmentRepository
	Submissions repository.SubmissionRepository
	Logger      *logrus.Logger
}

func (s *UserService) List(ctx context.Context) ([]models.UserProfile, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, ToProfile(u))
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.UserProfile, error) {
	user, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("user %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	p := ToProfile(*user)
	return &p, nil
}

// resolveDepartment maps a department name to its id; blank means none.
func (s *UserService) resolveDepartment(ctx context.Context, name string) (*uint, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	dept, err := s.Departments.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("unknown department %q", name)
	}
	if err != nil {
		return nil, err
	}
	return &dept.ID, nil
}

func storedRole(role *string) string {
	if role == nil || strings.TrimSpace(*role) == "" {
		return utils.RoleUser
	}
	return strings.ToLower(strings.TrimSpace(*role))
}

func (s *UserService) Create(ctx context.Context, req models.UserCreateRequest) (*models.UserProfile, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Name == "" || req.Email == "" {
		return nil, invalid("username, name and email are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, invalid("invalid email %q", req.Email)
	}
	if len(req.Password) < 6 {
		return nil, invalid("password must be at least 6 characters")
	}

	deptID, err := s.resolveDepartment(ctx, req.Department)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       req.Username,
		Name:           req.Name,
		Email:          req.Email,
		DepartmentID:   deptID,
		HashedPassword: hash,
		Role:           storedRole(req.Role),
		IsActive:       true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, conflict("username or email already registered")
		}
		return nil, err
	}
	return s.Get(ctx, user.ID)
}

func (s *UserService) Update(ctx context.Context, id uint, req models.UserUpdateRequest) (*models.UserProfile, error) {
	if _, err := s.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user %d not found", id)
		}
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, invalid("name cannot be blank")
		}
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*req.Email)); err != nil {
			return nil, invalid("invalid email %q", *req.Email)
		}
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Department != nil {
		deptID, err := s.resolveDepartment(ctx, *req.Department)
		if err != nil {
			return nil, err
		}
		fields["department_id"] = deptID
	}
	if req.Role != nil {
		fields["role"] = storedRole(req.Role)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, invalid("password must be at least 6 characters")
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["hashed_password"] = hash
	}

	if err := s.Users.Update(ctx, id, fields); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, conflict("email already registered")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete refuses users with submissions; deactivate those instead.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	subs, err := s.Submissions.List(ctx, repository.SubmissionFilter{SubmitterUserID: id, Limit: 1})
	if err != nil {
		return err
	}
	if len(subs) > 0 {
		return conflict("user %d has submissions; deactivate instead", id)
	}
	err = s.Users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("user %d not found", id)
	}
	if err == nil {
		s.Logger.WithFields(logrus.Fields{"operation": "DeleteUser", "user_id": id}).Info("User deleted")
	}
	return err
}
