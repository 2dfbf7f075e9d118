package services

import (
	"context"
	"errors"
	"strings"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/utils"

	"github.com/sirupsen/logrus"
)

// Seed lists what to provision at boot. Existing rows are left alone.
type Seed struct {
	Departments   []string
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// Provision creates missing seed departments and the seed admin.
func Provision(ctx context.Context, departments repository.DepartmentRepository, users repository.UserRepository, seed Seed, log *logrus.Logger) error {
	created := 0
	for _, name := range seed.Departments {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := departments.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := departments.Create(ctx, &models.Department{Name: name}); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.WithField("count", created).Info("Seed departments provisioned")
	}

	if seed.AdminUsername == "" || seed.AdminPassword == "" {
		return nil
	}
	_, err := users.GetByUsername(ctx, seed.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}
	email := seed.AdminEmail
	if email == "" {
		email = seed.AdminUsername + "@localhost"
	}
	admin := &models.User{
		Username:       seed.AdminUsername,
		Name:           "Administrator",
		Email:          email,
		HashedPassword: hash,
		Role:           utils.RoleAdmin,
		IsActive:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.WithField("username", admin.Username).Info("Seed admin provisioned")
	return nil
}
