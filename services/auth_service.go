package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthService handles login, token verification and password resets.
type AuthService struct {
	Users           repository.UserRepository
	Tokens          *utils.TokenIssuer
	Revoker         TokenRevoker
	Mail            *EmailService
	ResetTTL        time.Duration
	FrontendBaseURL string
	Logger          *logrus.Logger

	now func() time.Time
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// ToProfile renders a user for the front-ends with the role collapsed to admin/user.
func ToProfile(u models.User) models.UserProfile {
	return models.UserProfile{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.DepartmentName(),
		Role:       utils.NormalizeRole(u.Role),
		IsActive:   u.IsActive,
	}
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, *utils.AccessClaims, error) {
	log := s.Logger.WithFields(logrus.Fields{"operation": "Login", "username": username})

	user, err := s.Users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Login failed: unknown user")
		return nil, "", nil, unauthenticated("incorrect username or password")
	}
	if err != nil {
		return nil, "", nil, err
	}
	if !utils.ValidatePassword(user.HashedPassword, password) {
		log.Warn("Login failed: wrong password")
		return nil, "", nil, unauthenticated("incorrect username or password")
	}
	if !user.IsActive {
		log.Warn("Login refused: inactive user")
		return nil, "", nil, forbidden("user account is inactive")
	}

	token, claims, err := s.Tokens.GenerateJWT(user.Username)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	log.WithField("user_id", user.ID).Info("Login successful")
	return user, token, claims, nil
}

// Authenticate resolves a token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *utils.AccessClaims, error) {
	claims, err := s.Tokens.ValidateJWT(token)
	if err != nil {
		return nil, nil, unauthenticated("%v", err)
	}
	if s.Revoker != nil && claims.ID != "" {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, nil, unauthenticated("token has been revoked")
		}
	}

	user, err := s.Users.GetByUsername(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, unauthenticated("user not found")
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, unauthenticated("user account is inactive")
	}
	return user, claims, nil
}

// Logout revokes the token so it cannot be replayed before it expires.
func (s *AuthService) Logout(ctx context.Context, claims *utils.AccessClaims) error {
	if s.Revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"operation": "Logout", "username": claims.Subject}).Info("Token revoked")
	return nil
}

// RequestPasswordReset stores a reset token and mails the link. Unknown
// addresses succeed silently so the endpoint does not reveal accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email is required")
	}
	log := s.Logger.WithFields(logrus.Fields{"operation": "RequestPasswordReset", "email": email})

	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: s.clock().Add(s.ResetTTL),
	}
	if err := s.Users.CreateResetToken(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.FrontendBaseURL, token.Token)
	if s.Mail != nil {
		if _, err := s.Mail.SendTemplatedEmail(ctx, TemplatePasswordReset, EmailData{
			UserName:  user.Name,
			Email:     user.Email,
			ResetLink: link,
		}); err != nil {
			log.WithError(err).Error("Failed to send password reset mail")
		}
	}
	log.WithField("user_id", user.ID).Info("Password reset token issued")
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return invalid("token is required")
	}
	if len(password) < 6 {
		return invalid("password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.Users.ConsumeResetToken(ctx, token, hash, s.clock())
	if errors.Is(err, repository.ErrTokenInvalid) {
		return invalid("invalid or expired token")
	}
	if err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{"operation": "ResetPassword", "user_id": user.ID}).Info("Password reset completed")
	return nil
}
