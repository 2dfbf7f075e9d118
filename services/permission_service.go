package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"

	"github.com/sirupsen/logrus"
)

// Skip reasons reported for triples left out of a save.
const (
	SkipMissingID      = "from_dept_id and to_dept_id are required"
	SkipUnknownDept    = "department does not exist"
	SkipSelfNotAllowed = "self pair without can_survey_self"
	SkipDuplicatePair  = "duplicate pair"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISOTime accepts RFC 3339 and the zone-less forms browsers send.
// Times without a zone are taken as UTC.
func ParseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected an ISO 8601 string", s)
}

func parseWindow(start, end string) (time.Time, time.Time, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return time.Time{}, time.Time{}, invalid("start_date and end_date are required")
	}
	from, err := ParseISOTime(start)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("%v", err)
	}
	to, err := ParseISOTime(end)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("%v", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, invalid("end_date must not be before start_date")
	}
	return from, to, nil
}

// PermissionService owns the time-windowed permission matrix.
type PermissionService struct {
	Permissions repository.PermissionRepository
	Departments repository.DepartmentRepository
	Users       repository.UserRepository
	Mail        *EmailService
	Logger      *logrus.Logger

	now func() time.Time
}

func (s *PermissionService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func (s *PermissionService) List(ctx context.Context) ([]models.PermissionDTO, error) {
	perms, err := s.Permissions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PermissionDTO, 0, len(perms))
	for _, p := range perms {
		out = append(out, models.PermissionDTO{
			ID:               p.ID,
			FromDepartmentID: p.FromDepartmentID,
			ToDepartmentID:   p.ToDepartmentID,
			CanSurveySelf:    p.CanSurveySelf,
			StartDate:        p.StartDate.UTC().Format(time.RFC3339),
			EndDate:          p.EndDate.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

func pairIDs(pairs []models.PermissionPair) []uint {
	var ids []uint
	for _, p := range pairs {
		if p.FromDeptID != nil {
			ids = append(ids, *p.FromDeptID)
		}
		if p.ToDeptID != nil {
			ids = append(ids, *p.ToDeptID)
		}
	}
	return ids
}

// Replace swaps the whole matrix for the valid triples of req. Invalid
// triples are skipped and reported; malformed dates reject the request
// before anything is written.
func (s *PermissionService) Replace(ctx context.Context, req models.SetPermissionsRequest) (*models.PermissionSaveResult, error) {
	start, end, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	existing, err := s.Departments.ExistingIDs(ctx, pairIDs(req.AllowedPairs))
	if err != nil {
		return nil, err
	}

	result := &models.PermissionSaveResult{Skipped: []models.SkippedPair{}}
	seen := map[[2]uint]bool{}
	var perms []models.Permission
	for _, p := range req.AllowedPairs {
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, models.SkippedPair{FromDeptID: p.FromDeptID, ToDeptID: p.ToDeptID, Reason: reason})
		}
		switch {
		case p.FromDeptID == nil || p.ToDeptID == nil:
			skip(SkipMissingID)
			continue
		case !existing[*p.FromDeptID] || !existing[*p.ToDeptID]:
			skip(SkipUnknownDept)
			continue
		case *p.FromDeptID == *p.ToDeptID && !p.CanSurveySelf:
			skip(SkipSelfNotAllowed)
			continue
		}
		key := [2]uint{*p.FromDeptID, *p.ToDeptID}
		if seen[key] {
			skip(SkipDuplicatePair)
			continue
		}
		seen[key] = true

		perms = append(perms, models.Permission{
			FromDepartmentID: *p.FromDeptID,
			ToDepartmentID:   *p.ToDeptID,
			CanSurveySelf:    p.CanSurveySelf,
			StartDate:        start,
			EndDate:          end,
		})
	}

	if err := s.Permissions.ReplaceAll(ctx, perms); err != nil {
		return nil, err
	}

	result.Saved = len(perms)
	result.Message = "Permissions saved successfully"
	if len(result.Skipped) > 0 {
		s.Logger.WithFields(logrus.Fields{
			"operation": "ReplacePermissions",
			"saved":     result.Saved,
			"skipped":   len(result.Skipped),
		}).Warn("Some permission pairs were skipped")
	}
	return result, nil
}

// SurveyableDepartments lists what the user's department may survey now.
func (s *PermissionService) SurveyableDepartments(ctx context.Context, user *models.User) ([]models.Department, error) {
	if user.DepartmentID == nil {
		return nil, notFound("user %q has no department", user.Username)
	}
	return s.Permissions.ActiveTargets(ctx, *user.DepartmentID, s.clock())
}

// CanSurvey reports whether fromDeptID holds an active permission on toDeptID.
func (s *PermissionService) CanSurvey(ctx context.Context, fromDeptID, toDeptID uint) (bool, error) {
	return s.Permissions.IsActive(ctx, fromDeptID, toDeptID, s.clock())
}

// MailAlert tells the users of every from department which departments
// they may survey. Mail goes to the configured Mailer, which only logs.
func (s *PermissionService) MailAlert(ctx context.Context, req models.SetPermissionsRequest) (*models.MailAlertResponse, error) {
	if len(req.AllowedPairs) == 0 {
		return nil, invalid("missing allowed_pairs or date range for mail alert")
	}
	start, end, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	depts, err := s.Departments.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(depts))
	for _, d := range depts {
		names[d.ID] = d.Name
	}

	targets := map[uint][]string{}
	var fromIDs []uint
	for _, p := range req.AllowedPairs {
		if p.FromDeptID == nil || p.ToDeptID == nil {
			continue
		}
		to, ok := names[*p.ToDeptID]
		if !ok {
			continue
		}
		if _, seen := targets[*p.FromDeptID]; !seen {
			fromIDs = append(fromIDs, *p.FromDeptID)
		}
		targets[*p.FromDeptID] = append(targets[*p.FromDeptID], to)
	}

	users, err := s.Users.ListByDepartments(ctx, fromIDs)
	if err != nil {
		return nil, err
	}

	resp := &models.MailAlertResponse{AlertDetails: []string{}}
	for _, u := range users {
		if u.DepartmentID == nil || len(targets[*u.DepartmentID]) == 0 {
			continue
		}
		detail := fmt.Sprintf("Simulating email to user '%s' (%s) from department '%s'. Can now survey: %s. Survey period: %s to %s.",
			u.Username, u.Email, u.DepartmentName(), strings.Join(targets[*u.DepartmentID], ", "),
			start.Format("2006-01-02"), end.Format("2006-01-02"))
		resp.AlertDetails = append(resp.AlertDetails, detail)

		if s.Mail != nil {
			if _, err := s.Mail.SendTemplatedEmail(ctx, TemplatePermissionAlert, EmailData{
				UserName:   u.Name,
				Email:      u.Email,
				Department: u.DepartmentName(),
				Targets:    strings.Join(targets[*u.DepartmentID], ", "),
				WindowFrom: start.Format("2006-01-02"),
				WindowTo:   end.Format("2006-01-02"),
			}); err != nil {
				s.Logger.WithError(err).WithField("username", u.Username).Error("Failed to send permission alert")
			}
		}
	}

	if len(resp.AlertDetails) == 0 {
		resp.Message = "Mail alert process initiated. No relevant users found for simulation."
	} else {
		resp.Message = "Mail alert process initiated (simulated). Check backend logs for details."
	}
	return resp, nil
}
