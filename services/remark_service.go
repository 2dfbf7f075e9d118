package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
)

// RemarkService serves the remark and response workflow.
type RemarkService struct {
	Remarks     repository.RemarkRepository
	Submissions repository.SubmissionRepository

	now func() time.Time
}

func (s *RemarkService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func userDepartment(user *models.User) (uint, error) {
	if user.DepartmentID == nil {
		return 0, notFound("user %q has no department", user.Username)
	}
	return *user.DepartmentID, nil
}

func surveyDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Incoming lists remarks on the user's department that still need a response.
func (s *RemarkService) Incoming(ctx context.Context, user *models.User) ([]models.IncomingRemark, error) {
	deptID, err := userDepartment(user)
	if err != nil {
		return nil, err
	}
	rows, err := s.Remarks.Incoming(ctx, deptID)
	if err != nil {
		return nil, err
	}
	out := make([]models.IncomingRemark, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.IncomingRemark{
			ID:                r.SubmissionID,
			QuestionDataID:    r.QuestionID,
			FromDepartment:    r.DepartmentName,
			RatedDepartmentID: r.RatedDepartmentID,
			Remark:            r.TextResponse,
			RatingGiven:       r.RatingValue,
			SurveyDate:        surveyDate(r.SubmittedAt),
			Category:          r.Category,
		})
	}
	return out, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Outgoing lists remarks the user's department made, with any response.
func (s *RemarkService) Outgoing(ctx context.Context, user *models.User) ([]models.OutgoingRemark, error) {
	deptID, err := userDepartment(user)
	if err != nil {
		return nil, err
	}
	rows, err := s.Remarks.Outgoing(ctx, deptID)
	if err != nil {
		return nil, err
	}
	out := make([]models.OutgoingRemark, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.OutgoingRemark{
			ID:             r.SubmissionID,
			QuestionDataID: r.QuestionID,
			Department:     r.DepartmentName,
			Rating:         r.RatingValue,
			YourRemark:     r.TextResponse,
			TheirResponse: models.ResponseTriple{
				Explanation:       deref(r.Explanation),
				ActionPlan:        deref(r.ActionPlan),
				ResponsiblePerson: deref(r.ResponsiblePerson),
			},
			Responded:  r.Explanation != nil,
			SurveyDate: surveyDate(r.SubmittedAt),
			Category:   r.Category,
		})
	}
	return out, nil
}

// Respond creates or overwrites the response to one remark. A submission
// not rating the user's department looks the same as a missing one.
func (s *RemarkService) Respond(ctx context.Context, user *models.User, req models.RemarkRespondRequest) (*models.RemarkResponse, error) {
	submissionID, questionID := req.Submission(), req.Question()
	if submissionID == 0 || questionID == 0 {
		return nil, invalid("submission_id and question_id are required")
	}
	explanation := strings.TrimSpace(req.Explanation)
	actionPlan := strings.TrimSpace(req.ActionPlan)
	person := strings.TrimSpace(req.ResponsiblePerson)
	if explanation == "" || actionPlan == "" || person == "" {
		return nil, invalid("explanation, action_plan and responsible_person are required")
	}

	deptID, err := userDepartment(user)
	if err != nil {
		return nil, err
	}

	sub, err := s.Submissions.GetByID(ctx, submissionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("submission not found or not authorized")
	}
	if err != nil {
		return nil, err
	}
	if sub.RatedDepartmentID != deptID {
		return nil, notFound("submission not found or not authorized")
	}

	ok, err := s.Remarks.RemarkExists(ctx, submissionID, questionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("no remark on question %d of this submission", questionID)
	}

	resp := &models.RemarkResponse{
		SurveySubmissionID:      submissionID,
		QuestionID:              questionID,
		Explanation:             explanation,
		ActionPlan:              actionPlan,
		ResponsiblePerson:       person,
		RespondedAt:             s.clock(),
		RespondedByDepartmentID: deptID,
	}
	if err := s.Remarks.Upsert(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
