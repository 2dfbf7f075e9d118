package models

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"15688779"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// PasswordResetRequest is the body of POST /request_password_reset
type PasswordResetRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// ResetPasswordRequest is the body of POST /reset_password
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// DepartmentRequest creates a department
type DepartmentRequest struct {
	Name string `json:"name" example:"IT"`
}

// PermissionPair is one requested edge of the permission matrix.
// Ids are pointers so a missing field can be told apart from zero.
type PermissionPair struct {
	FromDeptID    *uint `json:"from_dept_id"`
	ToDeptID      *uint `json:"to_dept_id"`
	CanSurveySelf bool  `json:"can_survey_self"`
}

// SetPermissionsRequest replaces the whole matrix with AllowedPairs
// sharing one validity window.
type SetPermissionsRequest struct {
	AllowedPairs []PermissionPair `json:"allowed_pairs"`
	StartDate    string           `json:"start_date" example:"2026-01-01T00:00:00Z"`
	EndDate      string           `json:"end_date" example:"2026-03-31T23:59:59Z"`
}

// OptionRequest is one multiple choice option of a survey question
type OptionRequest struct {
	Text  string  `json:"text"`
	Value *string `json:"value"`
	Order *int    `json:"order"`
}

// QuestionRequest is one question of a survey template
type QuestionRequest struct {
	Text     string          `json:"text"`
	Type     string          `json:"type" example:"rating"`
	Order    *int            `json:"order"`
	Category string          `json:"category" example:"Quality"`
	Options  []OptionRequest `json:"options"`
}

// SurveyRequest creates or replaces a survey template
type SurveyRequest struct {
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	RatedDepartmentID    uint              `json:"rated_department_id"`
	ManagingDepartmentID *uint             `json:"managing_department_id"`
	Questions            []QuestionRequest `json:"questions"`
}

// AnswerInput is one answer of a submission. The front-ends send the
// question id as "id" and the remark as "remarks"; both spellings are accepted.
type AnswerInput struct {
	QuestionID       *uint   `json:"question_id"`
	ID               *uint   `json:"id"`
	Rating           *int    `json:"rating"`
	Remarks          *string `json:"remarks"`
	Text             *string `json:"text"`
	SelectedOptionID *uint   `json:"selected_option_id"`
}

// Question resolves whichever question id spelling was sent.
func (a AnswerInput) Question() (uint, bool) {
	if a.QuestionID != nil {
		return *a.QuestionID, true
	}
	if a.ID != nil {
		return *a.ID, true
	}
	return 0, false
}

// FreeText resolves whichever free text spelling was sent.
func (a AnswerInput) FreeText() string {
	if a.Remarks != nil {
		return *a.Remarks
	}
	if a.Text != nil {
		return *a.Text
	}
	return ""
}

// SubmitSurveyRequest is the body of POST /api/surveys/:id/submit_response
type SubmitSurveyRequest struct {
	Answers               []AnswerInput `json:"answers"`
	OverallCustomerRating *float64      `json:"overall_customer_rating"`
	RatingDescription     *string       `json:"rating_description"`
	Suggestions           *string       `json:"suggestions"`
	Suggestion            *string       `json:"suggestion"`
}

// SuggestionText resolves whichever suggestion spelling was sent.
func (r SubmitSurveyRequest) SuggestionText() string {
	if r.Suggestions != nil {
		return *r.Suggestions
	}
	if r.Suggestion != nil {
		return *r.Suggestion
	}
	return ""
}

// RemarkRespondRequest is the body of POST /api/remarks/respond.
// survey_id carries the submission id in the legacy front-end.
type RemarkRespondRequest struct {
	SubmissionID      uint   `json:"submission_id"`
	SurveyID          uint   `json:"survey_id"`
	QuestionID        uint   `json:"question_id"`
	QuestionDataID    uint   `json:"question_data_id"`
	Explanation       string `json:"explanation"`
	ActionPlan        string `json:"action_plan"`
	ResponsiblePerson string `json:"responsible_person"`
}

// Submission resolves the submission id.
func (r RemarkRespondRequest) Submission() uint {
	if r.SubmissionID != 0 {
		return r.SubmissionID
	}
	return r.SurveyID
}

// Question resolves the question id.
func (r RemarkRespondRequest) Question() uint {
	if r.QuestionID != 0 {
		return r.QuestionID
	}
	return r.QuestionDataID
}

// UserCreateRequest is the body of POST /api/users
type UserCreateRequest struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	Role       *string `json:"role"`
}

// UserUpdateRequest is the body of PUT /api/users/:id; nil fields are left as is
type UserUpdateRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
	IsActive   *bool   `json:"is_active"`
	Password   *string `json:"password"`
}
