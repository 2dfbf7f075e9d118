package models

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail" example:"Survey not found"`
	Error  string `json:"error" example:"not_found"`
}

// MessageResponse is a bare acknowledgement
type MessageResponse struct {
	Message string `json:"message" example:"Success"`
}

// UserProfile is the user representation returned to the front-ends
type UserProfile struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
}

// PermissionDTO is one saved edge of the matrix
type PermissionDTO struct {
	ID               uint   `json:"id"`
	FromDepartmentID uint   `json:"from_department_id"`
	ToDepartmentID   uint   `json:"to_department_id"`
	CanSurveySelf    bool   `json:"can_survey_self"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
}

// SkippedPair explains why a requested edge was not saved
type SkippedPair struct {
	FromDeptID *uint  `json:"from_dept_id"`
	ToDeptID   *uint  `json:"to_dept_id"`
	Reason     string `json:"reason"`
}

// PermissionSaveResult is returned by the replace-all write
type PermissionSaveResult struct {
	Message string        `json:"message"`
	Saved   int           `json:"saved"`
	Skipped []SkippedPair `json:"skipped"`
}

// DepartmentRef is a compact department reference
type DepartmentRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// OptionDTO is an option as served to the front-ends
type OptionDTO struct {
	ID    uint    `json:"id"`
	Text  string  `json:"text"`
	Value *string `json:"value"`
}

// QuestionDTO is a question as served to the front-ends
type QuestionDTO struct {
	ID       uint        `json:"id"`
	Text     string      `json:"text"`
	Type     string      `json:"type"`
	Order    int         `json:"order"`
	Category string      `json:"category"`
	Options  []OptionDTO `json:"options"`
}

// SurveyDTO is a survey template as served to the front-ends
type SurveyDTO struct {
	ID                   uint          `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	CreatedAt            string        `json:"created_at"`
	RatedDeptName        string        `json:"rated_dept_name"`
	ManagingDeptName     *string       `json:"managing_dept_name"`
	RatedDepartmentID    uint          `json:"rated_department_id"`
	ManagingDepartmentID *uint         `json:"managing_department_id"`
	Questions            []QuestionDTO `json:"questions"`
}

// SubmissionDTO is a detailed submission record
type SubmissionDTO struct {
	ID                      uint     `json:"id"`
	SurveyID                uint     `json:"survey_id"`
	SurveyTitle             string   `json:"survey_title"`
	SubmitterUserID         uint     `json:"submitter_user_id"`
	SubmitterDepartmentID   uint     `json:"submitter_department_id"`
	RatedDepartmentID       uint     `json:"rated_department_id"`
	SubmittedAt             string   `json:"submitted_at"`
	OverallCustomerRating   *float64 `json:"overall_customer_rating"`
	RatingDescription       *string  `json:"rating_description"`
	Suggestions             *string  `json:"suggestions"`
	SubmitterDepartmentName string   `json:"submitter_department_name"`
	RatedDepartmentName     string   `json:"rated_department_name"`
	SubmitterUsername       string   `json:"submitter_username"`
}

// SubmissionStatus tells a user whether they already answered a survey
type SubmissionStatus struct {
	SurveyID     uint  `json:"survey_id"`
	Submitted    bool  `json:"submitted"`
	SubmissionID *uint `json:"submission_id,omitempty"`
}

// IncomingRemark is a remark awaiting the rated department's response
type IncomingRemark struct {
	ID                uint    `json:"id"`
	QuestionDataID    uint    `json:"questionDataId"`
	FromDepartment    string  `json:"fromDepartment"`
	RatedDepartmentID uint    `json:"ratedDepartmentId"`
	Remark            string  `json:"remark"`
	RatingGiven       *int    `json:"ratingGiven"`
	SurveyDate        string  `json:"surveyDate"`
	Category          *string `json:"category"`
}

// ResponseTriple is the rated department's reply as seen by the submitter
type ResponseTriple struct {
	Explanation       string `json:"explanation"`
	ActionPlan        string `json:"actionPlan"`
	ResponsiblePerson string `json:"responsiblePerson"`
}

// OutgoingRemark is a remark a department made, paired with any response
type OutgoingRemark struct {
	ID             uint           `json:"id"`
	QuestionDataID uint           `json:"questionDataId"`
	Department     string         `json:"department"`
	Rating         *int           `json:"rating"`
	YourRemark     string         `json:"yourRemark"`
	TheirResponse  ResponseTriple `json:"theirResponse"`
	Responded      bool           `json:"responded"`
	SurveyDate     string         `json:"surveyDate"`
	Category       *string        `json:"category"`
}

// DepartmentMetric is one department's row of the admin dashboard
type DepartmentMetric struct {
	DepartmentID            uint    `json:"department_id"`
	DepartmentName          string  `json:"department_name"`
	AverageRatingReceived   float64 `json:"average_rating_received"`
	TotalSurveysReceived    int64   `json:"total_surveys_received"`
	UnrespondedRemarksCount int64   `json:"unresponded_remarks_count"`
}

// SubmissionSummary is a denormalized submission for dashboard feeds
type SubmissionSummary struct {
	ID                uint    `json:"id"`
	DepartmentID      uint    `json:"departmentId"`
	DepartmentName    string  `json:"departmentName"`
	OverallRating     float64 `json:"overallRating"`
	SubmissionDate    string  `json:"submissionDate"`
	SubmitterUsername string  `json:"submitterUsername"`
	SubmitterName     string  `json:"submitterName"`
}

// OverallStats is the global summary of the admin dashboard
type OverallStats struct {
	TotalSubmissions     int64               `json:"totalSubmissions"`
	AverageOverallRating float64             `json:"averageOverallRating"`
	TotalPercentage      float64             `json:"totalPercentage"`
	RatingDescription    string              `json:"ratingDescription"`
	LatestSubmissions    []SubmissionSummary `json:"latestSubmissions"`
}

// MailAlertResponse lists the simulated alert lines
type MailAlertResponse struct {
	Message      string   `json:"message"`
	AlertDetails []string `json:"alert_details"`
}
