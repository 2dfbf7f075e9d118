package models

import (
	"time"
)

// Question types
const (
	QuestionRating         = "rating"
	QuestionText           = "text"
	QuestionMultipleChoice = "multiple_choice"
)

// ValidQuestionType reports whether t is one of the supported discriminators.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionRating, QuestionText, QuestionMultipleChoice:
		return true
	}
	return false
}

// Survey is a template that rates one department.
type Survey struct {
	ID                   uint      `gorm:"primaryKey;column:id"`
	Title                string    `gorm:"column:title;not null"`
	Description          string    `gorm:"column:description;type:text"`
	RatedDepartmentID    uint      `gorm:"column:rated_department_id;not null;index"`
	ManagingDepartmentID *uint     `gorm:"column:managing_department_id;index"`
	CreatedAt            time.Time `gorm:"column:created_at"`

	RatedDepartment    *Department `gorm:"foreignKey:RatedDepartmentID"`
	ManagingDepartment *Department `gorm:"foreignKey:ManagingDepartmentID"`
	Questions          []Question  `gorm:"foreignKey:SurveyID"`
}

// TableName specifies the table name for Survey
func (Survey) TableName() string {
	return "surveys"
}

// Question belongs to one survey; Order is unique per survey.
type Question struct {
	ID       uint   `gorm:"primaryKey;column:id"`
	SurveyID uint   `gorm:"column:survey_id;not null;uniqueIndex:uq_survey_question_order,priority:1"`
	Text     string `gorm:"column:text;type:text;not null"`
	Type     string `gorm:"column:type;type:varchar(20);not null"`
	Order    int    `gorm:"column:display_order;not null;uniqueIndex:uq_survey_question_order,priority:2"`
	Category string `gorm:"column:category"`

	Options []Option `gorm:"foreignKey:QuestionID"`
}

// TableName specifies the table name for Question
func (Question) TableName() string {
	return "questions"
}

// Option is a choice of a multiple_choice question.
type Option struct {
	ID         uint    `gorm:"primaryKey;column:id"`
	QuestionID uint    `gorm:"column:question_id;not null;uniqueIndex:uq_question_option_order,priority:1"`
	Text       string  `gorm:"column:text;not null"`
	Value      *string `gorm:"column:value"`
	Order      int     `gorm:"column:display_order;not null;uniqueIndex:uq_question_option_order,priority:2"`
}

// TableName specifies the table name for Option
func (Option) TableName() string {
	return "question_options"
}

// SurveySubmission is one user's completed survey. Department ids are
// snapshots taken at submission time.
type SurveySubmission struct {
	ID                    uint      `gorm:"primaryKey;column:id"`
	SurveyID              uint      `gorm:"column:survey_id;not null;uniqueIndex:uq_user_survey_submission,priority:1"`
	SubmitterUserID       uint      `gorm:"column:submitter_user_id;not null;uniqueIndex:uq_user_survey_submission,priority:2"`
	SubmittedAt           time.Time `gorm:"column:submitted_at;not null;index"`
	SubmitterDepartmentID uint      `gorm:"column:submitter_department_id;not null;index"`
	RatedDepartmentID     uint      `gorm:"column:rated_department_id;not null;index"`
	OverallCustomerRating *float64  `gorm:"column:overall_customer_rating"`
	RatingDescription     *string   `gorm:"column:rating_description;type:text"`
	Suggestions           *string   `gorm:"column:suggestions;type:text"`

	Survey              *Survey          `gorm:"foreignKey:SurveyID"`
	Submitter           *User            `gorm:"foreignKey:SubmitterUserID"`
	SubmitterDepartment *Department      `gorm:"foreignKey:SubmitterDepartmentID"`
	RatedDepartment     *Department      `gorm:"foreignKey:RatedDepartmentID"`
	Answers             []Answer         `gorm:"foreignKey:SubmissionID"`
	RemarkResponses     []RemarkResponse `gorm:"foreignKey:SurveySubmissionID"`
}

// TableName specifies the table name for SurveySubmission
func (SurveySubmission) TableName() string {
	return "survey_submissions"
}

// ResponseFor returns the response to the remark on questionID, if any.
func (s SurveySubmission) ResponseFor(questionID uint) *RemarkResponse {
	for i := range s.RemarkResponses {
		if s.RemarkResponses[i].QuestionID == questionID {
			return &s.RemarkResponses[i]
		}
	}
	return nil
}

// Answer is one per (submission, question).
type Answer struct {
	ID               uint    `gorm:"primaryKey;column:id"`
	SubmissionID     uint    `gorm:"column:submission_id;not null;uniqueIndex:uq_submission_question_answer,priority:1"`
	QuestionID       uint    `gorm:"column:question_id;not null;uniqueIndex:uq_submission_question_answer,priority:2"`
	RatingValue      *int    `gorm:"column:rating_value"`
	TextResponse     *string `gorm:"column:text_response;type:text"`
	SelectedOptionID *uint   `gorm:"column:selected_option_id"`

	Question       *Question `gorm:"foreignKey:QuestionID"`
	SelectedOption *Option   `gorm:"foreignKey:SelectedOptionID"`
}

// TableName specifies the table name for Answer
func (Answer) TableName() string {
	return "survey_answers"
}

// RemarkResponse is the rated department's reply to one remark.
type RemarkResponse struct {
	ID                      uint      `gorm:"primaryKey;column:id"`
	SurveySubmissionID      uint      `gorm:"column:survey_submission_id;not null;uniqueIndex:uq_remark_response_per_question,priority:1"`
	QuestionID              uint      `gorm:"column:question_id;not null;uniqueIndex:uq_remark_response_per_question,priority:2"`
	Explanation             string    `gorm:"column:explanation;type:text;not null"`
	ActionPlan              string    `gorm:"column:action_plan;type:text;not null"`
	ResponsiblePerson       string    `gorm:"column:responsible_person;not null"`
	RespondedAt             time.Time `gorm:"column:responded_at;not null"`
	RespondedByDepartmentID uint      `gorm:"column:responded_by_department_id;not null"`

	RespondedByDepartment *Department `gorm:"foreignKey:RespondedByDepartmentID"`
}

// TableName specifies the table name for RemarkResponse
func (RemarkResponse) TableName() string {
	return "remark_responses"
}
