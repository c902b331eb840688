package models

import "time"

// RatingDimensions enumerates the five scored dimensions in storage order.
var RatingDimensions = []string{"clarity", "preparation", "interaction", "punctuality", "satisfaction"}

// Evaluation is one respondent's rating submission for a specific
// course/center/week/day/period slot. Rows are immutable once created.
type Evaluation struct {
	ID             string    `db:"evaluation_id" json:"evaluation_id"`
	CourseCode     string    `db:"course_code" json:"course_code"`
	Center         string    `db:"center" json:"center"`
	Week           int       `db:"week" json:"week"`
	Day            string    `db:"day" json:"day"`
	Period         string    `db:"period" json:"period"`
	Instructor     string    `db:"instructor" json:"instructor"`
	Clarity        float64   `db:"clarity" json:"clarity"`
	Preparation    float64   `db:"preparation" json:"preparation"`
	Interaction    float64   `db:"interaction" json:"interaction"`
	Punctuality    float64   `db:"punctuality" json:"punctuality"`
	Satisfaction   float64   `db:"satisfaction" json:"satisfaction"`
	Comment        string    `db:"comment" json:"comment"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
	CourseName     string    `db:"course_name" json:"course_name"`
	CourseCategory string    `db:"course_category" json:"course_category"`
}

// OverallScore is the mean of the five rating dimensions for one
// evaluation.
func (e Evaluation) OverallScore() float64 {
	return (e.Clarity + e.Preparation + e.Interaction + e.Punctuality + e.Satisfaction) / 5
}

// EvaluationCourse identifies the target course inside a submission.
type EvaluationCourse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SubmitEvaluationRequest is the intake payload. Week and ratings tolerate
// numeric strings; Comments is the primary free-text field with Comment as
// the legacy fallback name.
type SubmitEvaluationRequest struct {
	Course     *EvaluationCourse     `json:"course"`
	Center     string                `json:"center"`
	Week       FlexNumber            `json:"week"`
	Day        string                `json:"day"`
	Period     string                `json:"period"`
	Instructor string                `json:"instructor"`
	Ratings    map[string]FlexNumber `json:"ratings"`
	Comments   string                `json:"comments"`
	Comment    string                `json:"comment"`
}

// CommentText resolves the free-text comment, preferring Comments.
func (r SubmitEvaluationRequest) CommentText() string {
	if r.Comments != "" {
		return r.Comments
	}
	return r.Comment
}

// SubmitResult reports a stored evaluation. Row mirrors the tabular
// position including the header row.
type SubmitResult struct {
	Message      string `json:"message"`
	EvaluationID string `json:"evaluationId"`
	Course       string `json:"course"`
	Sheet        string `json:"sheet"`
	Row          int    `json:"row"`
}

// EvaluationList wraps a listing response.
type EvaluationList struct {
	Evaluations []Evaluation `json:"evaluations"`
	Count       int          `json:"count"`
}
