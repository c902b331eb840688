package models

import "time"

// Course statuses.
const (
	CourseStatusActive   = "active"
	CourseStatusInactive = "inactive"
)

// Course is a named training unit with a unique code, the root grouping
// entity of the catalog.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Duration    int       `db:"duration" json:"duration"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseInput is the write payload for course create/update actions.
// Duration tolerates numeric strings the same way the form clients send
// them.
type CourseInput struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	OriginalCode string     `json:"originalCode"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Duration     FlexNumber `json:"duration"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
}

// SheetSet is one registry entry mapping a course to the identifiers of
// its evaluation and instructor tables. Sheets are always resolved through
// the registry, never by parsing table names.
type SheetSet struct {
	CourseID        string    `db:"course_id" json:"course_id"`
	CourseCode      string    `db:"course_code" json:"course_code"`
	EvaluationSheet string    `db:"evaluation_sheet" json:"evaluation_sheet"`
	InstructorSheet string    `db:"instructor_sheet" json:"instructor_sheet"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// CreateCourseResult echoes what was provisioned for a new course.
type CreateCourseResult struct {
	Message       string   `json:"message"`
	CourseID      string   `json:"courseId"`
	CourseCode    string   `json:"courseCode"`
	SheetsCreated []string `json:"sheetsCreated"`
}

// UpdateCourseResult reports a course mutation and whether dependent
// sheets were renamed.
type UpdateCourseResult struct {
	Message       string `json:"message"`
	CourseID      string `json:"courseId"`
	SheetsRenamed bool   `json:"sheetsRenamed"`
}

// DeleteCourseResult reports a course removal and its dropped sheets.
type DeleteCourseResult struct {
	Message       string   `json:"message"`
	CourseCode    string   `json:"courseCode"`
	SheetsDeleted []string `json:"sheetsDeleted"`
}

// MaintenanceResult reports a storage maintenance pass.
type MaintenanceResult struct {
	Message         string `json:"message"`
	SheetsProcessed int    `json:"sheetsProcessed"`
}
