// Package validation implements the form-level rule checks for course and
// evaluation payloads. Both validators accumulate every violated rule in
// declaration order instead of failing fast, so callers can surface the
// full list to the submitter in one response.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/noah-isme/course-eval-api/internal/models"
)

var courseCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)

// ValidDays are the accepted Thai weekday names.
var ValidDays = []string{"จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์", "อาทิตย์"}

// ValidPeriods are the accepted session period literals.
var ValidPeriods = []string{"08:00-12:00", "13:00-17:00", "เช้า", "บ่าย"}

// ValidCategories are the accepted course categories.
var ValidCategories = []string{"junior", "senior"}

// Result reports the outcome of a validation pass.
type Result struct {
	Valid  bool
	Errors []string
}

// Message joins all violations into the single string returned to clients.
func (r Result) Message() string {
	return strings.Join(r.Errors, ", ")
}

func newResult(errors []string) Result {
	return Result{Valid: len(errors) == 0, Errors: errors}
}

// ValidateCourse checks a course write payload.
func ValidateCourse(input models.CourseInput) Result {
	var errs []string

	code := strings.TrimSpace(input.Code)
	if code == "" {
		errs = append(errs, "Course code is required")
	} else if !courseCodePattern.MatchString(code) {
		errs = append(errs, "Course code must be 2-10 characters, letters and numbers only")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs = append(errs, "Course name is required")
	} else {
		if len([]rune(name)) < 3 {
			errs = append(errs, "Course name must be at least 3 characters")
		}
		if len([]rune(name)) > 200 {
			errs = append(errs, "Course name must not exceed 200 characters")
		}
	}

	if input.Duration.Present {
		d := input.Duration
		if !d.Valid || d.Value != float64(d.Int()) || d.Value < 1 || d.Value > 1000 {
			errs = append(errs, "Duration must be between 1-1000 hours")
		}
	}

	if len([]rune(input.Description)) > 1000 {
		errs = append(errs, "Description must not exceed 1000 characters")
	}

	if input.Category != "" && !contains(ValidCategories, input.Category) {
		errs = append(errs, "Invalid category. Must be one of: "+strings.Join(ValidCategories, ", "))
	}

	return newResult(errs)
}

// ValidateEvaluation checks an evaluation submission.
func ValidateEvaluation(req models.SubmitEvaluationRequest) Result {
	var errs []string

	if req.Course == nil {
		errs = append(errs, "Course information is required")
	}
	if req.Center == "" {
		errs = append(errs, "Study center is required")
	}
	if !req.Week.Present {
		errs = append(errs, "Week number is required")
	}
	if req.Day == "" {
		errs = append(errs, "Day is required")
	}
	if req.Period == "" {
		errs = append(errs, "Time period is required")
	}
	if req.Instructor == "" {
		errs = append(errs, "Instructor name is required")
	}
	if req.Ratings == nil {
		errs = append(errs, "Ratings data is required")
	}

	if req.Course != nil {
		if strings.TrimSpace(req.Course.Code) == "" {
			errs = append(errs, "Course code is required")
		}
		if strings.TrimSpace(req.Course.Name) == "" {
			errs = append(errs, "Course name is required")
		}
	}

	if req.Week.Present {
		w := req.Week
		if !w.Valid || w.Value != float64(w.Int()) || w.Int() < 1 || w.Int() > 52 {
			errs = append(errs, "Week must be a number between 1-52")
		}
	}

	if req.Day != "" && !contains(ValidDays, req.Day) {
		errs = append(errs, "Invalid day. Must be a valid day of week in Thai")
	}

	if req.Period != "" && !contains(ValidPeriods, req.Period) {
		errs = append(errs, "Invalid time period. Must be one of: "+strings.Join(ValidPeriods, ", "))
	}

	if req.Instructor != "" {
		instructor := []rune(strings.TrimSpace(req.Instructor))
		if len(instructor) < 2 {
			errs = append(errs, "Instructor name must be at least 2 characters")
		}
		if len(instructor) > 100 {
			errs = append(errs, "Instructor name must not exceed 100 characters")
		}
	}

	if len([]rune(req.CommentText())) > 1000 {
		errs = append(errs, "Comments must not exceed 1000 characters")
	}

	if req.Ratings != nil {
		for _, dimension := range models.RatingDimensions {
			rating, ok := req.Ratings[dimension]
			if !ok || !rating.Present {
				errs = append(errs, fmt.Sprintf("Rating for %s is required", dimension))
				continue
			}
			if !rating.Valid || rating.Value < 1 || rating.Value > 5 {
				errs = append(errs, fmt.Sprintf("Rating for %s must be between 1-5", dimension))
			}
		}
	}

	return newResult(errs)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
