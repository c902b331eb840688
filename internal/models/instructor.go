package models

// ScheduleSlot is one roster grid entry: a teaching session identified by
// (center, week, day, period) with up to two assigned instructors.
type ScheduleSlot struct {
	Center      string `db:"center" json:"center"`
	Week        int    `db:"week" json:"week"`
	Day         string `db:"day" json:"day"`
	Period      string `db:"period" json:"period"`
	Instructor1 string `db:"instructor1" json:"instructor1"`
	Instructor2 string `db:"instructor2" json:"instructor2"`
}

// RosterTemplate describes the grid pre-populated into a new instructor
// sheet: every center x week x day x period combination, unassigned.
type RosterTemplate struct {
	Centers []string
	Weeks   int
	Days    []string
	Periods []string
}

// DefaultRosterTemplate mirrors the weekend teaching grid the evaluation
// form was built around.
func DefaultRosterTemplate(weeks int) RosterTemplate {
	if weeks <= 0 {
		weeks = 8
	}
	return RosterTemplate{
		Centers: []string{"ลาดกระบัง", "บางพลัด", "ศรีราชา", "ระยอง"},
		Weeks:   weeks,
		Days:    []string{"เสาร์", "อาทิตย์"},
		Periods: []string{"เช้า", "บ่าย"},
	}
}

// Slots expands the template into roster rows.
func (t RosterTemplate) Slots() []ScheduleSlot {
	slots := make([]ScheduleSlot, 0, len(t.Centers)*t.Weeks*len(t.Days)*len(t.Periods))
	for week := 1; week <= t.Weeks; week++ {
		for _, center := range t.Centers {
			for _, day := range t.Days {
				for _, period := range t.Periods {
					slots = append(slots, ScheduleSlot{Center: center, Week: week, Day: day, Period: period})
				}
			}
		}
	}
	return slots
}

// UpdateInstructorRequest assigns instructors to one roster slot.
type UpdateInstructorRequest struct {
	CourseID    string `json:"courseId"`
	Center      string `json:"center" validate:"required"`
	Week        int    `json:"week" validate:"required,min=1,max=52"`
	Day         string `json:"day" validate:"required"`
	Period      string `json:"period" validate:"required"`
	Instructor1 string `json:"instructor1"`
	Instructor2 string `json:"instructor2"`
}

// InstructorList wraps a roster listing response.
type InstructorList struct {
	Instructors []ScheduleSlot `json:"instructors"`
	Count       int            `json:"count"`
	SheetName   string         `json:"sheetName"`
}

// UpdateInstructorResult reports a roster slot assignment.
type UpdateInstructorResult struct {
	Message   string `json:"message"`
	SheetName string `json:"sheetName"`
}
