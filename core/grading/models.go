package grading

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// CourseAssignment is a teaching group: one teacher teaching one course to one
// group label during one period. The (teacher, course, group, period) tuple is
// unique.
type CourseAssignment struct {
	ID         int       `json:"id" db:"id"`
	TeacherID  int       `json:"teacher_id" db:"teacher_id"`
	CourseID   int       `json:"course_id" db:"course_id"`
	GroupLabel string    `json:"group_label" db:"group_label"`
	Period     string    `json:"period" db:"period"`
	StartDate  null.Time `json:"start_date" db:"start_date"`
	EndDate    null.Time `json:"end_date" db:"end_date"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	TeacherName string `json:"teacher_name,omitempty" db:"teacher_name"` // joined
	CourseName  string `json:"course_name,omitempty" db:"course_name"`   // joined
}

// GradeRecord is one student's grade inside one teaching group, unique per
// (student, course assignment).
type GradeRecord struct {
	ID                 int       `json:"id" db:"id"`
	StudentID          int       `json:"student_id" db:"student_id"`
	CourseAssignmentID int       `json:"course_assignment_id" db:"course_assignment_id"`
	Grade              null.Int  `json:"grade" db:"grade"`
	Comment            string    `json:"comment" db:"comment"`
	RecordedAt         time.Time `json:"recorded_at" db:"recorded_at"`
}

// RosterRow is one line of a group's student list as the teacher portal shows
// it: the enrolled student joined with their grade record, if any.
type RosterRow struct {
	StudentID     int      `json:"student_id" db:"student_id"`
	FirstName     string   `json:"first_name" db:"first_name"`
	LastName      string   `json:"last_name" db:"last_name"`
	ControlNumber string   `json:"control_number" db:"control_number"`
	Grade         null.Int `json:"grade" db:"grade"`
}

// ExportRow is one line of a group's grade export.
type ExportRow struct {
	ControlNumber string   `json:"control_number" db:"control_number"`
	FirstName     string   `json:"first_name" db:"first_name"`
	LastName      string   `json:"last_name" db:"last_name"`
	Grade         null.Int `json:"grade" db:"grade"`
}

// GroupExport packages an export with the group's identity so the file the
// client writes can be named after the group.
type GroupExport struct {
	CourseName string      `json:"course_name"`
	GroupLabel string      `json:"group_label"`
	Period     string      `json:"period"`
	Rows       []ExportRow `json:"rows"`
}

// NewCourseAssignment is the payload for creating a teaching group.
type NewCourseAssignment struct {
	TeacherID  int       `json:"teacher_id" validate:"required,gt=0"`
	CourseID   int       `json:"course_id" validate:"required,gt=0"`
	GroupLabel string    `json:"group_label" validate:"required,max=50"`
	Period     string    `json:"period" validate:"required,max=50"`
	StartDate  null.Time `json:"start_date"`
	EndDate    null.Time `json:"end_date"`
}

func (a NewCourseAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(a)
}

// UpdateCourseAssignment mutates a teaching group. Zero-value fields keep the
// original values.
type UpdateCourseAssignment struct {
	TeacherID  int       `json:"teacher_id" validate:"omitempty,gt=0"`
	CourseID   int       `json:"course_id" validate:"omitempty,gt=0"`
	GroupLabel string    `json:"group_label" validate:"omitempty,max=50"`
	Period     string    `json:"period" validate:"omitempty,max=50"`
	StartDate  null.Time `json:"start_date"`
	EndDate    null.Time `json:"end_date"`
}

func (a UpdateCourseAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(a)
}

// RecordGrade is a teacher recording one student's grade in one of their
// groups.
type RecordGrade struct {
	StudentID          int    `json:"student_id" validate:"required,gt=0"`
	CourseAssignmentID int    `json:"course_assignment_id" validate:"required,gt=0"`
	Grade              int    `json:"grade" validate:"gte=0,lte=100"`
	Comment            string `json:"comment" validate:"omitempty,max=255"`
}

func (r RecordGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
