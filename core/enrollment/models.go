package enrollment

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Enrollment statuses. The values are the Spanish labels the mobile clients
// and the existing database rows use; they are part of the stored data, not
// of the wire protocol.
const (
	StatusPending    = "Pendiente"
	StatusInProgress = "En curso"
	StatusCompleted  = "Completado"
)

// Exam enrollment statuses.
const (
	ExamStatusPending   = "Pendiente"
	ExamStatusScheduled = "Programado"
	ExamStatusCompleted = "Completado"
)

// Enrollment is a student's relationship to a course level: at most one row
// per (student, course) pair. Grade is the student's canonical per-course
// grade, kept in sync with the per-group grade records.
type Enrollment struct {
	ID        int       `json:"id" db:"id"`
	StudentID int       `json:"student_id" db:"student_id"`
	CourseID  int       `json:"course_id" db:"course_id"`
	Grade     null.Int  `json:"grade" db:"grade"`
	Status    string    `json:"status" db:"status"`
	StartDate null.Time `json:"start_date" db:"start_date"`
	EndDate   null.Time `json:"end_date" db:"end_date"`

	CourseName string `json:"course_name,omitempty" db:"course_name"` // joined
}

// ExamEnrollment is a student's relationship to an exam type, keyed by
// (student, exam).
type ExamEnrollment struct {
	ID            int       `json:"id" db:"id"`
	StudentID     int       `json:"student_id" db:"student_id"`
	ExamID        int       `json:"exam_id" db:"exam_id"`
	Grade         null.Int  `json:"grade" db:"grade"`
	Status        string    `json:"status" db:"status"`
	ScheduledDate null.Time `json:"scheduled_date" db:"scheduled_date"`

	ExamName string `json:"exam_name,omitempty" db:"exam_name"` // joined
}

// CourseAssignmentData carries the mutable fields of an Enrollment.
type CourseAssignmentData struct {
	Status    string    `json:"status" validate:"required,oneof=Pendiente 'En curso' Completado"`
	Grade     *int      `json:"grade" validate:"omitempty,gte=0,lte=100"`
	StartDate null.Time `json:"start_date"`
	EndDate   null.Time `json:"end_date"`
}

func (d CourseAssignmentData) Validate(validate *validator.Validate) error {
	return validate.Struct(d)
}

// ExamAssignmentData carries the mutable fields of an ExamEnrollment.
type ExamAssignmentData struct {
	Status        string    `json:"status" validate:"required,oneof=Pendiente Programado Completado"`
	Grade         *int      `json:"grade" validate:"omitempty,gte=0,lte=100"`
	ScheduledDate null.Time `json:"scheduled_date"`
}

func (d ExamAssignmentData) Validate(validate *validator.Validate) error {
	return validate.Struct(d)
}

// BulkCourseAssignment asks for one course to be assigned to many students.
type BulkCourseAssignment struct {
	StudentIDs []int     `json:"student_ids" validate:"required,min=1,dive,gt=0"`
	CourseID   int       `json:"course_id" validate:"required,gt=0"`
	Status     string    `json:"status" validate:"required,oneof=Pendiente 'En curso' Completado"`
	Grade      *int      `json:"grade" validate:"omitempty,gte=0,lte=100"`
	StartDate  null.Time `json:"start_date"`
	EndDate    null.Time `json:"end_date"`
}

func (b BulkCourseAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(b)
}

// BulkCourseRemoval asks for one course to be unassigned from many students.
type BulkCourseRemoval struct {
	StudentIDs []int `json:"student_ids" validate:"required,min=1,dive,gt=0"`
	CourseID   int   `json:"course_id" validate:"required,gt=0"`
}

func (b BulkCourseRemoval) Validate(validate *validator.Validate) error {
	return validate.Struct(b)
}
