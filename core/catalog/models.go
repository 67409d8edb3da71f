package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/tecliberacion/campus/core"
)

// Course is a course level students get enrolled in (e.g. "B1", "TOEFL prep").
type Course struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Exam is an exam type students get scheduled for.
type Exam struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type CourseData struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (cd *CourseData) Validate(validate *validator.Validate) error {
	cd.Name = core.CleanString(cd.Name)
	cd.Description = core.CleanString(cd.Description)
	return validate.Struct(cd)
}

type ExamData struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (ed *ExamData) Validate(validate *validator.Validate) error {
	ed.Name = core.CleanString(ed.Name)
	ed.Description = core.CleanString(ed.Description)
	return validate.Struct(ed)
}
