package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
)

var (
	// errors
	ErrCourseNotFound   = errors.New("course not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrCourseNameExists = errors.New("a course with this name already exists")
	ErrExamNameExists   = errors.New("an exam with this name already exists")
	ErrCourseInUse      = errors.New("course still has enrolled students")
	ErrExamInUse        = errors.New("exam still has scheduled students")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
		GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (Course, error)
		GetCourseByName(ctx context.Context, name string, exec ...core.DBExecutor) (Course, error)
		QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
		DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountCourseEnrollments(ctx context.Context, courseID int, exec ...core.DBExecutor) (int, error)

		CreateExam(ctx context.Context, e Exam, exec ...core.DBExecutor) (Exam, error)
		GetExamByID(ctx context.Context, id int, exec ...core.DBExecutor) (Exam, error)
		GetExamByName(ctx context.Context, name string, exec ...core.DBExecutor) (Exam, error)
		QueryAllExams(ctx context.Context, exec ...core.DBExecutor) ([]Exam, error)
		UpdateExam(ctx context.Context, e Exam, exec ...core.DBExecutor) (Exam, error)
		DeleteExam(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountExamEnrollments(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Courses

func (svc *Service) CreateCourse(ctx context.Context, cd CourseData) (Course, error) {
	if _, err := svc.repo.GetCourseByName(ctx, cd.Name); err == nil {
		return Course{}, core.NewValidationError(ErrCourseNameExists, core.FieldError{Field: "name", Error: ErrCourseNameExists.Error()})
	} else if errors.Cause(err) != ErrCourseNotFound {
		return Course{}, errors.Wrap(err, "checking course name uniqueness")
	}
	return svc.repo.CreateCourse(ctx, Course{Name: cd.Name, Description: cd.Description})
}

func (svc *Service) GetCourse(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryAllCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) UpdateCourse(ctx context.Context, id int, cd CourseData) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if other, err := svc.repo.GetCourseByName(ctx, cd.Name); err == nil && other.ID != id {
		return Course{}, core.NewValidationError(ErrCourseNameExists, core.FieldError{Field: "name", Error: ErrCourseNameExists.Error()})
	} else if err != nil && errors.Cause(err) != ErrCourseNotFound {
		return Course{}, errors.Wrap(err, "checking course name uniqueness")
	}
	c.Name = cd.Name
	c.Description = cd.Description
	return svc.repo.UpdateCourse(ctx, c)
}

// DeleteCourse refuses to remove a course that still has enrollments.
// This guard is terminal: there is no force override.
func (svc *Service) DeleteCourse(ctx context.Context, id int) error {
	cnt, err := svc.repo.CountCourseEnrollments(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting enrollments")
	}
	if cnt > 0 {
		return core.NewValidationError(ErrCourseInUse)
	}
	return svc.repo.DeleteCourse(ctx, id)
}

// Exams

func (svc *Service) CreateExam(ctx context.Context, ed ExamData) (Exam, error) {
	if _, err := svc.repo.GetExamByName(ctx, ed.Name); err == nil {
		return Exam{}, core.NewValidationError(ErrExamNameExists, core.FieldError{Field: "name", Error: ErrExamNameExists.Error()})
	} else if errors.Cause(err) != ErrExamNotFound {
		return Exam{}, errors.Wrap(err, "checking exam name uniqueness")
	}
	return svc.repo.CreateExam(ctx, Exam{Name: ed.Name, Description: ed.Description})
}

func (svc *Service) GetExam(ctx context.Context, id int) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}

func (svc *Service) QueryAllExams(ctx context.Context) ([]Exam, error) {
	return svc.repo.QueryAllExams(ctx)
}

func (svc *Service) UpdateExam(ctx context.Context, id int, ed ExamData) (Exam, error) {
	e, err := svc.repo.GetExamByID(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	if other, err := svc.repo.GetExamByName(ctx, ed.Name); err == nil && other.ID != id {
		return Exam{}, core.NewValidationError(ErrExamNameExists, core.FieldError{Field: "name", Error: ErrExamNameExists.Error()})
	} else if err != nil && errors.Cause(err) != ErrExamNotFound {
		return Exam{}, errors.Wrap(err, "checking exam name uniqueness")
	}
	e.Name = ed.Name
	e.Description = ed.Description
	return svc.repo.UpdateExam(ctx, e)
}

// DeleteExam refuses to remove an exam that still has scheduled students.
func (svc *Service) DeleteExam(ctx context.Context, id int) error {
	cnt, err := svc.repo.CountExamEnrollments(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting exam enrollments")
	}
	if cnt > 0 {
		return core.NewValidationError(ErrExamInUse)
	}
	return svc.repo.DeleteExam(ctx, id)
}
