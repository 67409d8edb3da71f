package enrollment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/batch"
)

var (
	ErrNotFound        = errors.New("enrollment not found")
	ErrExamNotFound    = errors.New("exam enrollment not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrCourseNotFound  = errors.New("course not found")
)

type Repository interface {
	// StudentExists reports whether a student row exists. Bulk operations use
	// it instead of relying on a failing INSERT, which would poison the
	// surrounding transaction.
	StudentExists(ctx context.Context, studentID int, exec ...core.DBExecutor) (bool, error)
	CourseExists(ctx context.Context, courseID int, exec ...core.DBExecutor) (bool, error)

	// UpsertEnrollment inserts or updates the (student, course) row and
	// returns it.
	UpsertEnrollment(ctx context.Context, studentID, courseID int, data CourseAssignmentData, exec ...core.DBExecutor) (Enrollment, error)
	GetEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (Enrollment, error)
	UpdateEnrollment(ctx context.Context, id int, data CourseAssignmentData, exec ...core.DBExecutor) error
	// DeleteEnrollment removes the (student, course) row and returns the
	// number of rows affected. Zero means the pair was not enrolled.
	DeleteEnrollment(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (int64, error)
	DeleteEnrollmentByID(ctx context.Context, id int, exec ...core.DBExecutor) error
	QueryEnrollmentsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Enrollment, error)
	// GetCurrentEnrollment returns the student's "En curso" enrollment, if
	// any, for the dashboard snippet on the profile screen.
	GetCurrentEnrollment(ctx context.Context, studentID int, exec ...core.DBExecutor) (Enrollment, error)

	UpsertExamEnrollment(ctx context.Context, studentID, examID int, data ExamAssignmentData, exec ...core.DBExecutor) (ExamEnrollment, error)
	GetExamEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (ExamEnrollment, error)
	UpdateExamEnrollment(ctx context.Context, id int, data ExamAssignmentData, exec ...core.DBExecutor) error
	DeleteExamEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) error
	QueryExamEnrollmentsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]ExamEnrollment, error)
}

// GradeSyncRepository is the slice of the grading storage the bulk engine
// needs: when a bulk assignment completes a course with a grade, the grade is
// propagated to every group record of that course, and removing a course
// clears them.
type GradeSyncRepository interface {
	ListCourseAssignmentIDs(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]int, error)
	UpsertGradeRecordGrade(ctx context.Context, studentID, courseAssignmentID, grade int, exec ...core.DBExecutor) error
	DeleteGradeRecordsForCourse(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) error
}

type Service struct {
	db     core.DB
	repo   Repository
	grades GradeSyncRepository
}

func NewService(db core.DB, repo Repository, grades GradeSyncRepository) *Service {
	return &Service{db: db, repo: repo, grades: grades}
}

// Assign enrolls a student in a course, updating the row if the pair already
// exists.
func (svc *Service) Assign(ctx context.Context, studentID, courseID int, data CourseAssignmentData) (Enrollment, error) {
	var enr Enrollment
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		ok, err := svc.repo.StudentExists(ctx, studentID, tx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStudentNotFound
		}
		ok, err = svc.repo.CourseExists(ctx, courseID, tx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCourseNotFound
		}
		enr, err = svc.repo.UpsertEnrollment(ctx, studentID, courseID, data, tx)
		if err != nil {
			return err
		}
		return svc.syncGrades(ctx, studentID, courseID, data.Status, data.Grade, tx)
	})
	return enr, err
}

// AssignExam enrolls a student in an exam, updating the row if the pair
// already exists.
func (svc *Service) AssignExam(ctx context.Context, studentID, examID int, data ExamAssignmentData) (ExamEnrollment, error) {
	ok, err := svc.repo.StudentExists(ctx, studentID)
	if err != nil {
		return ExamEnrollment{}, err
	}
	if !ok {
		return ExamEnrollment{}, ErrStudentNotFound
	}
	return svc.repo.UpsertExamEnrollment(ctx, studentID, examID, data)
}

func (svc *Service) Update(ctx context.Context, id int, data CourseAssignmentData) (Enrollment, error) {
	var enr Enrollment
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		orig, err := svc.repo.GetEnrollment(ctx, id, tx)
		if err != nil {
			return err
		}
		if err = svc.repo.UpdateEnrollment(ctx, id, data, tx); err != nil {
			return err
		}
		if err = svc.syncGrades(ctx, orig.StudentID, orig.CourseID, data.Status, data.Grade, tx); err != nil {
			return err
		}
		enr, err = svc.repo.GetEnrollment(ctx, id, tx)
		return err
	})
	return enr, err
}

func (svc *Service) UpdateExam(ctx context.Context, id int, data ExamAssignmentData) (ExamEnrollment, error) {
	if err := svc.repo.UpdateExamEnrollment(ctx, id, data); err != nil {
		return ExamEnrollment{}, err
	}
	return svc.repo.GetExamEnrollment(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		enr, err := svc.repo.GetEnrollment(ctx, id, tx)
		if err != nil {
			return err
		}
		if err = svc.grades.DeleteGradeRecordsForCourse(ctx, enr.StudentID, enr.CourseID, tx); err != nil {
			return err
		}
		return svc.repo.DeleteEnrollmentByID(ctx, id, tx)
	})
}

func (svc *Service) DeleteExam(ctx context.Context, id int) error {
	return svc.repo.DeleteExamEnrollment(ctx, id)
}

func (svc *Service) ListForStudent(ctx context.Context, studentID int) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsForStudent(ctx, studentID)
}

func (svc *Service) ListExamsForStudent(ctx context.Context, studentID int) ([]ExamEnrollment, error) {
	return svc.repo.QueryExamEnrollmentsForStudent(ctx, studentID)
}

func (svc *Service) CurrentForStudent(ctx context.Context, studentID int) (Enrollment, error) {
	return svc.repo.GetCurrentEnrollment(ctx, studentID)
}

// BulkAssign assigns one course to many students in a single transaction.
// Unknown student IDs are recorded as per-row failures and skipped; rows for
// already enrolled students are updated rather than rejected, so re-running
// the same request reports them as successes. Any other error aborts the
// whole batch.
func (svc *Service) BulkAssign(ctx context.Context, data BulkCourseAssignment) (batch.Result, error) {
	acc := batch.NewAccumulator()

	rowData := CourseAssignmentData{
		Status:    data.Status,
		Grade:     data.Grade,
		StartDate: data.StartDate,
		EndDate:   data.EndDate,
	}
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		ok, err := svc.repo.CourseExists(ctx, data.CourseID, tx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCourseNotFound
		}

		for _, studentID := range data.StudentIDs {
			err = acc.Do(batch.Detail{StudentID: studentID}, func() error {
				ok, err := svc.repo.StudentExists(ctx, studentID, tx)
				if err != nil {
					return err
				}
				if !ok {
					return batch.Recoverable(ErrStudentNotFound)
				}
				if _, err = svc.repo.UpsertEnrollment(ctx, studentID, data.CourseID, rowData, tx); err != nil {
					return err
				}
				return svc.syncGrades(ctx, studentID, data.CourseID, data.Status, data.Grade, tx)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return batch.Result{}, err
	}
	return acc.Result(), nil
}

// BulkRemove unassigns one course from many students in a single transaction.
// Students who were not enrolled are recorded as per-row failures; their
// removal is a no-op either way.
func (svc *Service) BulkRemove(ctx context.Context, data BulkCourseRemoval) (batch.Result, error) {
	acc := batch.NewAccumulator()

	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		for _, studentID := range data.StudentIDs {
			err := acc.Do(batch.Detail{StudentID: studentID}, func() error {
				n, err := svc.repo.DeleteEnrollment(ctx, studentID, data.CourseID, tx)
				if err != nil {
					return err
				}
				if n == 0 {
					return batch.Recoverable(ErrNotFound)
				}
				// the grade records go only with an enrollment that was there
				return svc.grades.DeleteGradeRecordsForCourse(ctx, studentID, data.CourseID, tx)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return batch.Result{}, err
	}
	return acc.Result(), nil
}

// syncGrades propagates a completed grade to every group record of the course
// so the teacher portal and the admin view agree.
func (svc *Service) syncGrades(ctx context.Context, studentID, courseID int, status string, grade *int, exec ...core.DBExecutor) error {
	if status != StatusCompleted || grade == nil {
		return nil
	}
	ids, err := svc.grades.ListCourseAssignmentIDs(ctx, courseID, exec...)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err = svc.grades.UpsertGradeRecordGrade(ctx, studentID, id, *grade, exec...); err != nil {
			return err
		}
	}
	return nil
}
