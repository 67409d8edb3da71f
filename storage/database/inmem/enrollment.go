package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
)

type enrollmentRepository struct {
	db *DB
}

var (
	_ enrollment.Repository            = (*enrollmentRepository)(nil)
	_ grading.EnrollmentSyncRepository = (*enrollmentRepository)(nil)
)

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) StudentExists(ctx context.Context, studentID int, exec ...core.DBExecutor) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.students[studentID]
	return ok, nil
}

func (repo *enrollmentRepository) CourseExists(ctx context.Context, courseID int, exec ...core.DBExecutor) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.courses[courseID]
	return ok, nil
}

func (repo *enrollmentRepository) UpsertEnrollment(ctx context.Context, studentID, courseID int, data enrollment.CourseAssignmentData, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr := repo.findEnrollment(studentID, courseID)
	if enr == nil {
		enr = &enrollment.Enrollment{ID: repo.db.nextPK(), StudentID: studentID, CourseID: courseID}
		repo.db.enrollments[enr.ID] = enr
	}
	enr.Status = data.Status
	enr.Grade = null.IntFromPtr(data.Grade)
	enr.StartDate = data.StartDate
	enr.EndDate = data.EndDate
	return *enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		out := *enr
		if c, ok := repo.db.courses[enr.CourseID]; ok {
			out.CourseName = c.Name
		}
		return out, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, id int, data enrollment.CourseAssignmentData, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr, ok := repo.db.enrollments[id]
	if !ok {
		return enrollment.ErrNotFound
	}
	enr.Status = data.Status
	enr.Grade = null.IntFromPtr(data.Grade)
	enr.StartDate = data.StartDate
	enr.EndDate = data.EndDate
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if enr := repo.findEnrollment(studentID, courseID); enr != nil {
		delete(repo.db.enrollments, enr.ID)
		return 1, nil
	}
	return 0, nil
}

func (repo *enrollmentRepository) DeleteEnrollmentByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.enrollments[id]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.enrollments, id)
	return nil
}

func (repo *enrollmentRepository) QueryEnrollmentsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]enrollment.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID != studentID {
			continue
		}
		out := *enr
		if c, ok := repo.db.courses[enr.CourseID]; ok {
			out.CourseName = c.Name
		}
		enrollments = append(enrollments, out)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID > enrollments[j].ID })
	return enrollments, nil
}

func (repo *enrollmentRepository) GetCurrentEnrollment(ctx context.Context, studentID int, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.Status == enrollment.StatusInProgress {
			out := *enr
			if c, ok := repo.db.courses[enr.CourseID]; ok {
				out.CourseName = c.Name
			}
			return out, nil
		}
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UpsertEnrollmentGrade(ctx context.Context, studentID, courseID, grade int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if enr := repo.findEnrollment(studentID, courseID); enr != nil {
		enr.Grade = null.IntFrom(grade)
	}
	return nil
}

func (repo *enrollmentRepository) UpsertExamEnrollment(ctx context.Context, studentID, examID int, data enrollment.ExamAssignmentData, exec ...core.DBExecutor) (enrollment.ExamEnrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var enr *enrollment.ExamEnrollment
	for _, e := range repo.db.examEnrollments {
		if e.StudentID == studentID && e.ExamID == examID {
			enr = e
			break
		}
	}
	if enr == nil {
		enr = &enrollment.ExamEnrollment{ID: repo.db.nextPK(), StudentID: studentID, ExamID: examID}
		repo.db.examEnrollments[enr.ID] = enr
	}
	enr.Status = data.Status
	enr.Grade = null.IntFromPtr(data.Grade)
	enr.ScheduledDate = data.ScheduledDate
	return *enr, nil
}

func (repo *enrollmentRepository) GetExamEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.ExamEnrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.examEnrollments[id]; ok {
		out := *enr
		if e, ok := repo.db.exams[enr.ExamID]; ok {
			out.ExamName = e.Name
		}
		return out, nil
	}
	return enrollment.ExamEnrollment{}, enrollment.ErrExamNotFound
}

func (repo *enrollmentRepository) UpdateExamEnrollment(ctx context.Context, id int, data enrollment.ExamAssignmentData, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr, ok := repo.db.examEnrollments[id]
	if !ok {
		return enrollment.ErrExamNotFound
	}
	enr.Status = data.Status
	enr.Grade = null.IntFromPtr(data.Grade)
	enr.ScheduledDate = data.ScheduledDate
	return nil
}

func (repo *enrollmentRepository) DeleteExamEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.examEnrollments[id]; !ok {
		return enrollment.ErrExamNotFound
	}
	delete(repo.db.examEnrollments, id)
	return nil
}

func (repo *enrollmentRepository) QueryExamEnrollmentsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]enrollment.ExamEnrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]enrollment.ExamEnrollment, 0)
	for _, enr := range repo.db.examEnrollments {
		if enr.StudentID != studentID {
			continue
		}
		out := *enr
		if e, ok := repo.db.exams[enr.ExamID]; ok {
			out.ExamName = e.Name
		}
		enrollments = append(enrollments, out)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID > enrollments[j].ID })
	return enrollments, nil
}

// findEnrollment must be called with the lock held.
func (repo *enrollmentRepository) findEnrollment(studentID, courseID int) *enrollment.Enrollment {
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			return enr
		}
	}
	return nil
}
