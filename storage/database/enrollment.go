package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
)

type enrollmentRepository struct {
	db core.DB
}

var (
	_ enrollment.Repository            = (*enrollmentRepository)(nil)
	_ grading.EnrollmentSyncRepository = (*enrollmentRepository)(nil)
)

func NewEnrollmentRepository(db core.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) StudentExists(ctx context.Context, studentID int, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE id = $1)`
	if err := getExec(repo.db, exec).GetContext(ctx, &exists, query, studentID); err != nil {
		return false, errors.Wrap(err, "checking student")
	}
	return exists, nil
}

func (repo *enrollmentRepository) CourseExists(ctx context.Context, courseID int, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM course WHERE id = $1)`
	if err := getExec(repo.db, exec).GetContext(ctx, &exists, query, courseID); err != nil {
		return false, errors.Wrap(err, "checking course")
	}
	return exists, nil
}

func (repo *enrollmentRepository) UpsertEnrollment(ctx context.Context, studentID, courseID int, data enrollment.CourseAssignmentData, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	query := `
INSERT INTO enrollment (student_id, course_id, grade, status, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, course_id)
DO UPDATE SET grade = EXCLUDED.grade, status = EXCLUDED.status, start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date
RETURNING id, student_id, course_id, grade, status, start_date, end_date`
	var enr enrollment.Enrollment
	err := getExec(repo.db, exec).GetContext(
		ctx, &enr, query,
		studentID, courseID, data.Grade, data.Status, data.StartDate, data.EndDate,
	)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "upserting enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	query := `
SELECT e.*, c.name AS course_name
FROM enrollment e JOIN course c ON c.id = e.course_id
WHERE e.id = $1`
	var enr enrollment.Enrollment
	if err := getExec(repo.db, exec).GetContext(ctx, &enr, query, id); err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound)
	}
	return enr, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, id int, data enrollment.CourseAssignmentData, exec ...core.DBExecutor) error {
	query := `UPDATE enrollment SET grade = $2, status = $3, start_date = $4, end_date = $5 WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query, id, data.Grade, data.Status, data.StartDate, data.EndDate)
	if err != nil {
		return errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (int64, error) {
	query := `DELETE FROM enrollment WHERE student_id = $1 AND course_id = $2`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query, studentID, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollment")
	}
	return n, nil
}

func (repo *enrollmentRepository) DeleteEnrollmentByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM enrollment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo *enrollmentRepository) QueryEnrollmentsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	query := `
SELECT e.*, c.name AS course_name
FROM enrollment e JOIN course c ON c.id = e.course_id
WHERE e.student_id = $1
ORDER BY e.start_date DESC NULLS LAST, e.id DESC`
	enrollments := make([]enrollment.Enrollment, 0)
	if err := getExec(repo.db, exec).SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) GetCurrentEnrollment(ctx context.Context, studentID int, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	query := `
SELECT e.*, c.name AS course_name
FROM enrollment e JOIN course c ON c.id = e.course_id
WHERE e.student_id = $1 AND e.status = $2
ORDER BY e.start_date DESC NULLS LAST
LIMIT 1`
	var enr enrollment.Enrollment
	if err := getExec(repo.db, exec).GetContext(ctx, &enr, query, studentID, enrollment.StatusInProgress); err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound)
	}
	return enr, nil
}

// UpsertEnrollmentGrade mirrors a group grade onto the student's enrollment,
// if one exists. The enrollment's status and dates are the admin's to manage
// and are left alone.
func (repo *enrollmentRepository) UpsertEnrollmentGrade(ctx context.Context, studentID, courseID, grade int, exec ...core.DBExecutor) error {
	query := `UPDATE enrollment SET grade = $3 WHERE student_id = $1 AND course_id = $2`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query, studentID, courseID, grade)
	return errors.Wrap(err, "updating enrollment grade")
}

// Exam enrollments

func (repo *enrollmentRepository) UpsertExamEnrollment(ctx context.Context, studentID, examID int, data enrollment.ExamAssignmentData, exec ...core.DBExecutor) (enrollment.ExamEnrollment, error) {
	query := `
INSERT INTO exam_enrollment (student_id, exam_id, grade, status, scheduled_date)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, exam_id)
DO UPDATE SET grade = EXCLUDED.grade, status = EXCLUDED.status, scheduled_date = EXCLUDED.scheduled_date
RETURNING id, student_id, exam_id, grade, status, scheduled_date`
	var enr enrollment.ExamEnrollment
	err := getExec(repo.db, exec).GetContext(
		ctx, &enr, query,
		studentID, examID, data.Grade, data.Status, data.ScheduledDate,
	)
	if err != nil {
		return enrollment.ExamEnrollment{}, errors.Wrap(err, "upserting exam enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) GetExamEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.ExamEnrollment, error) {
	query := `
SELECT ee.*, x.name AS exam_name
FROM exam_enrollment ee JOIN exam x ON x.id = ee.exam_id
WHERE ee.id = $1`
	var enr enrollment.ExamEnrollment
	if err := getExec(repo.db, exec).GetContext(ctx, &enr, query, id); err != nil {
		return enrollment.ExamEnrollment{}, trapNoRowsErr(err, enrollment.ErrExamNotFound)
	}
	return enr, nil
}

func (repo *enrollmentRepository) UpdateExamEnrollment(ctx context.Context, id int, data enrollment.ExamAssignmentData, exec ...core.DBExecutor) error {
	query := `UPDATE exam_enrollment SET grade = $2, status = $3, scheduled_date = $4 WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query, id, data.Grade, data.Status, data.ScheduledDate)
	if err != nil {
		return errors.Wrap(err, "updating exam enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrExamNotFound
	}
	return nil
}

func (repo *enrollmentRepository) DeleteExamEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM exam_enrollment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting exam enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrExamNotFound
	}
	return nil
}

func (repo *enrollmentRepository) QueryExamEnrollmentsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]enrollment.ExamEnrollment, error) {
	query := `
SELECT ee.*, x.name AS exam_name
FROM exam_enrollment ee JOIN exam x ON x.id = ee.exam_id
WHERE ee.student_id = $1
ORDER BY ee.scheduled_date DESC NULLS LAST, ee.id DESC`
	enrollments := make([]enrollment.ExamEnrollment, 0)
	if err := getExec(repo.db, exec).SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying exam enrollments")
	}
	return enrollments, nil
}
