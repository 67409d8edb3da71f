package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
)

type gradingRepository struct {
	db core.DB
}

var (
	_ grading.Repository             = (*gradingRepository)(nil)
	_ enrollment.GradeSyncRepository = (*gradingRepository)(nil)
)

func NewGradingRepository(db core.DB) *gradingRepository {
	return &gradingRepository{db: db}
}

const assignmentColumns = `
a.*, t.first_name || ' ' || t.last_name AS teacher_name, c.name AS course_name
FROM course_assignment a
JOIN teacher t ON t.id = a.teacher_id
JOIN course c ON c.id = a.course_id`

func (repo *gradingRepository) CreateAssignment(ctx context.Context, data grading.NewCourseAssignment, exec ...core.DBExecutor) (grading.CourseAssignment, error) {
	ex := getExec(repo.db, exec)
	query := `
INSERT INTO course_assignment (teacher_id, course_id, group_label, period, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	var id int
	err := ex.QueryRowxContext(ctx, query, data.TeacherID, data.CourseID, data.GroupLabel, data.Period, data.StartDate, data.EndDate).Scan(&id)
	if err != nil {
		return grading.CourseAssignment{}, errors.Wrap(err, "inserting course assignment")
	}
	return repo.GetAssignment(ctx, id, exec...)
}

func (repo *gradingRepository) GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (grading.CourseAssignment, error) {
	var assignment grading.CourseAssignment
	query := `SELECT ` + assignmentColumns + ` WHERE a.id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &assignment, query, id); err != nil {
		return grading.CourseAssignment{}, trapNoRowsErr(err, grading.ErrNotFound)
	}
	return assignment, nil
}

func (repo *gradingRepository) GetAssignmentByTuple(ctx context.Context, teacherID, courseID int, groupLabel, period string, exec ...core.DBExecutor) (grading.CourseAssignment, error) {
	var assignment grading.CourseAssignment
	query := `SELECT ` + assignmentColumns + `
WHERE a.teacher_id = $1 AND a.course_id = $2 AND a.group_label = $3 AND a.period = $4`
	err := getExec(repo.db, exec).GetContext(ctx, &assignment, query, teacherID, courseID, groupLabel, period)
	if err != nil {
		return grading.CourseAssignment{}, trapNoRowsErr(err, grading.ErrNotFound)
	}
	return assignment, nil
}

func (repo *gradingRepository) QueryAllAssignments(ctx context.Context, exec ...core.DBExecutor) ([]grading.CourseAssignment, error) {
	assignments := make([]grading.CourseAssignment, 0)
	query := `SELECT ` + assignmentColumns + ` ORDER BY a.period DESC, c.name, a.group_label`
	if err := getExec(repo.db, exec).SelectContext(ctx, &assignments, query); err != nil {
		return nil, errors.Wrap(err, "querying course assignments")
	}
	return assignments, nil
}

func (repo *gradingRepository) QueryAssignmentsForTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]grading.CourseAssignment, error) {
	assignments := make([]grading.CourseAssignment, 0)
	query := `SELECT ` + assignmentColumns + ` WHERE a.teacher_id = $1 ORDER BY a.start_date DESC NULLS LAST, a.period DESC, c.name, a.group_label`
	if err := getExec(repo.db, exec).SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying course assignments")
	}
	return assignments, nil
}

func (repo *gradingRepository) UpdateAssignment(ctx context.Context, id int, data grading.UpdateCourseAssignment, exec ...core.DBExecutor) error {
	query := `
UPDATE course_assignment
SET teacher_id = $2, course_id = $3, group_label = $4, period = $5, start_date = $6, end_date = $7
WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query, id, data.TeacherID, data.CourseID, data.GroupLabel, data.Period, data.StartDate, data.EndDate)
	if err != nil {
		return errors.Wrap(err, "updating course assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.ErrNotFound
	}
	return nil
}

func (repo *gradingRepository) DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM course_assignment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.ErrNotFound
	}
	return nil
}

func (repo *gradingRepository) CountGradeRecords(ctx context.Context, assignmentID int, exec ...core.DBExecutor) (int, error) {
	var cnt int
	query := `SELECT COUNT(*) FROM grade_record WHERE course_assignment_id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &cnt, query, assignmentID); err != nil {
		return 0, errors.Wrap(err, "counting grade records")
	}
	return cnt, nil
}

func (repo *gradingRepository) DeleteGradeRecordsForAssignment(ctx context.Context, assignmentID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM grade_record WHERE course_assignment_id = $1`, assignmentID)
	return errors.Wrap(err, "deleting grade records")
}

func (repo *gradingRepository) UpsertGradeRecord(ctx context.Context, studentID, assignmentID, grade int, comment string, exec ...core.DBExecutor) (grading.GradeRecord, error) {
	query := `
INSERT INTO grade_record (student_id, course_assignment_id, grade, comment)
VALUES ($1, $2, $3, $4)
ON CONFLICT (student_id, course_assignment_id)
DO UPDATE SET grade = EXCLUDED.grade, comment = EXCLUDED.comment, recorded_at = now()
RETURNING id, student_id, course_assignment_id, grade, comment, recorded_at`
	var rec grading.GradeRecord
	if err := getExec(repo.db, exec).GetContext(ctx, &rec, query, studentID, assignmentID, grade, comment); err != nil {
		return grading.GradeRecord{}, errors.Wrap(err, "upserting grade record")
	}
	return rec, nil
}

// QueryRoster lists the students enrolled in a group's course together with
// the grade each has in this group, if any.
func (repo *gradingRepository) QueryRoster(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]grading.RosterRow, error) {
	query := `
SELECT s.id AS student_id, s.first_name, s.last_name, s.control_number, gr.grade
FROM course_assignment a
JOIN enrollment e ON e.course_id = a.course_id
JOIN student s ON s.id = e.student_id
LEFT JOIN grade_record gr ON gr.course_assignment_id = a.id AND gr.student_id = s.id
WHERE a.id = $1
ORDER BY s.last_name, s.first_name`
	rows := make([]grading.RosterRow, 0)
	if err := getExec(repo.db, exec).SelectContext(ctx, &rows, query, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying roster")
	}
	return rows, nil
}

func (repo *gradingRepository) GetStudentContact(ctx context.Context, studentID int, exec ...core.DBExecutor) (grading.StudentContact, error) {
	var contact grading.StudentContact
	query := `SELECT first_name, last_name, email FROM student WHERE id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &contact, query, studentID); err != nil {
		return grading.StudentContact{}, trapNoRowsErr(err, grading.ErrRecordNotFound)
	}
	return contact, nil
}

// enrollment.GradeSyncRepository

func (repo *gradingRepository) ListCourseAssignmentIDs(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]int, error) {
	ids := make([]int, 0)
	query := `SELECT id FROM course_assignment WHERE course_id = $1`
	if err := getExec(repo.db, exec).SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, errors.Wrap(err, "listing course assignments")
	}
	return ids, nil
}

// UpsertGradeRecordGrade only touches the grade so that comments recorded by
// teachers survive grade propagation from the enrollment side.
func (repo *gradingRepository) UpsertGradeRecordGrade(ctx context.Context, studentID, courseAssignmentID, grade int, exec ...core.DBExecutor) error {
	query := `
INSERT INTO grade_record (student_id, course_assignment_id, grade)
VALUES ($1, $2, $3)
ON CONFLICT (student_id, course_assignment_id)
DO UPDATE SET grade = EXCLUDED.grade, recorded_at = now()`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query, studentID, courseAssignmentID, grade)
	return errors.Wrap(err, "upserting grade record")
}

func (repo *gradingRepository) DeleteGradeRecordsForCourse(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) error {
	query := `
DELETE FROM grade_record gr
USING course_assignment a
WHERE gr.course_assignment_id = a.id AND gr.student_id = $1 AND a.course_id = $2`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query, studentID, courseID)
	return errors.Wrap(err, "deleting grade records")
}
