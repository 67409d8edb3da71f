package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/catalog"
)

type catalogRepository struct {
	db core.DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db core.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Courses

func (repo *catalogRepository) CreateCourse(ctx context.Context, c catalog.Course, exec ...core.DBExecutor) (catalog.Course, error) {
	query := `INSERT INTO course (name, description) VALUES ($1, $2) RETURNING id`
	if err := getExec(repo.db, exec).QueryRowxContext(ctx, query, c.Name, c.Description).Scan(&c.ID); err != nil {
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *catalogRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Course, error) {
	var c catalog.Course
	if err := getExec(repo.db, exec).GetContext(ctx, &c, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrCourseNotFound)
	}
	return c, nil
}

func (repo *catalogRepository) GetCourseByName(ctx context.Context, name string, exec ...core.DBExecutor) (catalog.Course, error) {
	var c catalog.Course
	if err := getExec(repo.db, exec).GetContext(ctx, &c, `SELECT * FROM course WHERE name = $1`, name); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrCourseNotFound)
	}
	return c, nil
}

func (repo *catalogRepository) QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]catalog.Course, error) {
	courses := make([]catalog.Course, 0)
	if err := getExec(repo.db, exec).SelectContext(ctx, &courses, `SELECT * FROM course ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, c catalog.Course, exec ...core.DBExecutor) (catalog.Course, error) {
	query := `UPDATE course SET name = :name, description = :description WHERE id = :id`
	res, err := getExec(repo.db, exec).NamedExecContext(ctx, query, c)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	return c, nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}

func (repo *catalogRepository) CountCourseEnrollments(ctx context.Context, courseID int, exec ...core.DBExecutor) (int, error) {
	var cnt int
	query := `SELECT COUNT(*) FROM enrollment WHERE course_id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &cnt, query, courseID); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return cnt, nil
}

// Exams

func (repo *catalogRepository) CreateExam(ctx context.Context, e catalog.Exam, exec ...core.DBExecutor) (catalog.Exam, error) {
	query := `INSERT INTO exam (name, description) VALUES ($1, $2) RETURNING id`
	if err := getExec(repo.db, exec).QueryRowxContext(ctx, query, e.Name, e.Description).Scan(&e.ID); err != nil {
		return catalog.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return e, nil
}

func (repo *catalogRepository) GetExamByID(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Exam, error) {
	var e catalog.Exam
	if err := getExec(repo.db, exec).GetContext(ctx, &e, `SELECT * FROM exam WHERE id = $1`, id); err != nil {
		return catalog.Exam{}, trapNoRowsErr(err, catalog.ErrExamNotFound)
	}
	return e, nil
}

func (repo *catalogRepository) GetExamByName(ctx context.Context, name string, exec ...core.DBExecutor) (catalog.Exam, error) {
	var e catalog.Exam
	if err := getExec(repo.db, exec).GetContext(ctx, &e, `SELECT * FROM exam WHERE name = $1`, name); err != nil {
		return catalog.Exam{}, trapNoRowsErr(err, catalog.ErrExamNotFound)
	}
	return e, nil
}

func (repo *catalogRepository) QueryAllExams(ctx context.Context, exec ...core.DBExecutor) ([]catalog.Exam, error) {
	exams := make([]catalog.Exam, 0)
	if err := getExec(repo.db, exec).SelectContext(ctx, &exams, `SELECT * FROM exam ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	return exams, nil
}

func (repo *catalogRepository) UpdateExam(ctx context.Context, e catalog.Exam, exec ...core.DBExecutor) (catalog.Exam, error) {
	query := `UPDATE exam SET name = :name, description = :description WHERE id = :id`
	res, err := getExec(repo.db, exec).NamedExecContext(ctx, query, e)
	if err != nil {
		return catalog.Exam{}, errors.Wrap(err, "updating exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.Exam{}, catalog.ErrExamNotFound
	}
	return e, nil
}

func (repo *catalogRepository) DeleteExam(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM exam WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.ErrExamNotFound
	}
	return nil
}

func (repo *catalogRepository) CountExamEnrollments(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error) {
	var cnt int
	query := `SELECT COUNT(*) FROM exam_enrollment WHERE exam_id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &cnt, query, examID); err != nil {
		return 0, errors.Wrap(err, "counting exam enrollments")
	}
	return cnt, nil
}
