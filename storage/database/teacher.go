package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/teacher"
)

type teacherRepository struct {
	db core.DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db core.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	query := `
INSERT INTO teacher (first_name, last_name, email, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := getExec(repo.db, exec).QueryRowxContext(
		ctx, query,
		tch.FirstName, tch.LastName, tch.Email, tch.PasswordHash, tch.CreatedAt, tch.UpdatedAt,
	).Scan(&tch.ID)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var tch teacher.Teacher
	if err := getExec(repo.db, exec).GetContext(ctx, &tch, `SELECT * FROM teacher WHERE id = $1`, id); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound)
	}
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var tch teacher.Teacher
	if err := getExec(repo.db, exec).GetContext(ctx, &tch, `SELECT * FROM teacher WHERE email = $1`, email); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound)
	}
	return tch, nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	teachers := make([]teacher.Teacher, 0)
	query := `SELECT * FROM teacher ORDER BY last_name, first_name`
	if err := getExec(repo.db, exec).SelectContext(ctx, &teachers, query); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	query := `
UPDATE teacher
SET first_name = :first_name, last_name = :last_name, email = :email, password_hash = :password_hash, updated_at = :updated_at
WHERE id = :id`
	res, err := getExec(repo.db, exec).NamedExecContext(ctx, query, tch)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return tch, nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM teacher WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}

func (repo *teacherRepository) CountCourseAssignments(ctx context.Context, teacherID int, exec ...core.DBExecutor) (int, error) {
	var cnt int
	query := `SELECT COUNT(*) FROM course_assignment WHERE teacher_id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &cnt, query, teacherID); err != nil {
		return 0, errors.Wrap(err, "counting course assignments")
	}
	return cnt, nil
}
