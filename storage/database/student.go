package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/student"
)

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	query := `
INSERT INTO student (first_name, last_name, control_number, email, password_hash, admin_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := getExec(repo.db, exec).QueryRowxContext(
		ctx, query,
		std.FirstName, std.LastName, std.ControlNumber, std.Email, std.PasswordHash, std.AdminID, std.CreatedAt, std.UpdatedAt,
	).Scan(&std.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	query := `SELECT * FROM student WHERE `
	var arg interface{}
	switch {
	case filter.ID != 0:
		query += `id = $1`
		arg = filter.ID
	case filter.ControlNumber != "":
		query += `control_number = $1`
		arg = filter.ControlNumber
	case filter.Email != "":
		query += `email = $1`
		arg = filter.Email
	default:
		return student.Student{}, errors.New("empty student filter")
	}

	var std student.Student
	if err := getExec(repo.db, exec).GetContext(ctx, &std, query, arg); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	query := `SELECT * FROM student`
	if len(ordering) > 0 {
		clauses := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			clauses = append(clauses, ord.String())
		}
		query += ` ORDER BY ` + strings.Join(clauses, ", ")
	} else {
		query += ` ORDER BY created_at DESC`
	}

	students := make([]student.Student, 0)
	if err := getExec(repo.db, exec).SelectContext(ctx, &students, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	query := `
UPDATE student
SET first_name = :first_name, last_name = :last_name, email = :email, password_hash = :password_hash, updated_at = :updated_at
WHERE id = :id`
	res, err := getExec(repo.db, exec).NamedExecContext(ctx, query, std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	ex := getExec(repo.db, exec)

	// grade records, enrollments and exam enrollments cascade on the FK, but
	// delete them explicitly so the intent survives schema changes.
	deps := []string{
		`DELETE FROM grade_record WHERE student_id = $1`,
		`DELETE FROM enrollment WHERE student_id = $1`,
		`DELETE FROM exam_enrollment WHERE student_id = $1`,
	}
	for _, query := range deps {
		if _, err := ex.ExecContext(ctx, query, id); err != nil {
			return errors.Wrap(err, "deleting student dependents")
		}
	}

	res, err := ex.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
