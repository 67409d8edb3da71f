package inmemdb

import (
	"context"
	"sort"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = repo.db.nextPK()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		switch {
		case filter.ID != 0 && std.ID == filter.ID,
			filter.ControlNumber != "" && std.ControlNumber == filter.ControlNumber,
			filter.Email != "" && std.Email == filter.Email:
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		sort.SliceStable(students, func(i, j int) bool {
			if ord.Ascending {
				return studentFieldLess(students[i], students[j], ord.Field)
			}
			return studentFieldLess(students[j], students[i], ord.Field)
		})
	}
	return students, nil
}

func studentFieldLess(a, b student.Student, field string) bool {
	switch field {
	case "first_name":
		return a.FirstName < b.FirstName
	case "last_name":
		return a.LastName < b.LastName
	case "control_number":
		return a.ControlNumber < b.ControlNumber
	case "email":
		return a.Email < b.Email
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.ID < b.ID
	}
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	for enrID, enr := range repo.db.enrollments {
		if enr.StudentID == id {
			delete(repo.db.enrollments, enrID)
		}
	}
	for enrID, enr := range repo.db.examEnrollments {
		if enr.StudentID == id {
			delete(repo.db.examEnrollments, enrID)
		}
	}
	for recID, rec := range repo.db.gradeRecords {
		if rec.StudentID == id {
			delete(repo.db.gradeRecords, recID)
		}
	}
	delete(repo.db.students, id)
	return nil
}
