package inmemdb

import (
	"context"
	"sort"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tch.ID = repo.db.nextPK()
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return *tch, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tch := range repo.db.teachers {
		if tch.Email == email {
			return *tch, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		teachers = append(teachers, *tch)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return teacher.ErrNotFound
	}
	delete(repo.db.teachers, id)
	return nil
}

func (repo *teacherRepository) CountCourseAssignments(ctx context.Context, teacherID int, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, a := range repo.db.assignments {
		if a.TeacherID == teacherID {
			cnt++
		}
	}
	return cnt, nil
}
