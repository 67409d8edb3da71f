package inmemdb

import (
	"context"
	"sort"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, c catalog.Course, exec ...core.DBExecutor) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *catalogRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) GetCourseByName(ctx context.Context, name string, exec ...core.DBExecutor) (catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.courses {
		if c.Name == name {
			return *c, nil
		}
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, c catalog.Course, exec ...core.DBExecutor) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return catalog.ErrCourseNotFound
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *catalogRepository) CountCourseEnrollments(ctx context.Context, courseID int, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *catalogRepository) CreateExam(ctx context.Context, e catalog.Exam, exec ...core.DBExecutor) (catalog.Exam, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = repo.db.nextPK()
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *catalogRepository) GetExamByID(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.exams[id]; ok {
		return *e, nil
	}
	return catalog.Exam{}, catalog.ErrExamNotFound
}

func (repo *catalogRepository) GetExamByName(ctx context.Context, name string, exec ...core.DBExecutor) (catalog.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, e := range repo.db.exams {
		if e.Name == name {
			return *e, nil
		}
	}
	return catalog.Exam{}, catalog.ErrExamNotFound
}

func (repo *catalogRepository) QueryAllExams(ctx context.Context, exec ...core.DBExecutor) ([]catalog.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	exams := make([]catalog.Exam, 0, len(repo.db.exams))
	for _, e := range repo.db.exams {
		exams = append(exams, *e)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].Name < exams[j].Name })
	return exams, nil
}

func (repo *catalogRepository) UpdateExam(ctx context.Context, e catalog.Exam, exec ...core.DBExecutor) (catalog.Exam, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.exams[e.ID]; !ok {
		return catalog.Exam{}, catalog.ErrExamNotFound
	}
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *catalogRepository) DeleteExam(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.exams[id]; !ok {
		return catalog.ErrExamNotFound
	}
	delete(repo.db.exams, id)
	return nil
}

func (repo *catalogRepository) CountExamEnrollments(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, enr := range repo.db.examEnrollments {
		if enr.ExamID == examID {
			cnt++
		}
	}
	return cnt, nil
}
