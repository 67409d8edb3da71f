package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
)

type gradingRepository struct {
	db *DB
}

var (
	_ grading.Repository             = (*gradingRepository)(nil)
	_ enrollment.GradeSyncRepository = (*gradingRepository)(nil)
)

func NewGradingRepository(db *DB) *gradingRepository {
	return &gradingRepository{db: db}
}

// decorate must be called with the lock held.
func (repo *gradingRepository) decorate(a grading.CourseAssignment) grading.CourseAssignment {
	if tch, ok := repo.db.teachers[a.TeacherID]; ok {
		a.TeacherName = tch.FirstName + " " + tch.LastName
	}
	if c, ok := repo.db.courses[a.CourseID]; ok {
		a.CourseName = c.Name
	}
	return a
}

func (repo *gradingRepository) CreateAssignment(ctx context.Context, data grading.NewCourseAssignment, exec ...core.DBExecutor) (grading.CourseAssignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a := grading.CourseAssignment{
		ID:         repo.db.nextPK(),
		TeacherID:  data.TeacherID,
		CourseID:   data.CourseID,
		GroupLabel: data.GroupLabel,
		Period:     data.Period,
		StartDate:  data.StartDate,
		EndDate:    data.EndDate,
		CreatedAt:  time.Now().UTC(),
	}
	repo.db.assignments[a.ID] = &a
	return repo.decorate(a), nil
}

func (repo *gradingRepository) GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (grading.CourseAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return repo.decorate(*a), nil
	}
	return grading.CourseAssignment{}, grading.ErrNotFound
}

func (repo *gradingRepository) GetAssignmentByTuple(ctx context.Context, teacherID, courseID int, groupLabel, period string, exec ...core.DBExecutor) (grading.CourseAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.assignments {
		if a.TeacherID == teacherID && a.CourseID == courseID && a.GroupLabel == groupLabel && a.Period == period {
			return repo.decorate(*a), nil
		}
	}
	return grading.CourseAssignment{}, grading.ErrNotFound
}

func (repo *gradingRepository) QueryAllAssignments(ctx context.Context, exec ...core.DBExecutor) ([]grading.CourseAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]grading.CourseAssignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		assignments = append(assignments, repo.decorate(*a))
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (repo *gradingRepository) QueryAssignmentsForTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]grading.CourseAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]grading.CourseAssignment, 0)
	for _, a := range repo.db.assignments {
		if a.TeacherID == teacherID {
			assignments = append(assignments, repo.decorate(*a))
		}
	}
	// most recently started first, like the portal shows them
	sort.Slice(assignments, func(i, j int) bool {
		si, sj := assignments[i].StartDate, assignments[j].StartDate
		if si.Valid != sj.Valid {
			return si.Valid
		}
		if si.Valid && !si.Time.Equal(sj.Time) {
			return si.Time.After(sj.Time)
		}
		return assignments[i].ID < assignments[j].ID
	})
	return assignments, nil
}

func (repo *gradingRepository) UpdateAssignment(ctx context.Context, id int, data grading.UpdateCourseAssignment, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.assignments[id]
	if !ok {
		return grading.ErrNotFound
	}
	a.TeacherID = data.TeacherID
	a.CourseID = data.CourseID
	a.GroupLabel = data.GroupLabel
	a.Period = data.Period
	a.StartDate = data.StartDate
	a.EndDate = data.EndDate
	return nil
}

func (repo *gradingRepository) DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return grading.ErrNotFound
	}
	delete(repo.db.assignments, id)
	return nil
}

func (repo *gradingRepository) CountGradeRecords(ctx context.Context, assignmentID int, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, rec := range repo.db.gradeRecords {
		if rec.CourseAssignmentID == assignmentID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *gradingRepository) DeleteGradeRecordsForAssignment(ctx context.Context, assignmentID int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, rec := range repo.db.gradeRecords {
		if rec.CourseAssignmentID == assignmentID {
			delete(repo.db.gradeRecords, id)
		}
	}
	return nil
}

func (repo *gradingRepository) UpsertGradeRecord(ctx context.Context, studentID, assignmentID, grade int, comment string, exec ...core.DBExecutor) (grading.GradeRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec := repo.upsertGradeRecord(studentID, assignmentID, grade)
	repo.db.gradeRecords[rec.ID].Comment = comment
	rec.Comment = comment
	return rec, nil
}

// upsertGradeRecord must be called with the write lock held.
func (repo *gradingRepository) upsertGradeRecord(studentID, assignmentID, grade int) grading.GradeRecord {
	for _, rec := range repo.db.gradeRecords {
		if rec.StudentID == studentID && rec.CourseAssignmentID == assignmentID {
			rec.Grade = null.IntFrom(grade)
			rec.RecordedAt = time.Now().UTC()
			return *rec
		}
	}
	rec := &grading.GradeRecord{
		ID:                 repo.db.nextPK(),
		StudentID:          studentID,
		CourseAssignmentID: assignmentID,
		Grade:              null.IntFrom(grade),
		RecordedAt:         time.Now().UTC(),
	}
	repo.db.gradeRecords[rec.ID] = rec
	return *rec
}

func (repo *gradingRepository) QueryRoster(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]grading.RosterRow, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	a, ok := repo.db.assignments[assignmentID]
	if !ok {
		return nil, grading.ErrNotFound
	}

	rows := make([]grading.RosterRow, 0)
	for _, enr := range repo.db.enrollments {
		if enr.CourseID != a.CourseID {
			continue
		}
		std, ok := repo.db.students[enr.StudentID]
		if !ok {
			continue
		}
		row := grading.RosterRow{
			StudentID:     std.ID,
			FirstName:     std.FirstName,
			LastName:      std.LastName,
			ControlNumber: std.ControlNumber,
		}
		for _, rec := range repo.db.gradeRecords {
			if rec.StudentID == std.ID && rec.CourseAssignmentID == assignmentID {
				row.Grade = rec.Grade
				break
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })
	return rows, nil
}

func (repo *gradingRepository) GetStudentContact(ctx context.Context, studentID int, exec ...core.DBExecutor) (grading.StudentContact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[studentID]; ok {
		return grading.StudentContact{FirstName: std.FirstName, LastName: std.LastName, Email: std.Email}, nil
	}
	return grading.StudentContact{}, grading.ErrRecordNotFound
}

// enrollment.GradeSyncRepository

func (repo *gradingRepository) ListCourseAssignmentIDs(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]int, 0)
	for _, a := range repo.db.assignments {
		if a.CourseID == courseID {
			ids = append(ids, a.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *gradingRepository) UpsertGradeRecordGrade(ctx context.Context, studentID, courseAssignmentID, grade int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.upsertGradeRecord(studentID, courseAssignmentID, grade)
	return nil
}

func (repo *gradingRepository) DeleteGradeRecordsForCourse(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, rec := range repo.db.gradeRecords {
		if rec.StudentID != studentID {
			continue
		}
		if a, ok := repo.db.assignments[rec.CourseAssignmentID]; ok && a.CourseID == courseID {
			delete(repo.db.gradeRecords, id)
		}
	}
	return nil
}
