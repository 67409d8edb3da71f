package grading_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
	"github.com/tecliberacion/campus/core/student"
	"github.com/tecliberacion/campus/core/teacher"
	emailsvc "github.com/tecliberacion/campus/services/email"
	inmemdb "github.com/tecliberacion/campus/storage/database/inmem"
)

var testConf = &core.Config{
	AppName:  "Campus",
	TestMode: true,
}

type fixture struct {
	db      *inmemdb.DB
	svc     *grading.Service
	enrSvc  *enrollment.Service
	teacher teacher.Teacher
	course  catalog.Course
	student student.Student
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	emailsvc.ClearSentMessages()

	db := inmemdb.NewDB()
	grdRepo := inmemdb.NewGradingRepository(db)
	enrRepo := inmemdb.NewEnrollmentRepository(db)
	mailSvc := emailsvc.NewConsoleService(testConf)

	tch, err := inmemdb.NewTeacherRepository(db).CreateTeacher(ctx, teacher.Teacher{
		FirstName: "Luis",
		LastName:  "Pérez",
		Email:     "luis@test.cd",
	})
	require.NoError(t, err)
	course, err := inmemdb.NewCatalogRepository(db).CreateCourse(ctx, catalog.Course{Name: "B1"})
	require.NoError(t, err)
	now := time.Now().UTC()
	std, err := inmemdb.NewStudentRepository(db).CreateStudent(ctx, student.Student{
		FirstName:     "Ana",
		LastName:      "García",
		ControlNumber: "ctl001",
		Email:         "ana@test.cd",
		AdminID:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)

	return &fixture{
		db:      db,
		svc:     grading.NewService(db, grdRepo, enrRepo, mailSvc, testConf),
		enrSvc:  enrollment.NewService(db, enrRepo, grdRepo),
		teacher: tch,
		course:  course,
		student: std,
	}
}

func (f *fixture) newAssignment(t *testing.T, group string) grading.CourseAssignment {
	t.Helper()
	a, err := f.svc.CreateAssignment(context.Background(), grading.NewCourseAssignment{
		TeacherID:  f.teacher.ID,
		CourseID:   f.course.ID,
		GroupLabel: group,
		Period:     "2026-1",
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) enroll(t *testing.T) {
	t.Helper()
	_, err := f.enrSvc.Assign(context.Background(), f.student.ID, f.course.ID, enrollment.CourseAssignmentData{
		Status: enrollment.StatusInProgress,
	})
	require.NoError(t, err)
}

func TestService_CreateAssignment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	a := f.newAssignment(t, "A")
	assert.NotZero(t, a.ID)
	assert.Equal(t, "B1", a.CourseName)
	assert.Equal(t, "Luis Pérez", a.TeacherName)

	t.Run("duplicate tuple is rejected", func(t *testing.T) {
		_, err := f.svc.CreateAssignment(ctx, grading.NewCourseAssignment{
			TeacherID:  f.teacher.ID,
			CourseID:   f.course.ID,
			GroupLabel: "A",
			Period:     "2026-1",
		})
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, grading.ErrDuplicateAssignment, verr.Err)
	})

	t.Run("same tuple in another period is fine", func(t *testing.T) {
		_, err := f.svc.CreateAssignment(ctx, grading.NewCourseAssignment{
			TeacherID:  f.teacher.ID,
			CourseID:   f.course.ID,
			GroupLabel: "A",
			Period:     "2026-2",
		})
		assert.NoError(t, err)
	})
}

func TestService_AssignmentDates(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	feb := null.TimeFrom(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	sep := null.TimeFrom(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	a, err := f.svc.CreateAssignment(ctx, grading.NewCourseAssignment{
		TeacherID:  f.teacher.ID,
		CourseID:   f.course.ID,
		GroupLabel: "A",
		Period:     "2026-1",
		StartDate:  feb,
	})
	require.NoError(t, err)
	require.True(t, a.StartDate.Valid)
	assert.True(t, feb.Time.Equal(a.StartDate.Time))

	b, err := f.svc.CreateAssignment(ctx, grading.NewCourseAssignment{
		TeacherID:  f.teacher.ID,
		CourseID:   f.course.ID,
		GroupLabel: "B",
		Period:     "2026-2",
		StartDate:  sep,
	})
	require.NoError(t, err)

	t.Run("updates without dates keep the originals", func(t *testing.T) {
		updated, err := f.svc.UpdateAssignment(ctx, a.ID, grading.UpdateCourseAssignment{GroupLabel: "A2"})
		require.NoError(t, err)
		require.True(t, updated.StartDate.Valid)
		assert.True(t, feb.Time.Equal(updated.StartDate.Time))
	})

	t.Run("the teacher portal lists the latest start first", func(t *testing.T) {
		groups, err := f.svc.ListAssignmentsForTeacher(ctx, f.teacher.ID)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, b.ID, groups[0].ID)
		assert.Equal(t, a.ID, groups[1].ID)
	})
}

func TestService_UpdateAssignment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.newAssignment(t, "A")
	b := f.newAssignment(t, "B")

	t.Run("zero fields keep the original values", func(t *testing.T) {
		updated, err := f.svc.UpdateAssignment(ctx, a.ID, grading.UpdateCourseAssignment{GroupLabel: "A2"})
		require.NoError(t, err)
		assert.Equal(t, "A2", updated.GroupLabel)
		assert.Equal(t, a.TeacherID, updated.TeacherID)
		assert.Equal(t, a.Period, updated.Period)
	})

	t.Run("moving onto another group's tuple is rejected", func(t *testing.T) {
		_, err := f.svc.UpdateAssignment(ctx, a.ID, grading.UpdateCourseAssignment{GroupLabel: b.GroupLabel})
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("no-op update of the same row passes the tuple check", func(t *testing.T) {
		_, err := f.svc.UpdateAssignment(ctx, b.ID, grading.UpdateCourseAssignment{})
		assert.NoError(t, err)
	})
}

func TestService_RecordGrade(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.newAssignment(t, "A")
	f.enroll(t)

	rec, err := f.svc.RecordGrade(ctx, grading.RecordGrade{
		StudentID:          f.student.ID,
		CourseAssignmentID: a.ID,
		Grade:              85,
		Comment:            "solid participation",
	})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	require.True(t, rec.Grade.Valid)
	assert.EqualValues(t, 85, rec.Grade.Int)
	assert.Equal(t, "solid participation", rec.Comment)

	t.Run("the enrollment mirrors the grade and keeps its status", func(t *testing.T) {
		enrollments, err := f.enrSvc.ListForStudent(ctx, f.student.ID)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
		require.True(t, enrollments[0].Grade.Valid)
		assert.EqualValues(t, 85, enrollments[0].Grade.Int)
		assert.Equal(t, enrollment.StatusInProgress, enrollments[0].Status)
	})

	t.Run("the student is notified", func(t *testing.T) {
		require.Len(t, emailsvc.SentMessages, 1)
		assert.Equal(t, "ana@test.cd", emailsvc.SentMessages[0].To[0].Address)
	})

	t.Run("re-recording updates the same record", func(t *testing.T) {
		rec2, err := f.svc.RecordGrade(ctx, grading.RecordGrade{
			StudentID:          f.student.ID,
			CourseAssignmentID: a.ID,
			Grade:              90,
		})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, rec2.ID)
		assert.EqualValues(t, 90, rec2.Grade.Int)
	})

	t.Run("no enrollment row is invented for an unenrolled student", func(t *testing.T) {
		other, err := inmemdb.NewStudentRepository(f.db).CreateStudent(ctx, student.Student{
			FirstName:     "Iván",
			LastName:      "Soto",
			ControlNumber: "ctl002",
			Email:         "ivan@test.cd",
			AdminID:       1,
		})
		require.NoError(t, err)

		_, err = f.svc.RecordGrade(ctx, grading.RecordGrade{
			StudentID:          other.ID,
			CourseAssignmentID: a.ID,
			Grade:              60,
		})
		require.NoError(t, err)

		enrollments, err := f.enrSvc.ListForStudent(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, enrollments)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := f.svc.RecordGrade(ctx, grading.RecordGrade{
			StudentID:          f.student.ID,
			CourseAssignmentID: 4242,
			Grade:              50,
		})
		assert.Equal(t, grading.ErrNotFound, err)
	})
}

func TestService_DeleteAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("empty group is deleted right away", func(t *testing.T) {
		f := setup(t)
		a := f.newAssignment(t, "A")

		require.NoError(t, f.svc.DeleteAssignment(ctx, a.ID, false))
		_, err := f.svc.GetAssignment(ctx, a.ID)
		assert.Equal(t, grading.ErrNotFound, err)
	})

	t.Run("a group with grade records needs confirmation", func(t *testing.T) {
		f := setup(t)
		a := f.newAssignment(t, "A")
		f.enroll(t)
		_, err := f.svc.RecordGrade(ctx, grading.RecordGrade{
			StudentID:          f.student.ID,
			CourseAssignmentID: a.ID,
			Grade:              70,
		})
		require.NoError(t, err)

		err = f.svc.DeleteAssignment(ctx, a.ID, false)
		require.True(t, core.IsConfirmationRequired(err))

		// the group survives the refused delete
		_, err = f.svc.GetAssignment(ctx, a.ID)
		require.NoError(t, err)

		// the forced retry removes the group with its records
		require.NoError(t, f.svc.DeleteAssignment(ctx, a.ID, true))
		_, err = f.svc.GetAssignment(ctx, a.ID)
		assert.Equal(t, grading.ErrNotFound, err)
	})
}

func TestService_GroupRoster(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.newAssignment(t, "A")
	f.enroll(t)

	t.Run("admin callers skip the ownership check", func(t *testing.T) {
		roster, err := f.svc.GroupRoster(ctx, a.ID, 0)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, f.student.ID, roster[0].StudentID)
		assert.Equal(t, "ctl001", roster[0].ControlNumber)
		assert.False(t, roster[0].Grade.Valid)
	})

	t.Run("the owning teacher sees the roster", func(t *testing.T) {
		_, err := f.svc.GroupRoster(ctx, a.ID, f.teacher.ID)
		assert.NoError(t, err)
	})

	t.Run("another teacher does not", func(t *testing.T) {
		_, err := f.svc.GroupRoster(ctx, a.ID, f.teacher.ID+1)
		assert.Equal(t, grading.ErrNotFound, err)
	})
}

func TestService_ExportGroupGrades(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.newAssignment(t, "A")
	f.enroll(t)

	t.Run("nothing to export before any grade is recorded", func(t *testing.T) {
		_, err := f.svc.ExportGroupGrades(ctx, a.ID, 0)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, grading.ErrNoGradesRecorded, verr.Err)
	})

	t.Run("exports the graded sheet", func(t *testing.T) {
		_, err := f.svc.RecordGrade(ctx, grading.RecordGrade{
			StudentID:          f.student.ID,
			CourseAssignmentID: a.ID,
			Grade:              92,
		})
		require.NoError(t, err)

		export, err := f.svc.ExportGroupGrades(ctx, a.ID, f.teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, "B1", export.CourseName)
		assert.Equal(t, "A", export.GroupLabel)
		require.Len(t, export.Rows, 1)
		assert.Equal(t, "ctl001", export.Rows[0].ControlNumber)
		assert.EqualValues(t, 92, export.Rows[0].Grade.Int)
	})
}
