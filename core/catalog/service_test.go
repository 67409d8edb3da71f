package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/student"
	inmemdb "github.com/tecliberacion/campus/storage/database/inmem"
)

func setup(t *testing.T) (*catalog.Service, *enrollment.Service, *inmemdb.DB) {
	t.Helper()
	db := inmemdb.NewDB()
	catSvc := catalog.NewService(inmemdb.NewCatalogRepository(db))
	enrSvc := enrollment.NewService(db, inmemdb.NewEnrollmentRepository(db), inmemdb.NewGradingRepository(db))
	return catSvc, enrSvc, db
}

func createStudent(t *testing.T, db *inmemdb.DB) student.Student {
	t.Helper()
	now := time.Now().UTC()
	std, err := inmemdb.NewStudentRepository(db).CreateStudent(context.Background(), student.Student{
		FirstName:     "Ana",
		LastName:      "García",
		ControlNumber: "ctl001",
		Email:         "ana@test.cd",
		AdminID:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	return std
}

func TestService_Courses(t *testing.T) {
	ctx := context.Background()
	svc, enrSvc, db := setup(t)

	course, err := svc.CreateCourse(ctx, catalog.CourseData{Name: "B1", Description: "Intermediate"})
	require.NoError(t, err)
	assert.NotZero(t, course.ID)

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := svc.CreateCourse(ctx, catalog.CourseData{Name: "B1"})
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, catalog.ErrCourseNameExists, verr.Err)
	})

	t.Run("renaming onto another course's name is rejected", func(t *testing.T) {
		other, err := svc.CreateCourse(ctx, catalog.CourseData{Name: "B2"})
		require.NoError(t, err)
		_, err = svc.UpdateCourse(ctx, other.ID, catalog.CourseData{Name: "B1"})
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("keeping its own name on update is fine", func(t *testing.T) {
		updated, err := svc.UpdateCourse(ctx, course.ID, catalog.CourseData{Name: "B1", Description: "updated"})
		require.NoError(t, err)
		assert.Equal(t, "updated", updated.Description)
	})

	t.Run("a course with enrollments cannot be deleted", func(t *testing.T) {
		std := createStudent(t, db)
		_, err := enrSvc.Assign(ctx, std.ID, course.ID, enrollment.CourseAssignmentData{Status: enrollment.StatusPending})
		require.NoError(t, err)

		err = svc.DeleteCourse(ctx, course.ID)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, catalog.ErrCourseInUse, verr.Err)

		// freeing the course unblocks the delete
		enrollments, err := enrSvc.ListForStudent(ctx, std.ID)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
		require.NoError(t, enrSvc.Delete(ctx, enrollments[0].ID))
		require.NoError(t, svc.DeleteCourse(ctx, course.ID))

		_, err = svc.GetCourse(ctx, course.ID)
		assert.Equal(t, catalog.ErrCourseNotFound, err)
	})
}

func TestService_Exams(t *testing.T) {
	ctx := context.Background()
	svc, enrSvc, db := setup(t)

	exam, err := svc.CreateExam(ctx, catalog.ExamData{Name: "TOEFL"})
	require.NoError(t, err)

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := svc.CreateExam(ctx, catalog.ExamData{Name: "TOEFL"})
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, catalog.ErrExamNameExists, verr.Err)
	})

	t.Run("an exam with scheduled students cannot be deleted", func(t *testing.T) {
		std := createStudent(t, db)
		_, err := enrSvc.AssignExam(ctx, std.ID, exam.ID, enrollment.ExamAssignmentData{
			Status: enrollment.ExamStatusScheduled,
		})
		require.NoError(t, err)

		err = svc.DeleteExam(ctx, exam.ID)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, catalog.ErrExamInUse, verr.Err)
	})
}
