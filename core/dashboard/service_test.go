package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/dashboard"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/student"
	inmemdb "github.com/tecliberacion/campus/storage/database/inmem"
)

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := dashboard.NewService(inmemdb.NewDashboardRepository(db))
	enrSvc := enrollment.NewService(db, inmemdb.NewEnrollmentRepository(db), inmemdb.NewGradingRepository(db))
	stdRepo := inmemdb.NewStudentRepository(db)
	catRepo := inmemdb.NewCatalogRepository(db)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Stats{}, stats)

	now := time.Now().UTC()
	var students []student.Student
	for _, ctl := range []string{"ctl001", "ctl002", "ctl003"} {
		std, err := stdRepo.CreateStudent(ctx, student.Student{
			FirstName:     "Ana",
			LastName:      "García",
			ControlNumber: ctl,
			Email:         ctl + "@test.cd",
			AdminID:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		require.NoError(t, err)
		students = append(students, std)
	}
	courseA, err := catRepo.CreateCourse(ctx, catalog.Course{Name: "A1"})
	require.NoError(t, err)
	courseB, err := catRepo.CreateCourse(ctx, catalog.Course{Name: "B1"})
	require.NoError(t, err)
	exam, err := catRepo.CreateExam(ctx, catalog.Exam{Name: "TOEFL"})
	require.NoError(t, err)

	// one active student with two courses in progress, one with a completed
	// course, one idle; one scheduled exam
	for _, courseID := range []int{courseA.ID, courseB.ID} {
		_, err = enrSvc.Assign(ctx, students[0].ID, courseID, enrollment.CourseAssignmentData{Status: enrollment.StatusInProgress})
		require.NoError(t, err)
	}
	grade := 90
	_, err = enrSvc.Assign(ctx, students[1].ID, courseA.ID, enrollment.CourseAssignmentData{
		Status: enrollment.StatusCompleted,
		Grade:  &grade,
	})
	require.NoError(t, err)
	_, err = enrSvc.AssignExam(ctx, students[2].ID, exam.ID, enrollment.ExamAssignmentData{Status: enrollment.ExamStatusScheduled})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Stats{
		TotalStudents:    3,
		ActiveStudents:   1, // distinct students, not rows
		CompletedCourses: 1,
		ScheduledExams:   1,
	}, stats)
}
