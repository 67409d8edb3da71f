package inmemdb

import (
	"context"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/dashboard"
	"github.com/tecliberacion/campus/core/enrollment"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil)

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) GetStats(ctx context.Context, exec ...core.DBExecutor) (dashboard.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stats := dashboard.Stats{TotalStudents: len(repo.db.students)}
	active := make(map[int]struct{})
	for _, enr := range repo.db.enrollments {
		switch enr.Status {
		case enrollment.StatusInProgress:
			active[enr.StudentID] = struct{}{}
		case enrollment.StatusCompleted:
			stats.CompletedCourses++
		}
	}
	stats.ActiveStudents = len(active)
	for _, enr := range repo.db.examEnrollments {
		if enr.Status == enrollment.ExamStatusScheduled {
			stats.ScheduledExams++
		}
	}
	return stats, nil
}
