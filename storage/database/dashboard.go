package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/dashboard"
	"github.com/tecliberacion/campus/core/enrollment"
)

type dashboardRepository struct {
	db core.DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil)

func NewDashboardRepository(db core.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) GetStats(ctx context.Context, exec ...core.DBExecutor) (dashboard.Stats, error) {
	query := `
SELECT
    (SELECT COUNT(*) FROM student)                                         AS total_students,
    (SELECT COUNT(DISTINCT student_id) FROM enrollment WHERE status = $1)  AS active_students,
    (SELECT COUNT(*) FROM enrollment WHERE status = $2)                    AS completed_courses,
    (SELECT COUNT(*) FROM exam_enrollment WHERE status = $3)               AS scheduled_exams`
	var stats dashboard.Stats
	err := getExec(repo.db, exec).GetContext(
		ctx, &stats, query,
		enrollment.StatusInProgress, enrollment.StatusCompleted, enrollment.ExamStatusScheduled,
	)
	if err != nil {
		return dashboard.Stats{}, errors.Wrap(err, "querying stats")
	}
	return stats, nil
}
