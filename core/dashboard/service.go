// Package dashboard aggregates the counters shown on the admin home screen.
package dashboard

import (
	"context"

	"github.com/tecliberacion/campus/core"
)

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalStudents    int `json:"total_students" db:"total_students"`
	ActiveStudents   int `json:"active_students" db:"active_students"`
	CompletedCourses int `json:"completed_courses" db:"completed_courses"`
	ScheduledExams   int `json:"scheduled_exams" db:"scheduled_exams"`
}

type Repository interface {
	GetStats(ctx context.Context, exec ...core.DBExecutor) (Stats, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	return svc.repo.GetStats(ctx)
}
