package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
)

var (
	// errors
	ErrNotFound       = errors.New("teacher not found")
	ErrEmailExists    = errors.New("a teacher with this email already exists")
	ErrHasAssignments = errors.New("teacher still has course assignments")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (Teacher, error)
		GetTeacherByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Teacher, error)
		QueryAllTeachers(ctx context.Context, exec ...core.DBExecutor) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountCourseAssignments(ctx context.Context, teacherID int, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkEmailFree(ctx context.Context, email string, excludeID int) error {
	tch, err := svc.repo.GetTeacherByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "checking teacher email uniqueness")
	}
	if tch.ID != excludeID {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := svc.checkEmailFree(ctx, nt.Email, 0); err != nil {
		return Teacher{}, err
	}
	now := time.Now().UTC()
	tch := Teacher{
		FirstName: nt.FirstName,
		LastName:  nt.LastName,
		Email:     nt.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tch.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *Service) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if err := svc.checkEmailFree(ctx, ut.Email, id); err != nil {
		return Teacher{}, err
	}
	tch.FirstName = ut.FirstName
	tch.LastName = ut.LastName
	tch.Email = ut.Email
	tch.UpdatedAt = time.Now().UTC()
	if ut.Password != "" {
		if err := tch.SetPassword(ut.Password); err != nil {
			return Teacher{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateTeacher(ctx, tch)
}

// Delete refuses to remove a teacher that still has course assignments;
// assignments must be reassigned or deleted first.
func (svc *Service) Delete(ctx context.Context, id int) error {
	cnt, err := svc.repo.CountCourseAssignments(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting course assignments")
	}
	if cnt > 0 {
		return core.NewValidationError(ErrHasAssignments)
	}
	return svc.repo.DeleteTeacher(ctx, id)
}
