package admin

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
)

var ErrNotFound = errors.New("admin not found")

type (
	Repository interface {
		CreateAdmin(ctx context.Context, adm Admin, exec ...core.DBExecutor) (Admin, error)
		GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (Admin, error)
		GetAdminByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin, exec ...core.DBExecutor) (Admin, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id int) (Admin, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
}

// UpdateOrCreate upserts an admin account by email; used by the ops CLI.
func (svc *Service) UpdateOrCreate(ctx context.Context, name, email, pwd string) (Admin, error) {
	email = core.CleanString(email, true /* lower */)
	adm, err := svc.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Admin{}, err
		}
		adm = Admin{Email: email, CreatedAt: time.Now().UTC()}
	}
	adm.Name = core.CleanString(name)
	if err := adm.SetPassword(pwd); err != nil {
		return Admin{}, errors.Wrap(err, "setting password")
	}
	if adm.ID == 0 {
		return svc.repo.CreateAdmin(ctx, adm)
	}
	return svc.repo.UpdateAdmin(ctx, adm)
}
