package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
)

type adminRepository struct {
	db core.DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db core.DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	query := `
INSERT INTO admin (name, email, password_hash, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := getExec(repo.db, exec).QueryRowxContext(ctx, query, adm.Name, adm.Email, adm.PasswordHash, adm.CreatedAt).Scan(&adm.ID)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo *adminRepository) GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (admin.Admin, error) {
	var adm admin.Admin
	if err := getExec(repo.db, exec).GetContext(ctx, &adm, `SELECT * FROM admin WHERE id = $1`, id); err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound)
	}
	return adm, nil
}

func (repo *adminRepository) GetAdminByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (admin.Admin, error) {
	var adm admin.Admin
	if err := getExec(repo.db, exec).GetContext(ctx, &adm, `SELECT * FROM admin WHERE email = $1`, email); err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound)
	}
	return adm, nil
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	query := `UPDATE admin SET name = :name, email = :email, password_hash = :password_hash WHERE id = :id`
	res, err := getExec(repo.db, exec).NamedExecContext(ctx, query, adm)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	return adm, nil
}
