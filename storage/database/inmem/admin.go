package inmemdb

import (
	"context"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
)

type adminRepository struct {
	db *DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	adm.ID = repo.db.nextPK()
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if adm, ok := repo.db.admins[id]; ok {
		return *adm, nil
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) GetAdminByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, adm := range repo.db.admins {
		if adm.Email == email {
			return *adm, nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.admins[adm.ID]; !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}
