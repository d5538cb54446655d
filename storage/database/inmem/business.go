package inmemdb

import (
	"context"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
)

type businessRepository struct {
	db *DB
}

var _ business.Repository = (*businessRepository)(nil) // interface compliance check

func NewBusinessRepository(db *DB) business.Repository {
	return &businessRepository{db: db}
}

func (repo *businessRepository) CreateBusiness(ctx context.Context, biz business.Business, exec ...core.DBExecutor) (business.Business, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	record(exec, repo.db.business, biz.ID)
	repo.db.business[biz.ID] = biz
	return biz, nil
}

func (repo *businessRepository) GetBusiness(ctx context.Context, id string) (business.Business, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if biz, ok := repo.db.business[id]; ok {
		return biz, nil
	}
	return business.Business{}, business.ErrNotFound
}
