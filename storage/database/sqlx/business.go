package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
)

type businessRepository struct {
	repo
}

var _ business.Repository = (*businessRepository)(nil) // interface compliance check

func NewBusinessRepository(exec core.DBExecutor) business.Repository {
	return &businessRepository{repo{exec: exec}}
}

func (r *businessRepository) CreateBusiness(ctx context.Context, biz business.Business, exec ...core.DBExecutor) (business.Business, error) {
	q := `INSERT INTO business (id, name, timezone, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.getExec(exec).ExecContext(ctx, q, biz.ID, biz.Name, biz.Timezone, biz.CreatedAt.UTC()); err != nil {
		return business.Business{}, errors.Wrap(err, "inserting business")
	}
	return biz, nil
}

func (r *businessRepository) GetBusiness(ctx context.Context, id string) (business.Business, error) {
	var biz business.Business
	q := `SELECT id, name, timezone, created_at FROM business WHERE id = $1`
	if err := r.exec.QueryRowxContext(ctx, q, id).Scan(&biz.ID, &biz.Name, &biz.Timezone, &biz.CreatedAt); err != nil {
		return business.Business{}, trapNoRowsErr(err, business.ErrNotFound, "finding business")
	}
	biz.CreatedAt = biz.CreatedAt.UTC()
	return biz, nil
}
