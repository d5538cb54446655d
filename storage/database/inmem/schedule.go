package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/grid"
	"github.com/trezcool/rota/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CreateTemplate(ctx context.Context, tmpl schedule.ShiftTemplate) (schedule.ShiftTemplate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.template[tmpl.ID] = tmpl
	return tmpl, nil
}

func (repo *scheduleRepository) QueryTemplates(ctx context.Context, businessID string) ([]schedule.ShiftTemplate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tmpls := make([]schedule.ShiftTemplate, 0)
	for _, tmpl := range repo.db.template {
		if tmpl.BusinessID == businessID {
			tmpls = append(tmpls, tmpl)
		}
	}
	sort.Slice(tmpls, func(i, j int) bool {
		a, b := tmpls[i], tmpls[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.ID < b.ID
	})
	return tmpls, nil
}

func (repo *scheduleRepository) GetTemplate(ctx context.Context, businessID, id string) (schedule.ShiftTemplate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tmpl, ok := repo.db.template[id]; ok && tmpl.BusinessID == businessID {
		return tmpl, nil
	}
	return schedule.ShiftTemplate{}, schedule.ErrTemplateNotFound
}

func (repo *scheduleRepository) DeleteTemplate(ctx context.Context, businessID, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tmpl, ok := repo.db.template[id]
	if !ok || tmpl.BusinessID != businessID {
		return schedule.ErrTemplateNotFound
	}
	record(exec, repo.db.template, id)
	delete(repo.db.template, id)
	for aid, a := range repo.db.assignment {
		if a.BusinessID == businessID && a.Kind == grid.KindShift && a.TokenID == id {
			record(exec, repo.db.assignment, aid)
			delete(repo.db.assignment, aid)
		}
	}
	return nil
}

func (repo *scheduleRepository) QueryAssignments(ctx context.Context, businessID string, weekStart time.Time) ([]schedule.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]schedule.Assignment, 0)
	for _, a := range repo.db.assignment {
		if a.BusinessID == businessID && a.WeekStart.Equal(weekStart) {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].CreatedAt.Before(assignments[j].CreatedAt) })
	return assignments, nil
}

func (repo *scheduleRepository) SaveAssignment(ctx context.Context, a schedule.Assignment, exec ...core.DBExecutor) (schedule.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, old := range repo.db.assignment {
		if old.BusinessID != a.BusinessID || !old.WeekStart.Equal(a.WeekStart) || old.Kind != a.Kind {
			continue
		}
		if (old.Row == a.Row && old.Col == a.Col) || old.TokenID == a.TokenID {
			record(exec, repo.db.assignment, id)
			delete(repo.db.assignment, id)
		}
	}
	record(exec, repo.db.assignment, a.ID)
	repo.db.assignment[a.ID] = a
	return a, nil
}

func (repo *scheduleRepository) DeleteAssignment(
	ctx context.Context,
	businessID string,
	weekStart time.Time,
	cell grid.CellID,
	kind grid.Kind,
	exec ...core.DBExecutor,
) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, a := range repo.db.assignment {
		if a.BusinessID == businessID && a.WeekStart.Equal(weekStart) && a.Kind == kind && a.Row == cell.Row && a.Col == cell.Col {
			record(exec, repo.db.assignment, id)
			delete(repo.db.assignment, id)
		}
	}
	return nil
}
