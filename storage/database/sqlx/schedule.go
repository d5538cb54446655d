package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/grid"
	"github.com/trezcool/rota/core/schedule"
)

type (
	templateRow struct {
		ID         string    `db:"id"`
		BusinessID string    `db:"business_id"`
		StartMin   int       `db:"start_min"`
		EndMin     int       `db:"end_min"`
		CreatedAt  time.Time `db:"created_at"`
	}

	assignmentRow struct {
		ID         string      `db:"id"`
		BusinessID string      `db:"business_id"`
		WeekStart  time.Time   `db:"week_start"`
		Row        int         `db:"row_idx"`
		Col        int         `db:"col_idx"`
		Kind       string      `db:"kind"`
		TokenID    string      `db:"token_id"`
		AssignedBy null.String `db:"assigned_by"`
		CreatedAt  time.Time   `db:"created_at"`
	}
)

func (row templateRow) template() schedule.ShiftTemplate {
	return schedule.ShiftTemplate{
		ID:         row.ID,
		BusinessID: row.BusinessID,
		Start:      grid.TimeOfDay(row.StartMin),
		End:        grid.TimeOfDay(row.EndMin),
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

func (row assignmentRow) assignment() schedule.Assignment {
	return schedule.Assignment{
		ID:         row.ID,
		BusinessID: row.BusinessID,
		WeekStart:  dateUTC(row.WeekStart),
		Row:        row.Row,
		Col:        row.Col,
		Kind:       grid.Kind(row.Kind),
		TokenID:    row.TokenID,
		AssignedBy: row.AssignedBy.String,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

// dateUTC drops the time & location parts of a DATE column.
func dateUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type scheduleRepository struct {
	repo
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(exec core.DBExecutor) schedule.Repository {
	return &scheduleRepository{repo{exec: exec}}
}

func (r *scheduleRepository) CreateTemplate(ctx context.Context, tmpl schedule.ShiftTemplate) (schedule.ShiftTemplate, error) {
	q := `INSERT INTO shift_template (id, business_id, start_min, end_min, created_at)
		VALUES (:id, :business_id, :start_min, :end_min, :created_at)`
	row := templateRow{
		ID:         tmpl.ID,
		BusinessID: tmpl.BusinessID,
		StartMin:   int(tmpl.Start),
		EndMin:     int(tmpl.End),
		CreatedAt:  tmpl.CreatedAt.UTC(),
	}
	if _, err := r.exec.NamedExecContext(ctx, q, row); err != nil {
		return schedule.ShiftTemplate{}, errors.Wrap(err, "inserting shift template")
	}
	return tmpl, nil
}

func (r *scheduleRepository) QueryTemplates(ctx context.Context, businessID string) ([]schedule.ShiftTemplate, error) {
	var rows []templateRow
	q := `SELECT id, business_id, start_min, end_min, created_at FROM shift_template
		WHERE business_id = $1 ORDER BY start_min, end_min, id`
	if err := r.exec.SelectContext(ctx, &rows, q, businessID); err != nil {
		return nil, errors.Wrap(err, "querying shift templates")
	}
	tmpls := make([]schedule.ShiftTemplate, 0, len(rows))
	for _, row := range rows {
		tmpls = append(tmpls, row.template())
	}
	return tmpls, nil
}

func (r *scheduleRepository) GetTemplate(ctx context.Context, businessID, id string) (schedule.ShiftTemplate, error) {
	var row templateRow
	q := `SELECT id, business_id, start_min, end_min, created_at FROM shift_template WHERE business_id = $1 AND id = $2`
	if err := r.exec.GetContext(ctx, &row, q, businessID, id); err != nil {
		return schedule.ShiftTemplate{}, trapNoRowsErr(err, schedule.ErrTemplateNotFound, "finding shift template")
	}
	return row.template(), nil
}

func (r *scheduleRepository) DeleteTemplate(ctx context.Context, businessID, id string, exec ...core.DBExecutor) error {
	exe := r.getExec(exec)
	q := `DELETE FROM assignment WHERE business_id = $1 AND kind = $2 AND token_id = $3`
	if _, err := exe.ExecContext(ctx, q, businessID, string(grid.KindShift), id); err != nil {
		return errors.Wrap(err, "deleting template assignments")
	}
	res, err := exe.ExecContext(ctx, `DELETE FROM shift_template WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return errors.Wrap(err, "deleting shift template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrTemplateNotFound
	}
	return nil
}

func (r *scheduleRepository) QueryAssignments(ctx context.Context, businessID string, weekStart time.Time) ([]schedule.Assignment, error) {
	var rows []assignmentRow
	q := `SELECT id, business_id, week_start, row_idx, col_idx, kind, token_id, assigned_by, created_at
		FROM assignment WHERE business_id = $1 AND week_start = $2 ORDER BY created_at, id`
	if err := r.exec.SelectContext(ctx, &rows, q, businessID, dateUTC(weekStart)); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]schedule.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.assignment())
	}
	return assignments, nil
}

func (r *scheduleRepository) SaveAssignment(ctx context.Context, a schedule.Assignment, exec ...core.DBExecutor) (schedule.Assignment, error) {
	exe := r.getExec(exec)
	week := dateUTC(a.WeekStart)

	q := `DELETE FROM assignment WHERE business_id = $1 AND week_start = $2 AND kind = $3
		AND ((row_idx = $4 AND col_idx = $5) OR token_id = $6)`
	if _, err := exe.ExecContext(ctx, q, a.BusinessID, week, string(a.Kind), a.Row, a.Col, a.TokenID); err != nil {
		return schedule.Assignment{}, errors.Wrap(err, "clearing previous assignments")
	}

	q = `INSERT INTO assignment (id, business_id, week_start, row_idx, col_idx, kind, token_id, assigned_by, created_at)
		VALUES (:id, :business_id, :week_start, :row_idx, :col_idx, :kind, :token_id, :assigned_by, :created_at)`
	row := assignmentRow{
		ID:         a.ID,
		BusinessID: a.BusinessID,
		WeekStart:  week,
		Row:        a.Row,
		Col:        a.Col,
		Kind:       string(a.Kind),
		TokenID:    a.TokenID,
		AssignedBy: null.NewString(a.AssignedBy, a.AssignedBy != ""),
		CreatedAt:  a.CreatedAt.UTC(),
	}
	if _, err := exe.NamedExecContext(ctx, q, row); err != nil {
		return schedule.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (r *scheduleRepository) DeleteAssignment(
	ctx context.Context,
	businessID string,
	weekStart time.Time,
	cell grid.CellID,
	kind grid.Kind,
	exec ...core.DBExecutor,
) error {
	q := `DELETE FROM assignment WHERE business_id = $1 AND week_start = $2 AND kind = $3 AND row_idx = $4 AND col_idx = $5`
	if _, err := r.getExec(exec).ExecContext(ctx, q, businessID, dateUTC(weekStart), string(kind), cell.Row, cell.Col); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}
