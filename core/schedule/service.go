package schedule

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/grid"
	"github.com/trezcool/rota/core/notice"
	"github.com/trezcool/rota/core/user"
)

var (
	// errors
	ErrTemplateNotFound = errors.New("shift template not found")
	ErrInvalidTimeRange = errors.New("end must be after start")
	ErrInvalidWeek      = errors.New("week must be formatted as YYYY-MM-DD")
	ErrUnknownToken     = errors.New("token is not part of this board")
	ErrInvalidCell      = errors.New("cell is outside of the board")

	errBoardRetired = errors.New("board retired")
)

type (
	Service interface {
		CreateTemplate(ctx context.Context, actor user.User, nt NewShiftTemplate) (ShiftTemplate, error)
		QueryTemplates(ctx context.Context, businessID string) ([]ShiftTemplate, error)
		DeleteTemplate(ctx context.Context, actor user.User, id string) error
		// OpenBoard returns the board of the week starting at the Monday of weekStart.
		// Boards are cached & rebuilt whenever the business' employees or templates change.
		OpenBoard(ctx context.Context, actor user.User, weekStart time.Time) (*Board, error)
	}

	boardKey struct {
		businessID string
		week       string
	}

	service struct {
		repo      Repository
		userSvc   user.Service
		noticeSvc notice.Service
		tx        core.Transactor
		log       core.Logger
		conf      core.ScheduleConfig

		mu     sync.Mutex
		boards map[boardKey]*Board
	}
)

func NewService(
	repo Repository,
	userSvc user.Service,
	noticeSvc notice.Service,
	tx core.Transactor,
	logger core.Logger,
	conf core.ScheduleConfig,
) Service {
	return &service{
		repo:      repo,
		userSvc:   userSvc,
		noticeSvc: noticeSvc,
		tx:        tx,
		log:       logger,
		conf:      conf,
		boards:    make(map[boardKey]*Board),
	}
}

func withLabel(tmpl ShiftTemplate) ShiftTemplate {
	tmpl.Label = tmpl.Token().Label()
	return tmpl
}

func (svc *service) CreateTemplate(ctx context.Context, actor user.User, nt NewShiftTemplate) (ShiftTemplate, error) {
	if !actor.IsAdmin() {
		return ShiftTemplate{}, core.ErrPermissionDenied
	}
	tmpl, err := svc.repo.CreateTemplate(ctx, ShiftTemplate{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		Start:      nt.start,
		End:        nt.end,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return ShiftTemplate{}, err
	}
	return withLabel(tmpl), nil
}

func (svc *service) QueryTemplates(ctx context.Context, businessID string) ([]ShiftTemplate, error) {
	tmpls, err := svc.repo.QueryTemplates(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for i := range tmpls {
		tmpls[i] = withLabel(tmpls[i])
	}
	return tmpls, nil
}

func (svc *service) DeleteTemplate(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrTemplateNotFound
	}
	if _, err := svc.repo.GetTemplate(ctx, actor.BusinessID, id); err != nil {
		return err
	}
	return svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		return svc.repo.DeleteTemplate(ctx, actor.BusinessID, id, exec)
	})
}

func (svc *service) OpenBoard(ctx context.Context, actor user.User, weekStart time.Time) (*Board, error) {
	week := core.StartOfWeek(time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC))

	workers, err := svc.workerTokens(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	tmpls, err := svc.repo.QueryTemplates(ctx, actor.BusinessID)
	if err != nil {
		return nil, errors.Wrap(err, "querying shift templates")
	}
	shifts := make([]grid.ShiftToken, 0, len(tmpls))
	for _, tmpl := range tmpls {
		shifts = append(shifts, tmpl.Token())
	}
	sig := signature(workers, shifts)

	key := boardKey{businessID: actor.BusinessID, week: week.Format(WeekLayout)}
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if old, ok := svc.boards[key]; ok {
		old.mu.Lock()
		if old.sig == sig && !old.retired {
			old.mu.Unlock()
			return old, nil
		}
		// held until the new board has replayed storage, so that no change made on old is missed
		old.retired = true
		defer old.mu.Unlock()
	}
	b, err := newBoard(svc, actor.BusinessID, week, workers, shifts)
	if err != nil {
		return nil, err
	}
	b.sig = sig
	if err := b.replay(ctx); err != nil {
		return nil, err
	}
	svc.boards[key] = b
	return b, nil
}

func (svc *service) workerTokens(ctx context.Context, businessID string) ([]grid.WorkerToken, error) {
	active := true
	employees, err := svc.userSvc.Query(
		ctx,
		user.QueryFilter{BusinessID: businessID, Roles: []string{user.RoleEmployee}, IsActive: &active},
		core.DBOrdering{Field: "name", Ascending: true},
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}
	workers := make([]grid.WorkerToken, 0, len(employees))
	for _, usr := range employees {
		label := usr.JobTitle
		if label == "" {
			label = user.RoleLabel(usr.Roles)
		}
		workers = append(workers, grid.WorkerToken{ID: usr.ID, DisplayName: usr.DisplayName(), RoleLabel: label})
	}
	return workers, nil
}

// signature identifies a set of tokens, labels included.
func signature(workers []grid.WorkerToken, shifts []grid.ShiftToken) string {
	parts := make([]string, 0, len(workers)+len(shifts))
	for _, w := range workers {
		parts = append(parts, "w:"+w.ID+":"+w.DisplayName+":"+w.RoleLabel)
	}
	for _, s := range shifts {
		parts = append(parts, "s:"+s.ID+":"+s.Start.Clock()+":"+s.End.Clock())
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func (svc *service) layout() grid.Layout {
	return grid.Layout{
		OriginX:    svc.conf.OriginX,
		OriginY:    svc.conf.OriginY,
		CellWidth:  svc.conf.CellWidth,
		CellHeight: svc.conf.CellHeight,
		Gap:        svc.conf.Gap,
	}
}
