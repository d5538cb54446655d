package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/grid"
	"github.com/trezcool/rota/core/schedule"
	"github.com/trezcool/rota/core/user"
)

func TestDB_InTx(t *testing.T) {
	db := Open()
	ctx := context.Background()
	bizRepo := NewBusinessRepository(db)
	usrRepo := NewUserRepository(db)
	schedRepo := NewScheduleRepository(db)

	bob, err := usrRepo.CreateUser(ctx, user.User{ID: "bob", BusinessID: "biz", Name: "Bob"})
	require.NoError(t, err)
	week := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	kept := schedule.Assignment{ID: "a1", BusinessID: "biz", WeekStart: week, Row: 0, Col: 0, Kind: grid.KindWorker, TokenID: "bob"}
	_, err = schedRepo.SaveAssignment(ctx, kept)
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		err := db.InTx(ctx, func(exec core.DBExecutor) error {
			_, err := bizRepo.CreateBusiness(ctx, business.Business{ID: "acme", Name: "Acme"}, exec)
			return err
		})
		require.NoError(t, err)
		_, err = bizRepo.GetBusiness(ctx, "acme")
		assert.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.InTx(ctx, func(exec core.DBExecutor) error {
			if _, err := bizRepo.CreateBusiness(ctx, business.Business{ID: "other", Name: "Other"}, exec); err != nil {
				return err
			}
			renamed := bob
			renamed.Name = "Robert"
			if _, err := usrRepo.UpdateUser(ctx, renamed, exec); err != nil {
				return err
			}
			// moves bob, deleting a1
			moved := kept
			moved.ID, moved.Col = "a2", 3
			if _, err := schedRepo.SaveAssignment(ctx, moved, exec); err != nil {
				return err
			}

			// written outside of the transaction
			_, err := schedRepo.CreateTemplate(ctx, schedule.ShiftTemplate{ID: "tmpl", BusinessID: "biz"})
			require.NoError(t, err)
			return boom
		})
		assert.Equal(t, boom, err)

		_, err = bizRepo.GetBusiness(ctx, "other")
		assert.Equal(t, business.ErrNotFound, err)
		usr, err := usrRepo.GetUser(ctx, user.GetFilter{ID: "bob"})
		require.NoError(t, err)
		assert.Equal(t, "Bob", usr.Name)
		assignments, err := schedRepo.QueryAssignments(ctx, "biz", week)
		require.NoError(t, err)
		assert.Equal(t, []schedule.Assignment{kept}, assignments)

		_, err = schedRepo.GetTemplate(ctx, "biz", "tmpl")
		assert.NoError(t, err)
		_, err = bizRepo.GetBusiness(ctx, "acme")
		assert.NoError(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := db.InTx(cctx, func(core.DBExecutor) error {
			called = true
			return nil
		})
		assert.Equal(t, context.Canceled, err)
		assert.False(t, called)
	})
}
