package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core/schedule"
	"github.com/trezcool/rota/core/user"
)

type scheduleApi struct {
	auth     *authenticator
	svc      schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc schedule.Service, validate *validator.Validate) {
	api := scheduleApi{auth: auth, svc: svc, validate: validate}

	sg := g.Group("/schedule", jwt)

	sg.GET("/templates", api.queryTemplates)
	sg.POST("/templates", api.createTemplate, adminMiddleware())
	sg.DELETE("/templates/:id", api.deleteTemplate, adminMiddleware())

	// every member may look at a board, only admins may change it
	sg.GET("/boards/:week", api.board)
	sg.POST("/boards/:week/drop", api.drop, adminMiddleware())
	sg.POST("/boards/:week/tap", api.tap, adminMiddleware())
}

func (api *scheduleApi) queryTemplates(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	tmpls, err := api.svc.QueryTemplates(ctx.Request().Context(), ctxUsr.BusinessID)
	if err != nil {
		return errors.Wrap(err, "querying shift templates")
	}
	return ctx.JSON(http.StatusOK, tmpls)
}

func (api *scheduleApi) createTemplate(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data schedule.NewShiftTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewShiftTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tmpl, err := api.svc.CreateTemplate(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating shift template")
	}
	return ctx.JSON(http.StatusCreated, tmpl)
}

func (api *scheduleApi) deleteTemplate(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteTemplate(ctx.Request().Context(), ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting shift template")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// openBoard returns the board of the ":week" param along with the request's user.
func (api *scheduleApi) openBoard(ctx echo.Context) (*schedule.Board, user.User, error) {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return nil, user.User{}, errors.Wrap(err, "getting context user")
	}
	week, err := bindWeek(ctx)
	if err != nil {
		return nil, user.User{}, err
	}
	b, err := api.svc.OpenBoard(ctx.Request().Context(), ctxUsr, week)
	if err != nil {
		return nil, user.User{}, errors.Wrap(err, "opening board")
	}
	return b, ctxUsr, nil
}

func (api *scheduleApi) board(ctx echo.Context) error {
	b, _, err := api.openBoard(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b.View())
}

func (api *scheduleApi) drop(ctx echo.Context) error {
	var data schedule.DropRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DropRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	b, ctxUsr, err := api.openBoard(ctx)
	if err != nil {
		return err
	}
	resp, err := b.Drop(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "dropping token")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *scheduleApi) tap(ctx echo.Context) error {
	var data schedule.TapRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TapRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	b, ctxUsr, err := api.openBoard(ctx)
	if err != nil {
		return err
	}
	view, err := b.Tap(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "clearing cell")
	}
	return ctx.JSON(http.StatusOK, view)
}
