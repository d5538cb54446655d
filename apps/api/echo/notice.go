package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core/notice"
)

type noticeApi struct {
	auth     *authenticator
	svc      notice.Service
	validate *validator.Validate
}

func registerNoticeAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc notice.Service, validate *validator.Validate) {
	api := noticeApi{auth: auth, svc: svc, validate: validate}

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.queryAnnouncements)
	ag.POST("", api.postAnnouncement, adminMiddleware())

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.queryNotifications)
	ng.POST("/:id/read", api.markRead)
}

func (api *noticeApi) queryAnnouncements(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	anns, err := api.svc.QueryAnnouncements(ctx.Request().Context(), ctxUsr.BusinessID)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *noticeApi) postAnnouncement(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data notice.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ann, err := api.svc.PostAnnouncement(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "posting announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *noticeApi) queryNotifications(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter notice.NotificationFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to NotificationFilter")
	}
	filter.UserID = ctxUsr.ID

	notifs, err := api.svc.QueryNotifications(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *noticeApi) markRead(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notif, err := api.svc.MarkRead(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return ctx.JSON(http.StatusOK, notif)
}
