package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/user"
)

type businessApi struct {
	auth     *authenticator
	svc      business.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerBusinessAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	svc business.Service,
	userSvc user.Service,
	validate *validator.Validate,
) {
	api := businessApi{auth: auth, svc: svc, userSvc: userSvc, validate: validate}

	bg := g.Group("/businesses")
	bg.POST("/register", api.register)
	bg.GET("/current", api.current, jwt)
}

// RegisterResponse logs the owner in right away.
type RegisterResponse struct {
	Business business.Business `json:"business"`
	Owner    user.User         `json:"owner"`
	Token    string            `json:"token"`
}

func (api *businessApi) register(ctx echo.Context) error {
	var data business.NewBusiness
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBusiness")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.userSvc); err != nil {
		return err
	}

	biz, owner, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering business")
	}
	token, err := api.auth.token(owner)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusCreated, RegisterResponse{Business: biz, Owner: owner, Token: token})
}

func (api *businessApi) current(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	biz, err := api.svc.GetByID(ctx.Request().Context(), ctxUsr.BusinessID)
	if err != nil {
		return errors.Wrap(err, "finding business")
	}
	return ctx.JSON(http.StatusOK, biz)
}
