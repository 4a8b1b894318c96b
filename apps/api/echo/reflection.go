package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core/reflection"
)

type reflectionApi struct {
	base
	svc *reflection.Service
}

func registerReflectionAPI(g *echo.Group, b base, svc *reflection.Service) {
	api := reflectionApi{base: b, svc: svc}

	rg := g.Group("/reflections")
	rg.GET("", api.query)
	rg.POST("", api.create)

	dg := rg.Group("/:id", objectMiddleware(&api.base, svc.GetByID, func(r *reflection.Reflection) string { return r.UserID }))
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
}

func (api *reflectionApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	userIDs, ok, err := api.scopeUserIDs(ctx, ctxUsr, queryStrings(ctx, "user_id"))
	if err != nil {
		return err
	}
	if !ok {
		return ctx.JSON(http.StatusOK, []reflection.Reflection{})
	}

	filter := &reflection.QueryFilter{UserIDs: userIDs, Type: queryString(ctx, "type")}
	refls, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying reflections")
	}
	if refls == nil {
		refls = []reflection.Reflection{}
	}
	return ctx.JSON(http.StatusOK, refls)
}

// create stores a journal entry. Reflections are written by students about themselves.
func (api *reflectionApi) create(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if !ctxUsr.IsStudent() {
		return errHttpForbidden
	}

	var data reflection.NewReflection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReflection")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating reflection")
	}
	api.changed(ctx.Request().Context(), "reflection", "create")
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reflectionApi) retrieve(ctx echo.Context) error {
	r, err := getObject[reflection.Reflection](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reflectionApi) destroy(ctx echo.Context) error {
	r, err := getObject[reflection.Reflection](ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if ctxUsr.ID != r.UserID && !ctxUsr.IsAdministrator() {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting reflection")
	}
	api.changed(ctx.Request().Context(), "reflection", "delete")
	return ctx.NoContent(http.StatusNoContent)
}
