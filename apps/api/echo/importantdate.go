package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/importantdate"
)

type importantDateApi struct {
	base
	svc *importantdate.Service
}

func registerImportantDateAPI(g *echo.Group, b base, svc *importantdate.Service) {
	api := importantDateApi{base: b, svc: svc}

	dg := g.Group("/important-dates")
	dg.GET("", api.query)
	dg.POST("", api.create)

	og := dg.Group("/:id", api.objectMiddleware)
	og.GET("", api.retrieve)
	og.PUT("", api.update, api.creatorMiddleware)
	og.DELETE("", api.destroy, api.creatorMiddleware)
}

// objectMiddleware loads a date the context user can see.
func (api *importantDateApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := api.ctxUser(ctx)
		if err != nil {
			return err
		}
		d, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if core.IsNotFound(err) {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding important date by ID")
		}
		if !importantdate.VisibleTo(&d, ctxUsr) {
			return errHttpNotFound
		}
		ctx.Set(contextObjectKey, d)
		return next(ctx)
	}
}

// creatorMiddleware restricts changes to the creator and admins.
func (api *importantDateApi) creatorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		d, err := getObject[importantdate.ImportantDate](ctx)
		if err != nil {
			return err
		}
		ctxUsr, err := api.ctxUser(ctx)
		if err != nil {
			return err
		}
		if d.CreatedBy != ctxUsr.ID && !ctxUsr.IsAdministrator() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

func (api *importantDateApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}

	filter := new(importantdate.QueryFilter)
	if filter.From, err = queryTime(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = queryTime(ctx, "to"); err != nil {
		return err
	}

	ds, err := api.svc.Visible(ctx.Request().Context(), ctxUsr, filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying important dates")
	}
	if ds == nil {
		ds = []importantdate.ImportantDate{}
	}
	return ctx.JSON(http.StatusOK, ds)
}

// create scopes the date after the creator's role: admin dates are global.
func (api *importantDateApi) create(ctx echo.Context) error {
	var data importantdate.NewImportantDate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewImportantDate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	d, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating important date")
	}
	api.changed(ctx.Request().Context(), "important_date", "create")
	return ctx.JSON(http.StatusCreated, d)
}

func (api *importantDateApi) retrieve(ctx echo.Context) error {
	d, err := getObject[importantdate.ImportantDate](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *importantDateApi) update(ctx echo.Context) error {
	d, err := getObject[importantdate.ImportantDate](ctx)
	if err != nil {
		return err
	}

	var data importantdate.UpdateImportantDate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateImportantDate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	d, err = api.svc.Update(ctx.Request().Context(), d.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating important date")
	}
	api.changed(ctx.Request().Context(), "important_date", "update")
	return ctx.JSON(http.StatusOK, d)
}

func (api *importantDateApi) destroy(ctx echo.Context) error {
	d, err := getObject[importantdate.ImportantDate](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), d.ID); err != nil {
		return errors.Wrap(err, "deleting important date")
	}
	api.changed(ctx.Request().Context(), "important_date", "delete")
	return ctx.NoContent(http.StatusNoContent)
}
