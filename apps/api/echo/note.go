package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core/note"
	"github.com/istudy/dashboard/services/metrics"
)

type noteApi struct {
	base
	svc *note.Service
}

func registerNoteAPI(g *echo.Group, b base, svc *note.Service) {
	api := noteApi{base: b, svc: svc}

	ng := g.Group("/notes")
	ng.GET("", api.query)
	ng.POST("", api.create)

	owner := func(n *note.Note) string { return n.UserID }
	dg := ng.Group("/:id", objectMiddleware(&api.base, svc.GetByID, owner))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, ownerMiddleware(&api.base, owner))
	dg.DELETE("", api.destroy, ownerMiddleware(&api.base, owner))
}

func (api *noteApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	userIDs, ok, err := api.scopeUserIDs(ctx, ctxUsr, queryStrings(ctx, "user_id"))
	if err != nil {
		return err
	}
	if !ok {
		return ctx.JSON(http.StatusOK, []note.Note{})
	}

	filter := &note.QueryFilter{UserIDs: userIDs, Search: queryString(ctx, "search")}
	if filter.Pinned, err = queryBool(ctx, "pinned"); err != nil {
		return err
	}

	notes, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *noteApi) create(ctx echo.Context) error {
	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	ownerID, err := api.ownerFor(ctx, ctxUsr)
	if err != nil {
		return err
	}

	n, err := api.svc.Create(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}
	metrics.TrackOperation("note", "create")
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) retrieve(ctx echo.Context) error {
	n, err := getObject[note.Note](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) update(ctx echo.Context) error {
	n, err := getObject[note.Note](ctx)
	if err != nil {
		return err
	}

	var data note.UpdateNote
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	n, err = api.svc.Update(ctx.Request().Context(), n.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating note")
	}
	metrics.TrackOperation("note", "update")
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	n, err := getObject[note.Note](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), n.ID); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	metrics.TrackOperation("note", "delete")
	return ctx.NoContent(http.StatusNoContent)
}
