package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/group"
)

type actionItemApi struct {
	base
	svc    *actionitem.Service
	groups *group.Service
}

func registerActionItemAPI(g *echo.Group, b base, svc *actionitem.Service, groups *group.Service) {
	api := actionItemApi{base: b, svc: svc, groups: groups}

	ag := g.Group("/action-items")
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.POST("/assign", api.assign, staffMiddleware(b.users))

	dg := ag.Group("/:id", objectMiddleware(&api.base, svc.GetByID, func(ai *actionitem.ActionItem) string { return ai.UserID }))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/complete", api.complete)
	dg.PUT("/struggling", api.struggling)
}

func (api *actionItemApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	userIDs, ok, err := api.scopeUserIDs(ctx, ctxUsr, queryStrings(ctx, "user_id"))
	if err != nil {
		return err
	}
	if !ok {
		return ctx.JSON(http.StatusOK, []actionitem.ActionItem{})
	}

	filter := &actionitem.QueryFilter{UserIDs: userIDs, GroupID: queryString(ctx, "group_id")}
	if filter.Completed, err = queryBool(ctx, "completed"); err != nil {
		return err
	}
	if filter.Struggling, err = queryBool(ctx, "struggling"); err != nil {
		return err
	}

	items, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying action items")
	}
	if items == nil {
		items = []actionitem.ActionItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *actionItemApi) create(ctx echo.Context) error {
	var data actionitem.NewActionItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActionItem")
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

	ai, err := api.svc.Create(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating action item")
	}
	api.changed(ctx.Request().Context(), "action_item", "create")
	return ctx.JSON(http.StatusCreated, ai)
}

// assign gives the same item to several students and/or the members of a group.
func (api *actionItemApi) assign(ctx echo.Context) error {
	var data actionitem.AssignItems
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignItems")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	for _, id := range data.UserIDs {
		if _, err = api.checkStudent(ctx, ctxUsr, id); err != nil {
			if err == errHttpNotFound {
				return core.NewValidationError(nil, core.FieldError{Field: "user_ids", Error: "unknown student " + id})
			}
			return err
		}
	}
	if data.GroupID != "" {
		grp, err := api.groups.GetByID(ctx.Request().Context(), data.GroupID)
		if err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "finding group")
		}
		if err != nil || !(ctxUsr.IsAdministrator() || grp.AdvisorID == ctxUsr.ID) {
			return core.NewValidationError(nil, core.FieldError{Field: "group_id", Error: "unknown group"})
		}
	}

	items, err := api.svc.Assign(ctx.Request().Context(), data, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "assigning action items")
	}
	api.changed(ctx.Request().Context(), "action_item", "assign")
	return ctx.JSON(http.StatusCreated, items)
}

func (api *actionItemApi) retrieve(ctx echo.Context) error {
	ai, err := getObject[actionitem.ActionItem](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ai)
}

func (api *actionItemApi) update(ctx echo.Context) error {
	ai, err := getObject[actionitem.ActionItem](ctx)
	if err != nil {
		return err
	}

	var data actionitem.UpdateActionItem
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActionItem")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ai, err = api.svc.UpdateText(ctx.Request().Context(), ai.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating action item")
	}
	api.changed(ctx.Request().Context(), "action_item", "update")
	return ctx.JSON(http.StatusOK, ai)
}

func (api *actionItemApi) complete(ctx echo.Context) error {
	return api.setFlag(ctx, "complete", api.svc.SetCompleted)
}

func (api *actionItemApi) struggling(ctx echo.Context) error {
	return api.setFlag(ctx, "struggling", api.svc.SetStruggling)
}

func (api *actionItemApi) setFlag(ctx echo.Context, operation string, set func(ctx context.Context, id string, value bool) (actionitem.ActionItem, error)) error {
	ai, err := getObject[actionitem.ActionItem](ctx)
	if err != nil {
		return err
	}

	var data actionitem.SetFlag
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetFlag")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	ai, err = set(ctx.Request().Context(), ai.ID, *data.Value)
	if err != nil {
		return errors.Wrapf(err, "setting %s", operation)
	}
	api.changed(ctx.Request().Context(), "action_item", operation)
	return ctx.JSON(http.StatusOK, ai)
}

func (api *actionItemApi) destroy(ctx echo.Context) error {
	ai, err := getObject[actionitem.ActionItem](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ai.ID); err != nil {
		return errors.Wrap(err, "deleting action item")
	}
	api.changed(ctx.Request().Context(), "action_item", "delete")
	return ctx.NoContent(http.StatusNoContent)
}
