package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/goal"
)

type goalApi struct {
	base
	svc *goal.Service
}

func registerGoalAPI(g *echo.Group, b base, svc *goal.Service) {
	api := goalApi{base: b, svc: svc}

	gg := g.Group("/goals")
	gg.GET("", api.query)
	gg.POST("", api.create)

	owner := func(g *goal.Goal) string { return g.UserID }
	dg := gg.Group("/:id", objectMiddleware(&api.base, svc.GetByID, owner))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, ownerMiddleware(&api.base, owner))
}

// query lists goals with their derived status. ?status= matches the computed status,
// so "overdue" is a valid filter.
func (api *goalApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	userIDs, ok, err := api.scopeUserIDs(ctx, ctxUsr, queryStrings(ctx, "user_id"))
	if err != nil {
		return err
	}
	if !ok {
		return ctx.JSON(http.StatusOK, []goal.Item{})
	}

	filter := &goal.QueryFilter{UserIDs: userIDs, Category: queryString(ctx, "category")}
	goals, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying goals")
	}

	items := goal.NewItems(goals, core.NowFunc())
	if statuses := queryStrings(ctx, "status"); len(statuses) > 0 {
		kept := items[:0]
		for _, it := range items {
			if contains(statuses, it.ComputedStatus) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *goalApi) create(ctx echo.Context) error {
	var data goal.NewGoal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGoal")
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

	g, err := api.svc.Create(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating goal")
	}
	api.changed(ctx.Request().Context(), "goal", "create")
	return ctx.JSON(http.StatusCreated, goal.NewItem(g, core.NowFunc()))
}

func (api *goalApi) retrieve(ctx echo.Context) error {
	g, err := getObject[goal.Goal](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, goal.NewItem(g, core.NowFunc()))
}

func (api *goalApi) update(ctx echo.Context) error {
	g, err := getObject[goal.Goal](ctx)
	if err != nil {
		return err
	}

	var data goal.UpdateGoal
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGoal")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	g, err = api.svc.Update(ctx.Request().Context(), g.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating goal")
	}
	api.changed(ctx.Request().Context(), "goal", "update")
	return ctx.JSON(http.StatusOK, goal.NewItem(g, core.NowFunc()))
}

func (api *goalApi) destroy(ctx echo.Context) error {
	g, err := getObject[goal.Goal](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), g.ID); err != nil {
		return errors.Wrap(err, "deleting goal")
	}
	api.changed(ctx.Request().Context(), "goal", "delete")
	return ctx.NoContent(http.StatusNoContent)
}
