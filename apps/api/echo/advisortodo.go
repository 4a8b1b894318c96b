package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/advisortodo"
	"github.com/istudy/dashboard/services/metrics"
)

type advisorTodoApi struct {
	base
	svc *advisortodo.Service
}

func registerAdvisorTodoAPI(g *echo.Group, b base, svc *advisortodo.Service) {
	api := advisorTodoApi{base: b, svc: svc}

	tg := g.Group("/advisor-todos", staffMiddleware(b.users))
	tg.GET("", api.query)
	tg.POST("", api.create)

	dg := tg.Group("/:id", objectMiddleware(&api.base, svc.GetByID, func(td *advisortodo.Todo) string { return td.AdvisorID }))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *advisorTodoApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}

	filter := &advisortodo.QueryFilter{AdvisorID: ctxUsr.ID, StudentID: queryString(ctx, "student_id")}
	if id := queryString(ctx, "advisor_id"); id != "" && ctxUsr.IsAdministrator() {
		filter.AdvisorID = id
	}
	if filter.Completed, err = queryBool(ctx, "completed"); err != nil {
		return err
	}

	todos, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying advisor todos")
	}
	return ctx.JSON(http.StatusOK, advisortodo.NewItems(todos, core.NowFunc()))
}

func (api *advisorTodoApi) create(ctx echo.Context) error {
	var data advisortodo.NewTodo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTodo")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if err = api.checkTodoStudent(ctx, data.StudentID); err != nil {
		return err
	}

	td, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating advisor todo")
	}
	metrics.TrackOperation("advisor_todo", "create")
	return ctx.JSON(http.StatusCreated, advisortodo.NewItems([]advisortodo.Todo{td}, core.NowFunc())[0])
}

func (api *advisorTodoApi) retrieve(ctx echo.Context) error {
	td, err := getObject[advisortodo.Todo](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, advisortodo.NewItems([]advisortodo.Todo{td}, core.NowFunc())[0])
}

func (api *advisorTodoApi) update(ctx echo.Context) error {
	td, err := getObject[advisortodo.Todo](ctx)
	if err != nil {
		return err
	}

	var data advisortodo.UpdateTodo
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTodo")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if data.StudentID != nil {
		if err = api.checkTodoStudent(ctx, core.CleanString(*data.StudentID)); err != nil {
			return err
		}
	}

	td, err = api.svc.Update(ctx.Request().Context(), td.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating advisor todo")
	}
	metrics.TrackOperation("advisor_todo", "update")
	return ctx.JSON(http.StatusOK, advisortodo.NewItems([]advisortodo.Todo{td}, core.NowFunc())[0])
}

func (api *advisorTodoApi) destroy(ctx echo.Context) error {
	td, err := getObject[advisortodo.Todo](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), td.ID); err != nil {
		return errors.Wrap(err, "deleting advisor todo")
	}
	metrics.TrackOperation("advisor_todo", "delete")
	return ctx.NoContent(http.StatusNoContent)
}

// checkTodoStudent accepts an empty id or a student the context user manages.
func (api *advisorTodoApi) checkTodoStudent(ctx echo.Context, studentID string) error {
	if studentID == "" {
		return nil
	}
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if _, err = api.checkStudent(ctx, ctxUsr, studentID); err != nil {
		if err == errHttpNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "unknown student"})
		}
		return err
	}
	return nil
}
