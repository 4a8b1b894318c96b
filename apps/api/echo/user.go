package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

type userApi struct {
	base
}

func registerUserAPI(g *echo.Group, b base) {
	api := userApi{base: b}

	ug := g.Group("/users")
	ug.GET("", api.query, staffMiddleware(b.users))
	ug.DELETE("", api.destroyMultiple, adminMiddleware(b.users))
	ug.GET("/roles", api.queryRoles, adminMiddleware(b.users))
	ug.GET("/advisors", api.advisors, adminMiddleware(b.users))

	// detail endpoints
	dg := ug.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware(b.users))
}

// objectMiddleware loads the user in the path for themselves, their advisor and admins.
func (api *userApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := api.ctxUser(ctx)
		if err != nil {
			return err
		}
		usr, err := api.users.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if core.IsNotFound(err) {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding user by ID")
		}
		if !ctxUsr.CanAccessStudent(usr) {
			return errHttpNotFound
		}
		ctx.Set("object", usr)
		return next(ctx)
	}
}

// Handlers

func (api *userApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	filter := &user.QueryFilter{
		Search:    queryString(ctx, "search"),
		Roles:     queryStrings(ctx, "role"),
		AdvisorID: queryString(ctx, "advisor_id"),
		IDs:       queryStrings(ctx, "id"),
	}
	if !ctxUsr.IsAdministrator() {
		// advisors only list their own students
		filter.Roles = []string{user.RoleStudent}
		filter.AdvisorID = ctxUsr.ID
	}

	users, err := api.users.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) advisors(ctx echo.Context) error {
	advisors, err := api.users.Advisors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying advisors")
	}
	if advisors == nil {
		advisors = []user.User{}
	}
	return ctx.JSON(http.StatusOK, advisors)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if !ctxUsr.IsAdministrator() {
		// users edit their own profile; role, advisor and admin rights are granted by admins
		if usr.ID != ctxUsr.ID || data.HasAdminFields() {
			return errHttpForbidden
		}
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	usr, err = api.users.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	api.changed(ctx.Request().Context(), "user", "update")
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.users.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	api.changed(ctx.Request().Context(), "user", "delete")
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	ids := queryStrings(ctx, "id")
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if contains(ids, ctxUsr.ID) {
		return errHttpForbidden
	}

	if err := api.users.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	api.changed(ctx.Request().Context(), "user", "delete")
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}
