package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/group"
	"github.com/istudy/dashboard/core/user"
)

type groupApi struct {
	base
	svc *group.Service
}

func registerGroupAPI(g *echo.Group, b base, svc *group.Service) {
	api := groupApi{base: b, svc: svc}
	staff := staffMiddleware(b.users)

	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.POST("", api.create, staff)

	dg := gg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, api.managerMiddleware)
	dg.DELETE("", api.destroy, api.managerMiddleware)
	dg.POST("/members", api.addMembers, api.managerMiddleware)
	dg.DELETE("/members/:user_id", api.removeMember, api.managerMiddleware)
}

// objectMiddleware loads a group visible to the context user: its advisor, its members and admins.
func (api *groupApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := api.ctxUser(ctx)
		if err != nil {
			return err
		}
		grp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if core.IsNotFound(err) {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding group by ID")
		}
		if !(ctxUsr.IsAdministrator() || grp.AdvisorID == ctxUsr.ID || grp.HasMember(ctxUsr.ID)) {
			return errHttpNotFound
		}
		ctx.Set(contextObjectKey, grp)
		return next(ctx)
	}
}

// managerMiddleware restricts changes to the group's advisor and admins.
func (api *groupApi) managerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		grp, err := getObject[group.ProjectGroup](ctx)
		if err != nil {
			return err
		}
		ctxUsr, err := api.ctxUser(ctx)
		if err != nil {
			return err
		}
		if grp.AdvisorID != ctxUsr.ID && !ctxUsr.IsAdministrator() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

func (api *groupApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}

	filter := &group.QueryFilter{AdvisorID: queryString(ctx, "advisor_id"), MemberID: queryString(ctx, "member_id")}
	switch {
	case ctxUsr.IsAdministrator():
	case ctxUsr.IsAdvisor():
		filter.AdvisorID = ctxUsr.ID
	default:
		filter.MemberID = ctxUsr.ID
	}

	groups, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.ProjectGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

// create stores a group led by the context advisor. Admins may name the advisor with ?advisor_id=.
func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	advisorID := ctxUsr.ID
	if id := queryString(ctx, "advisor_id"); id != "" && ctxUsr.IsAdministrator() {
		advisor, err := api.users.GetByID(ctx.Request().Context(), id)
		if err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "finding advisor")
		}
		if err != nil || !advisor.IsAdvisor() {
			return core.NewValidationError(nil, core.FieldError{Field: "advisor_id", Error: "unknown advisor"})
		}
		advisorID = advisor.ID
	}
	if err = api.checkMembers(ctx, ctxUsr, data.MemberIDs); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), advisorID, data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	api.changed(ctx.Request().Context(), "group", "create")
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	grp, err := getObject[group.ProjectGroup](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	grp, err := getObject[group.ProjectGroup](ctx)
	if err != nil {
		return err
	}

	var data group.UpdateGroup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grp, err = api.svc.Update(ctx.Request().Context(), grp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating group")
	}
	api.changed(ctx.Request().Context(), "group", "update")
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) addMembers(ctx echo.Context) error {
	grp, err := getObject[group.ProjectGroup](ctx)
	if err != nil {
		return err
	}

	var data group.Members
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Members")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if err = api.checkMembers(ctx, ctxUsr, data.UserIDs); err != nil {
		return err
	}

	grp, err = api.svc.AddMembers(ctx.Request().Context(), grp.ID, data.UserIDs...)
	if err != nil {
		return errors.Wrap(err, "adding group members")
	}
	api.changed(ctx.Request().Context(), "group", "add_members")
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	grp, err := getObject[group.ProjectGroup](ctx)
	if err != nil {
		return err
	}
	grp, err = api.svc.RemoveMember(ctx.Request().Context(), grp.ID, ctx.Param("user_id"))
	if err != nil {
		return errors.Wrap(err, "removing group member")
	}
	api.changed(ctx.Request().Context(), "group", "remove_member")
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	grp, err := getObject[group.ProjectGroup](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), grp.ID); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	api.changed(ctx.Request().Context(), "group", "delete")
	return ctx.NoContent(http.StatusNoContent)
}

// checkMembers rejects members that are not students viewer manages.
func (api *groupApi) checkMembers(ctx echo.Context, viewer user.User, ids []string) error {
	for _, id := range ids {
		if _, err := api.checkStudent(ctx, viewer, id); err != nil {
			if err == errHttpNotFound {
				return core.NewValidationError(nil, core.FieldError{Field: "member_ids", Error: "unknown student " + id})
			}
			return err
		}
	}
	return nil
}
