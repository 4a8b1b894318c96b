package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/meeting"
)

var errNoAdvisor = core.NewValidationError(nil, core.FieldError{Field: "advisor_id", Error: "no advisor assigned"})

type meetingApi struct {
	base
	svc *meeting.Service
}

func registerMeetingAPI(g *echo.Group, b base, svc *meeting.Service) {
	api := meetingApi{base: b, svc: svc}
	staff := staffMiddleware(b.users)

	mg := g.Group("/meetings")
	mg.GET("", api.query)
	mg.POST("", api.schedule, staff)
	mg.POST("/request", api.request)

	dg := mg.Group("/:id", objectMiddleware(&api.base, svc.GetByID, func(m *meeting.Meeting) string { return m.StudentID }))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staff)
	dg.DELETE("", api.destroy, staff)
	dg.PUT("/status", api.setStatus)
	dg.PUT("/self-report", api.selfReport)
}

// query lists meetings with their effective status; ?status= matches it.
func (api *meetingApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	studentIDs, ok, err := api.scopeUserIDs(ctx, ctxUsr, queryStrings(ctx, "student_id"))
	if err != nil {
		return err
	}
	if !ok {
		return ctx.JSON(http.StatusOK, []meeting.Item{})
	}

	filter := &meeting.QueryFilter{
		StudentIDs: studentIDs,
		AdvisorID:  queryString(ctx, "advisor_id"),
		Source:     queryString(ctx, "source"),
	}
	if filter.From, err = queryTime(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = queryTime(ctx, "to"); err != nil {
		return err
	}

	meetings, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}

	items := meeting.NewItems(meetings, core.NowFunc())
	if statuses := queryStrings(ctx, "status"); len(statuses) > 0 {
		kept := items[:0]
		for _, it := range items {
			if contains(statuses, it.EffectiveStatus) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	return ctx.JSON(http.StatusOK, items)
}

// schedule books a meeting for a student. Admins book it on behalf of the student's advisor.
func (api *meetingApi) schedule(ctx echo.Context) error {
	var data meeting.NewMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeeting")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	student, err := api.checkStudent(ctx, ctxUsr, data.StudentID)
	if err != nil {
		if err == errHttpNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "unknown student"})
		}
		return err
	}
	advisorID := ctxUsr.ID
	if !ctxUsr.IsAdvisor() {
		advisorID = student.AdvisorID
	}

	m, err := api.svc.Schedule(ctx.Request().Context(), advisorID, ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "scheduling meeting")
	}
	api.changed(ctx.Request().Context(), "meeting", "schedule")
	return ctx.JSON(http.StatusCreated, meeting.NewItem(m, core.NowFunc()))
}

// request lets a student ask their advisor for a meeting.
func (api *meetingApi) request(ctx echo.Context) error {
	var data meeting.RequestMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequestMeeting")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if !ctxUsr.IsStudent() {
		return errHttpForbidden
	}
	if ctxUsr.AdvisorID == "" {
		return errNoAdvisor
	}

	m, err := api.svc.Request(ctx.Request().Context(), ctxUsr.ID, ctxUsr.AdvisorID, data)
	if err != nil {
		return errors.Wrap(err, "requesting meeting")
	}
	api.changed(ctx.Request().Context(), "meeting", "request")
	return ctx.JSON(http.StatusCreated, meeting.NewItem(m, core.NowFunc()))
}

func (api *meetingApi) retrieve(ctx echo.Context) error {
	m, err := getObject[meeting.Meeting](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, meeting.NewItem(m, core.NowFunc()))
}

func (api *meetingApi) update(ctx echo.Context) error {
	m, err := getObject[meeting.Meeting](ctx)
	if err != nil {
		return err
	}

	var data meeting.UpdateMeeting
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMeeting")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err = api.svc.Update(ctx.Request().Context(), m.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating meeting")
	}
	api.changed(ctx.Request().Context(), "meeting", "update")
	return ctx.JSON(http.StatusOK, meeting.NewItem(m, core.NowFunc()))
}

// setStatus moves a meeting along its lifecycle. Students may only cancel.
func (api *meetingApi) setStatus(ctx echo.Context) error {
	m, err := getObject[meeting.Meeting](ctx)
	if err != nil {
		return err
	}

	var data meeting.SetStatus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetStatus")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if ctxUsr.IsStudent() && data.Status != meeting.StatusCancelled {
		return errHttpForbidden
	}

	m, err = api.svc.SetStatus(ctx.Request().Context(), m.ID, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting meeting status")
	}
	api.changed(ctx.Request().Context(), "meeting", "status")
	return ctx.JSON(http.StatusOK, meeting.NewItem(m, core.NowFunc()))
}

// selfReport records whether the student attended; only the student may report.
func (api *meetingApi) selfReport(ctx echo.Context) error {
	m, err := getObject[meeting.Meeting](ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	if ctxUsr.ID != m.StudentID {
		return errHttpForbidden
	}

	var data meeting.SelfReport
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelfReport")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err = api.svc.SelfReport(ctx.Request().Context(), m.ID, *data.Attended)
	if err != nil {
		return errors.Wrap(err, "self-reporting meeting")
	}
	api.changed(ctx.Request().Context(), "meeting", "self_report")
	return ctx.JSON(http.StatusOK, meeting.NewItem(m, core.NowFunc()))
}

func (api *meetingApi) destroy(ctx echo.Context) error {
	m, err := getObject[meeting.Meeting](ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), m.ID); err != nil {
		return errors.Wrap(err, "deleting meeting")
	}
	api.changed(ctx.Request().Context(), "meeting", "delete")
	return ctx.NoContent(http.StatusNoContent)
}
