package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/calendly"
	"github.com/istudy/dashboard/core/dashboard"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/services/metrics"
)

type (
	dashboardApi struct {
		base
	}

	adminApi struct {
		base
		meetings *meeting.Service
		calendly *calendly.Service
	}

	webhookApi struct {
		base
		calendly *calendly.Service
	}

	CountResponse struct {
		Count int `json:"count"`
	}
)

func registerDashboardAPI(g *echo.Group, b base) {
	api := dashboardApi{base: b}

	dg := g.Group("/dashboard")
	dg.GET("/student/:id", api.student)
	dg.GET("/advisor", api.advisor, staffMiddleware(b.users))
	dg.GET("/admin", api.admin, adminMiddleware(b.users))
}

func (api *dashboardApi) student(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	student, err := api.checkStudent(ctx, ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}

	ov, err := api.dash.StudentOverview(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "building student overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

// advisor lists the context advisor's students, most urgent first.
// Admins pick the advisor with ?advisor_id=.
func (api *dashboardApi) advisor(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	advisorID := ctxUsr.ID
	if ctxUsr.IsAdministrator() {
		if id := queryString(ctx, "advisor_id"); id != "" {
			advisorID = id
		}
	}

	summaries, err := api.dash.AdvisorStudents(ctx.Request().Context(), advisorID)
	if err != nil {
		return errors.Wrap(err, "summarizing students")
	}
	if summaries == nil {
		summaries = []dashboard.StudentSummary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *dashboardApi) admin(ctx echo.Context) error {
	ov, err := api.dash.AdminOverview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building admin overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func registerAdminAPI(g *echo.Group, b base, meetings *meeting.Service, cal *calendly.Service) {
	api := adminApi{base: b, meetings: meetings, calendly: cal}

	ag := g.Group("/admin", adminMiddleware(b.users))
	ag.POST("/reconcile-meetings", api.reconcileMeetings)
	ag.POST("/attention-digest", api.attentionDigest)

	g.GET("/calendly/events", api.calendlyEvents, adminMiddleware(b.users))
}

// reconcileMeetings persists the missed status of lapsed meetings.
func (api *adminApi) reconcileMeetings(ctx echo.Context) error {
	n, err := api.meetings.ReconcileMissed(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "reconciling meetings")
	}
	if n > 0 {
		api.changed(ctx.Request().Context(), "meeting", "reconcile")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *adminApi) attentionDigest(ctx echo.Context) error {
	n, err := api.dash.SendAttentionDigest(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "sending attention digest")
	}
	metrics.TrackOperation("attention_digest", "send")
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *adminApi) calendlyEvents(ctx echo.Context) error {
	filter := &calendly.QueryFilter{
		Kind:         queryString(ctx, "kind"),
		InviteeEmail: core.CleanString(ctx.QueryParam("invitee_email"), true /* lower */),
	}
	var err error
	if filter.Synced, err = queryBool(ctx, "synced"); err != nil {
		return err
	}

	events, err := api.calendly.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying calendly events")
	}
	if events == nil {
		events = []calendly.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func registerWebhookAPI(g *echo.Group, b base, cal *calendly.Service) {
	api := webhookApi{base: b, calendly: cal}
	g.POST("/webhooks/calendly", api.calendlyWebhook)
}

// calendlyWebhook ingests a scheduling-widget delivery. The signature is checked when a
// signing key is configured.
func (api *webhookApi) calendlyWebhook(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}
	if key := api.conf.CalendlySigningKey; key != "" {
		header := ctx.Request().Header.Get(calendly.SignatureHeader)
		if err = calendly.VerifySignature(header, body, key, core.NowFunc()); err != nil {
			metrics.TrackError("webhook_signature")
			return err
		}
	}

	evt, err := api.calendly.Ingest(ctx.Request().Context(), body)
	if err != nil {
		return errors.Wrap(err, "ingesting calendly event")
	}
	metrics.TrackCalendlyEvent(evt.Kind, evt.Synced)
	if evt.Synced {
		api.changed(ctx.Request().Context(), "meeting", "calendly_sync")
	}
	return ctx.JSON(http.StatusOK, evt)
}
