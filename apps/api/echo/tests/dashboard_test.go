package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/istudy/dashboard/apps/api/echo"
	"github.com/istudy/dashboard/core/attention"
	"github.com/istudy/dashboard/core/calendly"
	"github.com/istudy/dashboard/core/dashboard"
	"github.com/istudy/dashboard/core/dates"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/services/email"
	"github.com/istudy/dashboard/tests"
)

// seedAlice gives alice an overdue goal, a struggling item, one completed and one lapsed
// meeting, an upcoming meeting and a recent reflection: two attention reasons.
func seedAlice(t *testing.T, f userFixtures) (lapsed, upcoming meeting.Meeting) {
	t.Helper()
	now := time.Now().UTC()
	testutil.CreateGoal(t, repos.Goals, f.alice.ID, "Finish thesis draft", goal.StatusActive, now.AddDate(0, 0, -3))
	testutil.CreateGoal(t, repos.Goals, f.alice.ID, "Apply for internships", goal.StatusNotStarted, now.AddDate(0, 1, 0))
	testutil.CreateActionItem(t, repos.ActionItems, f.alice.ID, "Fix the regression", false, true)
	testutil.CreateActionItem(t, repos.ActionItems, f.alice.ID, "Email the lab", true, false)
	testutil.CreateMeeting(t, repos.Meetings, f.alice.ID, f.advisor.ID, meeting.StatusCompleted, now.AddDate(0, 0, -10))
	lapsed = testutil.CreateMeeting(t, repos.Meetings, f.alice.ID, f.advisor.ID, meeting.StatusScheduled, now.AddDate(0, 0, -4))
	upcoming = testutil.CreateMeeting(t, repos.Meetings, f.alice.ID, f.advisor.ID, meeting.StatusScheduled, now.AddDate(0, 0, 3).Truncate(time.Second))
	testutil.CreateReflection(t, repos.Reflections, f.alice.ID, reflection.TypePostMeeting, "Narrowed the topic", now.AddDate(0, 0, -2))
	return lapsed, upcoming
}

func reasonCodes(r attention.Result) []string {
	codes := make([]string, 0, len(r.Reasons))
	for _, rs := range r.Reasons {
		codes = append(codes, rs.Code)
	}
	return codes
}

func Test_dashboardApi_student(t *testing.T) {
	reset(t)
	f := createUsers(t)
	_, upcoming := seedAlice(t, f)

	path := "/v1/dashboard/student/" + f.alice.ID
	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Other students are hidden", path: path, token: getToken(t, f.bob), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Other advisors are hidden", path: path, token: getToken(t, f.otherAdvisor), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Not a student", path: "/v1/dashboard/student/" + f.advisor.ID, token: getToken(t, f.admin), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	runHTTPTests(t, tests)

	for _, tc := range []struct {
		name  string
		token string
	}{
		{"self", getToken(t, f.alice)},
		{"advisor", getToken(t, f.advisor)},
		{"admin", getToken(t, f.admin)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(http.MethodGet, path, tc.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var ov dashboard.StudentOverview
			decode(t, rec, &ov)
			assert.Equal(t, f.alice.ID, ov.Student.ID)
			assert.Len(t, ov.Goals, 2)
			assert.Equal(t, 1, ov.GoalCounts[goal.StatusOverdue])
			assert.Equal(t, 1, ov.GoalCounts[goal.StatusNotStarted])
			assert.Equal(t, 1, ov.OpenActionItems)
			assert.Equal(t, 1, ov.NeedsHelp)
			assert.Len(t, ov.Meetings, 3)
			require.Len(t, ov.UpcomingMeetings, 1)
			assert.Equal(t, upcoming.ID, ov.UpcomingMeetings[0].ID)
			assert.Equal(t, 50, ov.AttendanceRate)
			assert.Len(t, ov.RecentReflections, 1)
			assert.True(t, ov.Attention.NeedsAttention)
			assert.Equal(t, attention.PriorityMedium, ov.Attention.Priority)
			assert.ElementsMatch(t, []string{attention.ReasonOverdueGoals, attention.ReasonNeedsHelp}, reasonCodes(ov.Attention))
		})
	}

	t.Run("empty student", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/dashboard/student/"+f.bob.ID, getToken(t, f.bob))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"action_items":[]`)

		var ov dashboard.StudentOverview
		decode(t, rec, &ov)
		assert.Equal(t, 0, ov.AttendanceRate)
		assert.Equal(t, attention.PriorityHigh, ov.Attention.Priority)
		assert.ElementsMatch(t,
			[]string{attention.ReasonNoReflections, attention.ReasonNoGoals, attention.ReasonNoMeetings},
			reasonCodes(ov.Attention))
	})
}

func Test_dashboardApi_advisor(t *testing.T) {
	reset(t)
	f := createUsers(t)
	seedAlice(t, f)

	t.Run("students are forbidden", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/dashboard/advisor", getToken(t, f.alice))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("most urgent first", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/dashboard/advisor", getToken(t, f.advisor))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sums []dashboard.StudentSummary
		decode(t, rec, &sums)
		require.Len(t, sums, 2)
		assert.Equal(t, f.bob.ID, sums[0].Student.ID)
		assert.Equal(t, attention.PriorityHigh, sums[0].Attention.Priority)
		assert.Nil(t, sums[0].NextMeeting)
		assert.Equal(t, f.alice.ID, sums[1].Student.ID)
		assert.Equal(t, 2, sums[1].TotalGoals)
		assert.NotNil(t, sums[1].LastReflection)
		assert.NotNil(t, sums[1].NextMeeting)
	})

	t.Run("advisor_id is ignored for advisors", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/dashboard/advisor?advisor_id="+f.otherAdvisor.ID, getToken(t, f.advisor))
		require.Equal(t, http.StatusOK, rec.Code)
		var sums []dashboard.StudentSummary
		decode(t, rec, &sums)
		assert.Len(t, sums, 2)
	})

	t.Run("admin picks the advisor", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/dashboard/advisor?advisor_id="+f.otherAdvisor.ID, getToken(t, f.admin))
		require.Equal(t, http.StatusOK, rec.Code)
		var sums []dashboard.StudentSummary
		decode(t, rec, &sums)
		require.Len(t, sums, 1)
		assert.Equal(t, f.carol.ID, sums[0].Student.ID)
	})

	t.Run("admin without students", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/dashboard/advisor", getToken(t, f.admin))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func Test_dashboardApi_admin(t *testing.T) {
	reset(t)
	f := createUsers(t)
	seedAlice(t, f)
	testutil.CreateUser(t, repos.Users, "Dave", "dave@uni.edu", user.RoleStudent, "")

	rec := do(http.MethodGet, "/v1/dashboard/admin", getToken(t, f.advisor))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(http.MethodGet, "/v1/dashboard/admin", getToken(t, f.admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ov dashboard.AdminOverview
	decode(t, rec, &ov)
	assert.Equal(t, 4, ov.Counts.Students)
	assert.Equal(t, 2, ov.Counts.Advisors)
	assert.Equal(t, 1, ov.Counts.UnassignedStudents)
	assert.Equal(t, 1, ov.Counts.Goals[goal.StatusOverdue])
	assert.Equal(t, 1, ov.Counts.MissedMeetings)
	assert.Equal(t, 50, ov.Counts.AttendanceRate)
	assert.False(t, ov.GeneratedAt.IsZero())

	names := make([]string, 0, len(ov.NeedsAttention))
	for _, s := range ov.NeedsAttention {
		names = append(names, s.Student.Name)
	}
	assert.Equal(t, []string{"Bob", "Carol", "Dave", "Alice"}, names)
}

func Test_dashboardApi_adminExcludesAdmins(t *testing.T) {
	reset(t)

	admin, err := svcs.Users.SignIn(context.Background(), user.Identity{Email: "admin@uni.edu", Name: "Boss"})
	require.NoError(t, err)
	promoted := testutil.CreateUser(t, repos.Users, "Pat", "pat@uni.edu", user.RoleStudent, "")
	_, err = svcs.Users.Promote(context.Background(), promoted.Email)
	require.NoError(t, err)

	rec := do(http.MethodGet, "/v1/dashboard/admin", getToken(t, admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ov dashboard.AdminOverview
	decode(t, rec, &ov)
	assert.Equal(t, 0, ov.Counts.Students)
	assert.Equal(t, 0, ov.Counts.UnassignedStudents)
	assert.Empty(t, ov.NeedsAttention)
}

func Test_adminApi_reconcileMeetings(t *testing.T) {
	reset(t)
	f := createUsers(t)
	lapsed, upcoming := seedAlice(t, f)

	tests := []httpTest{
		{name: "Admins only", method: http.MethodPost, path: "/v1/admin/reconcile-meetings", token: getToken(t, f.advisor), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Lapsed meetings become missed", method: http.MethodPost, path: "/v1/admin/reconcile-meetings", token: getToken(t, f.admin), wantCode: http.StatusOK, wantData: marchallObj(t, CountResponse{Count: 1})},
		{name: "Idempotent", method: http.MethodPost, path: "/v1/admin/reconcile-meetings", token: getToken(t, f.admin), wantCode: http.StatusOK, wantData: marchallObj(t, CountResponse{Count: 0})},
	}
	runHTTPTests(t, tests)

	m, err := svcs.Meetings.GetByID(context.Background(), lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusMissed, m.Status)
	m, err = svcs.Meetings.GetByID(context.Background(), upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusScheduled, m.Status)
}

func Test_adminApi_attentionDigest(t *testing.T) {
	reset(t)
	f := createUsers(t)
	_, upcoming := seedAlice(t, f)
	emailsvc.ResetSentMessages()

	rec := do(http.MethodPost, "/v1/admin/attention-digest", getToken(t, f.advisor))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, emailsvc.SentMessages)

	rec = do(http.MethodPost, "/v1/admin/attention-digest", getToken(t, f.admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	require.Len(t, emailsvc.SentMessages, 2)
	var advisorMsg string
	for _, msg := range emailsvc.SentMessages {
		if msg.To[0].Address == f.advisor.Email {
			advisorMsg = msg.TextContent
		}
	}
	assert.Contains(t, advisorMsg, "Hello Grace Advisor")
	assert.Contains(t, advisorMsg, "2 of your students may need attention")
	assert.Contains(t, advisorMsg, "- Alice (medium priority), next meeting "+dates.Format(upcoming.ScheduledDate)+", last reflection ")
	assert.Contains(t, advisorMsg, "- Bob (high priority)")
	assert.Less(t, strings.Index(advisorMsg, "Bob"), strings.Index(advisorMsg, "Alice"))
	assert.False(t, strings.Contains(advisorMsg, "Carol"))
}

func calendlyBody(kind, email, uri string, start time.Time) []byte {
	return []byte(`{
		"event": "` + kind + `",
		"payload": {
			"email": "` + email + `",
			"name": "Invitee",
			"scheduled_event": {
				"uri": "` + uri + `",
				"name": "30 Minute Meeting",
				"start_time": "` + start.Format(time.RFC3339) + `",
				"end_time": "` + start.Add(45*time.Minute).Format(time.RFC3339) + `",
				"event_memberships": [{"user_email": "hopper@uni.edu"}]
			}
		}
	}`)
}

func Test_webhookApi_calendly(t *testing.T) {
	reset(t)
	f := createUsers(t)

	start := time.Now().UTC().AddDate(0, 0, 2).Truncate(time.Minute)
	uri := "https://api.calendly.com/scheduled_events/EV1"

	t.Run("malformed", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/webhooks/calendly", "", []byte(`{"event":""}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown invitee is stored unsynced", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/webhooks/calendly", "", calendlyBody(calendly.KindInviteeCreated, "stranger@elsewhere.org", uri+"X", start))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var evt calendly.Event
		decode(t, rec, &evt)
		assert.False(t, evt.Synced)
		assert.Empty(t, evt.MeetingID)
	})

	var meetingID string
	t.Run("invitee created books a meeting with the host advisor", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/webhooks/calendly", "", calendlyBody(calendly.KindInviteeCreated, " Alice@Uni.edu ", uri, start))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var evt calendly.Event
		decode(t, rec, &evt)
		assert.True(t, evt.Synced)
		assert.Equal(t, f.alice.ID, evt.StudentID)
		require.NotEmpty(t, evt.MeetingID)
		meetingID = evt.MeetingID

		m, err := svcs.Meetings.GetByID(context.Background(), meetingID)
		require.NoError(t, err)
		assert.Equal(t, meeting.SourceCalendly, m.Source)
		assert.Equal(t, f.otherAdvisor.ID, m.AdvisorID)
		assert.Equal(t, 45, m.DurationMinutes)
		assert.True(t, start.Equal(m.ScheduledDate))
	})

	t.Run("redelivery does not duplicate", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/webhooks/calendly", "", calendlyBody(calendly.KindInviteeCreated, "alice@uni.edu", uri, start))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var evt calendly.Event
		decode(t, rec, &evt)
		assert.Equal(t, meetingID, evt.MeetingID)
	})

	t.Run("cancellation", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/webhooks/calendly", "", calendlyBody(calendly.KindInviteeCanceled, "alice@uni.edu", uri, start))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		m, err := svcs.Meetings.GetByID(context.Background(), meetingID)
		require.NoError(t, err)
		assert.Equal(t, meeting.StatusCancelled, m.Status)
	})

	t.Run("events are listed for admins", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/calendly/events", getToken(t, f.advisor))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = do(http.MethodGet, "/v1/calendly/events?synced=false", getToken(t, f.admin))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var events []calendly.Event
		decode(t, rec, &events)
		require.Len(t, events, 1)
		assert.Equal(t, "stranger@elsewhere.org", events[0].InviteeEmail)

		rec = do(http.MethodGet, "/v1/calendly/events?kind=invitee.canceled", getToken(t, f.admin))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &events)
		assert.Len(t, events, 1)
	})
}

func Test_webhookApi_calendlyUnsynced(t *testing.T) {
	reset(t)
	f := createUsers(t)

	start := time.Now().UTC().AddDate(0, 0, 2).Truncate(time.Minute)
	post := func(t *testing.T, body []byte) calendly.Event {
		t.Helper()
		rec := do(http.MethodPost, "/v1/webhooks/calendly", "", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var evt calendly.Event
		decode(t, rec, &evt)
		return evt
	}

	for _, u := range []user.User{f.advisor, f.admin} {
		t.Run(u.Name+" is not booked as a student", func(t *testing.T) {
			evt := post(t, calendlyBody(calendly.KindInviteeCreated, u.Email, "https://api.calendly.com/scheduled_events/"+u.ID, start))
			assert.False(t, evt.Synced)
			assert.Empty(t, evt.MeetingID)

			ms, err := svcs.Meetings.Query(context.Background(), &meeting.QueryFilter{StudentIDs: []string{u.ID}}, nil)
			require.NoError(t, err)
			assert.Empty(t, ms)
		})
	}

	t.Run("completed meeting is not cancelled", func(t *testing.T) {
		uri := "https://api.calendly.com/scheduled_events/EV3"
		m, err := svcs.Meetings.ScheduleExternal(context.Background(), f.alice.ID, f.advisor.ID, "Check-in", uri, start, time.Hour)
		require.NoError(t, err)
		_, err = svcs.Meetings.SetStatus(context.Background(), m.ID, meeting.StatusCompleted)
		require.NoError(t, err)

		evt := post(t, calendlyBody(calendly.KindInviteeCanceled, "alice@uni.edu", uri, start))
		assert.False(t, evt.Synced)

		m, err = svcs.Meetings.GetByID(context.Background(), m.ID)
		require.NoError(t, err)
		assert.Equal(t, meeting.StatusCompleted, m.Status)
	})
}

func Test_webhookApi_signature(t *testing.T) {
	reset(t)
	createUsers(t)

	conf.CalendlySigningKey = "whsec"
	defer func() { conf.CalendlySigningKey = "" }()

	body := calendlyBody(calendly.KindInviteeCreated, "alice@uni.edu", "https://api.calendly.com/scheduled_events/EV2", time.Now().AddDate(0, 0, 1))

	send := func(header string) int {
		req, rec := newRequest(http.MethodPost, "/v1/webhooks/calendly", body)
		if header != "" {
			req.Header.Set(calendly.SignatureHeader, header)
		}
		app.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send(""))
	assert.Equal(t, http.StatusUnauthorized, send(calendly.Sign("wrong", body, time.Now())))
	assert.Equal(t, http.StatusUnauthorized, send(calendly.Sign("whsec", body, time.Now().Add(-time.Hour))))
	assert.Equal(t, http.StatusOK, send(calendly.Sign("whsec", body, time.Now())))
}
