package dashboard

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/attention"
	"github.com/istudy/dashboard/core/dates"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
)

const (
	overviewCacheKey = "dashboard:admin-overview"

	digestTemplate = "attention_digest"
	digestSubject  = "Students needing attention"
)

type (
	// Cache stores JSON-serialisable values with a TTL.
	Cache interface {
		Get(ctx context.Context, key string, dst interface{}) (bool, error)
		Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error
		Delete(ctx context.Context, keys ...string) error
	}

	Deps struct {
		Conf        *core.Config
		Logger      core.Logger
		Mail        core.EmailService
		Cache       Cache // optional
		Users       *user.Service
		Goals       *goal.Service
		ActionItems *actionitem.Service
		Meetings    *meeting.Service
		Reflections *reflection.Service
		Dates       *importantdate.Service
	}

	Service struct {
		deps       Deps
		thresholds attention.Thresholds
	}
)

func NewService(deps Deps) *Service {
	return &Service{deps: deps, thresholds: attention.ThresholdsFromConfig(deps.Conf)}
}

func (svc *Service) Thresholds() attention.Thresholds {
	return svc.thresholds
}

// StudentOverview assembles the student page of studentID.
func (svc *Service) StudentOverview(ctx context.Context, studentID string) (StudentOverview, error) {
	student, err := svc.deps.Users.GetByID(ctx, studentID)
	if err != nil {
		return StudentOverview{}, errors.Wrap(err, "finding student")
	}
	recs, err := svc.load(ctx, studentID)
	if err != nil {
		return StudentOverview{}, err
	}

	now := core.NowFunc()
	visible, err := svc.deps.Dates.Visible(ctx, student, &importantdate.QueryFilter{From: dates.StartOfDay(now)}, nil)
	if err != nil {
		return StudentOverview{}, errors.Wrap(err, "querying important dates")
	}

	goals := recs.goals[studentID]
	items := recs.items[studentID]
	meetings := recs.meetings[studentID]
	refls := recs.reflections[studentID]
	if len(refls) > recentReflectionsLimit {
		refls = refls[:recentReflectionsLimit]
	}

	return StudentOverview{
		Student:           student,
		Goals:             goal.NewItems(goals, now),
		GoalCounts:        goal.CountByComputedStatus(goals, now),
		ActionItems:       nonNilItems(items),
		OpenActionItems:   actionitem.CountOpen(items),
		NeedsHelp:         actionitem.CountNeedsHelp(items),
		Meetings:          meeting.NewItems(meetings, now),
		UpcomingMeetings:  meeting.Upcoming(meetings, now, upcomingMeetingsLimit),
		AttendanceRate:    meeting.AttendanceRate(meetings, now),
		RecentReflections: nonNilReflections(refls),
		ImportantDates:    importantdate.Upcoming(visible, now),
		Attention:         attention.Evaluate(recs.input(studentID), now, svc.thresholds),
	}, nil
}

// AdvisorStudents summarises the students of advisorID, most urgent first.
func (svc *Service) AdvisorStudents(ctx context.Context, advisorID string) ([]StudentSummary, error) {
	if advisorID == "" {
		return []StudentSummary{}, nil
	}
	students, err := svc.deps.Users.Students(ctx, advisorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return svc.summarize(ctx, students)
}

func (svc *Service) summarize(ctx context.Context, students []user.User) ([]StudentSummary, error) {
	summaries := make([]StudentSummary, 0, len(students))
	if len(students) == 0 {
		return summaries, nil
	}

	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	recs, err := svc.load(ctx, ids...)
	if err != nil {
		return nil, err
	}

	now := core.NowFunc()
	for _, s := range students {
		summaries = append(summaries, summarizeOne(s, recs, now, svc.thresholds))
	}
	sortSummaries(summaries)
	return summaries, nil
}

func summarizeOne(s user.User, recs records, now time.Time, th attention.Thresholds) StudentSummary {
	goals := recs.goals[s.ID]
	items := recs.items[s.ID]
	meetings := recs.meetings[s.ID]

	sum := StudentSummary{
		Student:         s,
		GoalCounts:      goal.CountByComputedStatus(goals, now),
		TotalGoals:      len(goals),
		OpenActionItems: actionitem.CountOpen(items),
		NeedsHelp:       actionitem.CountNeedsHelp(items),
		AttendanceRate:  meeting.AttendanceRate(meetings, now),
		Attention:       attention.Evaluate(recs.input(s.ID), now, th),
	}
	if latest, ok := reflection.Latest(recs.reflections[s.ID]); ok {
		t := latest.CreatedAt
		sum.LastReflection = &t
	}
	if next := meeting.Upcoming(meetings, now, 1); len(next) > 0 {
		t := next[0].ScheduledDate
		sum.NextMeeting = &t
	}
	return sum
}

// sortSummaries orders by priority (high first) then by name.
func sortSummaries(summaries []StudentSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		pi := attention.PriorityRank(summaries[i].Attention.Priority)
		pj := attention.PriorityRank(summaries[j].Attention.Priority)
		if pi != pj {
			return pi > pj
		}
		return strings.ToLower(summaries[i].Student.Name) < strings.ToLower(summaries[j].Student.Name)
	})
}

// AdminOverview computes program-wide counts and the students needing attention.
// Results are cached for the configured TTL when a cache is available.
func (svc *Service) AdminOverview(ctx context.Context) (AdminOverview, error) {
	if svc.deps.Cache != nil {
		var cached AdminOverview
		ok, err := svc.deps.Cache.Get(ctx, overviewCacheKey, &cached)
		if err != nil {
			svc.deps.Logger.Warn(fmt.Sprintf("reading overview cache: %v", err), err)
		} else if ok {
			return cached, nil
		}
	}

	ov, err := svc.buildAdminOverview(ctx)
	if err != nil {
		return AdminOverview{}, err
	}

	if svc.deps.Cache != nil {
		if err = svc.deps.Cache.Set(ctx, overviewCacheKey, ov, svc.deps.Conf.Redis.OverviewTTL); err != nil {
			svc.deps.Logger.Warn(fmt.Sprintf("writing overview cache: %v", err), err)
		}
	}
	return ov, nil
}

// InvalidateOverview drops the cached admin overview.
func (svc *Service) InvalidateOverview(ctx context.Context) {
	if svc.deps.Cache == nil {
		return
	}
	if err := svc.deps.Cache.Delete(ctx, overviewCacheKey); err != nil {
		svc.deps.Logger.Warn(fmt.Sprintf("invalidating overview cache: %v", err), err)
	}
}

func (svc *Service) buildAdminOverview(ctx context.Context) (AdminOverview, error) {
	now := core.NowFunc()

	students, err := svc.deps.Users.Students(ctx, "")
	if err != nil {
		return AdminOverview{}, errors.Wrap(err, "querying students")
	}
	advisors, err := svc.deps.Users.Advisors(ctx)
	if err != nil {
		return AdminOverview{}, errors.Wrap(err, "querying advisors")
	}
	goals, err := svc.deps.Goals.Query(ctx, nil, nil)
	if err != nil {
		return AdminOverview{}, errors.Wrap(err, "querying goals")
	}
	meetings, err := svc.deps.Meetings.Query(ctx, nil, nil)
	if err != nil {
		return AdminOverview{}, errors.Wrap(err, "querying meetings")
	}

	counts := Counts{
		Students:       len(students),
		Advisors:       len(advisors),
		Goals:          goal.CountByComputedStatus(goals, now),
		MissedMeetings: meeting.CountByEffectiveStatus(meetings, now)[meeting.StatusMissed],
		AttendanceRate: meeting.AttendanceRate(meetings, now),
	}
	for _, s := range students {
		if s.AdvisorID == "" {
			counts.UnassignedStudents++
		}
	}
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	for _, m := range meetings {
		if m.Status != meeting.StatusCancelled && !m.ScheduledDate.Before(weekStart) && m.ScheduledDate.Before(weekEnd) {
			counts.MeetingsThisWeek++
		}
	}

	summaries, err := svc.summarize(ctx, students)
	if err != nil {
		return AdminOverview{}, err
	}
	flagged := make([]StudentSummary, 0)
	for _, s := range summaries {
		if s.Attention.NeedsAttention {
			flagged = append(flagged, s)
		}
	}

	return AdminOverview{Counts: counts, NeedsAttention: flagged, GeneratedAt: now.UTC()}, nil
}

// SendAttentionDigest emails every advisor the list of their students needing attention.
// Advisors with no flagged students get nothing. It returns the number of emails sent.
func (svc *Service) SendAttentionDigest(ctx context.Context) (int, error) {
	advisors, err := svc.deps.Users.Advisors(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying advisors")
	}

	messages := make([]*core.EmailMessage, 0, len(advisors))
	for _, adv := range advisors {
		summaries, err := svc.AdvisorStudents(ctx, adv.ID)
		if err != nil {
			return 0, errors.Wrapf(err, "summarizing students of %s", adv.ID)
		}

		data := digestData{Recipient: adv.Name}
		for _, s := range summaries {
			if s.Attention.NeedsAttention {
				ds := digestStudent{
					Name:     s.Student.Name,
					Priority: s.Attention.Priority,
					Reasons:  s.Attention.Reasons,
				}
				if s.NextMeeting != nil {
					ds.NextMeeting = dates.Format(*s.NextMeeting)
				}
				if s.LastReflection != nil {
					ds.LastReflection = dates.Format(*s.LastReflection)
				}
				data.Students = append(data.Students, ds)
			}
		}
		if len(data.Students) == 0 {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: adv.Name, Address: adv.Email}},
			Subject:      digestSubject,
			TemplateName: digestTemplate,
			TemplateData: data,
		})
	}

	if len(messages) > 0 {
		svc.deps.Mail.SendMessages(messages...)
	}
	return len(messages), nil
}

// load fetches the goals, action items, meetings and reflections of studentIDs, one query each.
func (svc *Service) load(ctx context.Context, studentIDs ...string) (records, error) {
	recs := records{
		goals:       make(map[string][]goal.Goal),
		items:       make(map[string][]actionitem.ActionItem),
		meetings:    make(map[string][]meeting.Meeting),
		reflections: make(map[string][]reflection.Reflection),
	}

	goals, err := svc.deps.Goals.ForUsers(ctx, studentIDs...)
	if err != nil {
		return recs, errors.Wrap(err, "querying goals")
	}
	for _, g := range goals {
		recs.goals[g.UserID] = append(recs.goals[g.UserID], g)
	}

	items, err := svc.deps.ActionItems.ForUsers(ctx, studentIDs...)
	if err != nil {
		return recs, errors.Wrap(err, "querying action items")
	}
	for _, ai := range items {
		recs.items[ai.UserID] = append(recs.items[ai.UserID], ai)
	}

	meetings, err := svc.deps.Meetings.ForStudents(ctx, studentIDs...)
	if err != nil {
		return recs, errors.Wrap(err, "querying meetings")
	}
	for _, m := range meetings {
		recs.meetings[m.StudentID] = append(recs.meetings[m.StudentID], m)
	}

	refls, err := svc.deps.Reflections.ForUsers(ctx, studentIDs...)
	if err != nil {
		return recs, errors.Wrap(err, "querying reflections")
	}
	for _, r := range refls {
		recs.reflections[r.UserID] = append(recs.reflections[r.UserID], r)
	}
	return recs, nil
}

// startOfWeek returns midnight of the Monday of t's week in the program time zone.
func startOfWeek(t time.Time) time.Time {
	day := dates.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func nonNilItems(items []actionitem.ActionItem) []actionitem.ActionItem {
	if items == nil {
		return []actionitem.ActionItem{}
	}
	return items
}

func nonNilReflections(refls []reflection.Reflection) []reflection.Reflection {
	if refls == nil {
		return []reflection.Reflection{}
	}
	return refls
}
