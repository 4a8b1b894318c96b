package dashboard

import (
	"time"

	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/attention"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
)

const (
	upcomingMeetingsLimit  = 5
	recentReflectionsLimit = 5
)

type (
	// StudentOverview is everything the student page shows.
	StudentOverview struct {
		Student           user.User                     `json:"student"`
		Goals             []goal.Item                   `json:"goals"`
		GoalCounts        map[string]int                `json:"goal_counts"`
		ActionItems       []actionitem.ActionItem       `json:"action_items"`
		OpenActionItems   int                           `json:"open_action_items"`
		NeedsHelp         int                           `json:"needs_help"`
		Meetings          []meeting.Item                `json:"meetings"`
		UpcomingMeetings  []meeting.Meeting             `json:"upcoming_meetings"`
		AttendanceRate    int                           `json:"attendance_rate"`
		RecentReflections []reflection.Reflection       `json:"recent_reflections"`
		ImportantDates    []importantdate.ImportantDate `json:"important_dates"`
		Attention         attention.Result              `json:"attention"`
	}

	// StudentSummary is one row of an advisor's student list.
	StudentSummary struct {
		Student         user.User        `json:"student"`
		GoalCounts      map[string]int   `json:"goal_counts"`
		TotalGoals      int              `json:"total_goals"`
		OpenActionItems int              `json:"open_action_items"`
		NeedsHelp       int              `json:"needs_help"`
		AttendanceRate  int              `json:"attendance_rate"`
		LastReflection  *time.Time       `json:"last_reflection"`
		NextMeeting     *time.Time       `json:"next_meeting"`
		Attention       attention.Result `json:"attention"`
	}

	Counts struct {
		Students           int            `json:"students"`
		Advisors           int            `json:"advisors"`
		UnassignedStudents int            `json:"unassigned_students"`
		Goals              map[string]int `json:"goals"`
		MeetingsThisWeek   int            `json:"meetings_this_week"`
		MissedMeetings     int            `json:"missed_meetings"`
		AttendanceRate     int            `json:"attendance_rate"`
	}

	AdminOverview struct {
		Counts         Counts           `json:"counts"`
		NeedsAttention []StudentSummary `json:"needs_attention"`
		GeneratedAt    time.Time        `json:"generated_at"`
	}

	// digestData feeds the attention_digest email template.
	digestData struct {
		Recipient string
		Students  []digestStudent
	}

	digestStudent struct {
		Name           string
		Priority       string
		Reasons        []attention.Reason
		NextMeeting    string // formatted for display, "" when none
		LastReflection string
	}
)

// records groups the documents of many students by student ID.
type records struct {
	goals       map[string][]goal.Goal
	items       map[string][]actionitem.ActionItem
	meetings    map[string][]meeting.Meeting
	reflections map[string][]reflection.Reflection
}

func (r records) input(studentID string) attention.Input {
	return attention.Input{
		Goals:       r.goals[studentID],
		ActionItems: r.items[studentID],
		Meetings:    r.meetings[studentID],
		Reflections: r.reflections[studentID],
	}
}
