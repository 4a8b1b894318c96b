package attention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/dates"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/reflection"
)

func codes(res Result) []string {
	out := make([]string, 0, len(res.Reasons))
	for _, r := range res.Reasons {
		out = append(out, r.Code)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, dates.Location())
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	activeGoal := goal.Goal{Status: goal.StatusActive, TargetDate: now.AddDate(0, 1, 0)}
	overdueGoal := goal.Goal{Status: goal.StatusActive, TargetDate: daysAgo(3)}
	doneGoal := goal.Goal{Status: goal.StatusCompleted, TargetDate: daysAgo(30)}
	completedMeeting := meeting.Meeting{Status: meeting.StatusCompleted, ScheduledDate: daysAgo(7)}
	missedMeeting := meeting.Meeting{Status: meeting.StatusMissed, ScheduledDate: daysAgo(14)}
	lapsedMeeting := meeting.Meeting{Status: meeting.StatusScheduled, ScheduledDate: daysAgo(3)}
	recent := reflection.Reflection{CreatedAt: daysAgo(2)}

	tests := []struct {
		name         string
		in           Input
		wantCodes    []string
		wantPriority string
	}{
		{
			name:         "healthy student",
			in:           Input{Goals: []goal.Goal{activeGoal, doneGoal}, Meetings: []meeting.Meeting{completedMeeting}, Reflections: []reflection.Reflection{recent}},
			wantCodes:    []string{},
			wantPriority: PriorityNone,
		},
		{
			name:         "brand new student",
			in:           Input{},
			wantCodes:    []string{ReasonNoReflections, ReasonNoGoals, ReasonNoMeetings},
			wantPriority: PriorityHigh,
		},
		{
			name:         "reflection 14 days ago is not stale",
			in:           Input{Goals: []goal.Goal{activeGoal}, Meetings: []meeting.Meeting{completedMeeting}, Reflections: []reflection.Reflection{{CreatedAt: daysAgo(14)}}},
			wantCodes:    []string{},
			wantPriority: PriorityNone,
		},
		{
			name:         "reflection 15 days ago is stale",
			in:           Input{Goals: []goal.Goal{activeGoal}, Meetings: []meeting.Meeting{completedMeeting}, Reflections: []reflection.Reflection{{CreatedAt: daysAgo(15)}, {CreatedAt: daysAgo(40)}}},
			wantCodes:    []string{ReasonStaleReflection},
			wantPriority: PriorityLow,
		},
		{
			name:         "overdue goal and no meetings",
			in:           Input{Goals: []goal.Goal{overdueGoal, doneGoal}, Reflections: []reflection.Reflection{recent}},
			wantCodes:    []string{ReasonOverdueGoals, ReasonNoMeetings},
			wantPriority: PriorityMedium,
		},
		{
			name: "two missed meetings, one lapsed",
			in: Input{
				Goals:       []goal.Goal{activeGoal},
				Meetings:    []meeting.Meeting{missedMeeting, lapsedMeeting, completedMeeting},
				Reflections: []reflection.Reflection{recent},
			},
			wantCodes:    []string{ReasonMissedMeetings},
			wantPriority: PriorityLow,
		},
		{
			name: "struggling student",
			in: Input{
				Goals:       []goal.Goal{activeGoal},
				Meetings:    []meeting.Meeting{completedMeeting},
				Reflections: []reflection.Reflection{recent},
				ActionItems: []actionitem.ActionItem{{Struggling: true}, {Struggling: true, Completed: true}},
			},
			wantCodes:    []string{ReasonNeedsHelp},
			wantPriority: PriorityLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.in, now, DefaultThresholds())
			assert.Equal(t, tt.wantCodes, codes(res))
			assert.Equal(t, tt.wantPriority, res.Priority)
			assert.Equal(t, len(tt.wantCodes) > 0, res.NeedsAttention)
		})
	}
}

func TestEvaluate_thresholds(t *testing.T) {
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, dates.Location())
	in := Input{
		Goals:       []goal.Goal{{Status: goal.StatusActive}},
		Meetings:    []meeting.Meeting{{Status: meeting.StatusMissed, ScheduledDate: now.AddDate(0, 0, -1)}},
		Reflections: []reflection.Reflection{{CreatedAt: now.AddDate(0, 0, -5)}},
	}

	res := Evaluate(in, now, Thresholds{ReflectionStaleDays: 3, HighPriorityReasons: 1, MissedMeetingsLimit: 1})
	assert.Equal(t, []string{ReasonStaleReflection, ReasonMissedMeetings}, codes(res))
	assert.Equal(t, PriorityHigh, res.Priority)

	res = Evaluate(in, now, Thresholds{ReflectionStaleDays: 7, HighPriorityReasons: 2, MissedMeetingsLimit: 0})
	assert.Empty(t, res.Reasons)
	assert.Equal(t, PriorityNone, res.Priority)
}

func TestThresholdsFromConfig(t *testing.T) {
	tests := []struct {
		name string
		conf *core.Config
		want Thresholds
	}{
		{name: "nil config", conf: nil, want: DefaultThresholds()},
		{name: "unset values", conf: &core.Config{}, want: DefaultThresholds()},
		{
			name: "overrides",
			conf: &core.Config{Attention: core.AttentionConfig{ReflectionStaleDays: 7, HighPriorityReasons: 3, MissedMeetingsLimit: 4}},
			want: Thresholds{ReflectionStaleDays: 7, HighPriorityReasons: 3, MissedMeetingsLimit: 4},
		},
		{
			name: "negative missed limit disables",
			conf: &core.Config{Attention: core.AttentionConfig{MissedMeetingsLimit: -1}},
			want: Thresholds{ReflectionStaleDays: 14, HighPriorityReasons: 2, MissedMeetingsLimit: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThresholdsFromConfig(tt.conf))
		})
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		reasons int
		want    string
	}{
		{0, PriorityNone},
		{1, PriorityLow},
		{2, PriorityMedium},
		{3, PriorityHigh},
		{5, PriorityHigh},
	}
	for _, tt := range tests {
		if got := priority(tt.reasons, 2); got != tt.want {
			t.Errorf("priority(%d, 2) = %q, want %q", tt.reasons, got, tt.want)
		}
	}
	assert.True(t, PriorityRank(PriorityHigh) > PriorityRank(PriorityMedium))
	assert.True(t, PriorityRank(PriorityLow) > PriorityRank(PriorityNone))
}
