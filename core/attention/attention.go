// Package attention decides whether a student may need advisor outreach.
package attention

import (
	"fmt"
	"time"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/dates"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/reflection"
)

// Reason codes
const (
	ReasonStaleReflection = "stale_reflection"
	ReasonNoReflections   = "no_reflections"
	ReasonOverdueGoals    = "overdue_goals"
	ReasonNoGoals         = "no_goals"
	ReasonNoMeetings      = "no_meetings"
	ReasonNeedsHelp       = "needs_help"
	ReasonMissedMeetings  = "missed_meetings"
)

// Priorities
const (
	PriorityNone   = "none"
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var priorityRanks = map[string]int{PriorityNone: 0, PriorityLow: 1, PriorityMedium: 2, PriorityHigh: 3}

// PriorityRank orders priorities from none (0) to high (3).
func PriorityRank(priority string) int {
	return priorityRanks[priority]
}

type (
	Thresholds struct {
		ReflectionStaleDays int // a last reflection older than this many calendar days is stale
		HighPriorityReasons int // more reasons than this is high priority, exactly this is medium
		MissedMeetingsLimit int // this many missed meetings is a reason; 0 disables, a negative config value maps to 0
	}

	// Input is everything known about one student.
	Input struct {
		Goals       []goal.Goal
		ActionItems []actionitem.ActionItem
		Meetings    []meeting.Meeting
		Reflections []reflection.Reflection
	}

	Reason struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	Result struct {
		NeedsAttention bool     `json:"needs_attention"`
		Priority       string   `json:"priority"`
		Reasons        []Reason `json:"reasons"`
	}
)

func DefaultThresholds() Thresholds {
	return Thresholds{ReflectionStaleDays: 14, HighPriorityReasons: 2, MissedMeetingsLimit: 2}
}

// ThresholdsFromConfig reads the thresholds from conf, keeping defaults for unset values.
func ThresholdsFromConfig(conf *core.Config) Thresholds {
	th := DefaultThresholds()
	if conf == nil {
		return th
	}
	if conf.Attention.ReflectionStaleDays > 0 {
		th.ReflectionStaleDays = conf.Attention.ReflectionStaleDays
	}
	if conf.Attention.HighPriorityReasons > 0 {
		th.HighPriorityReasons = conf.Attention.HighPriorityReasons
	}
	switch limit := conf.Attention.MissedMeetingsLimit; {
	case limit > 0:
		th.MissedMeetingsLimit = limit
	case limit < 0:
		th.MissedMeetingsLimit = 0
	}
	return th
}

// Evaluate collects the reasons why a student needs attention as of now and derives a priority.
func Evaluate(in Input, now time.Time, th Thresholds) Result {
	reasons := make([]Reason, 0)

	if latest, ok := reflection.Latest(in.Reflections); !ok {
		reasons = append(reasons, Reason{Code: ReasonNoReflections, Message: "No reflections yet"})
	} else if days := dates.DaysBetween(latest.CreatedAt, now); days > th.ReflectionStaleDays {
		reasons = append(reasons, Reason{
			Code:    ReasonStaleReflection,
			Message: fmt.Sprintf("No reflection in %d days", days),
		})
	}

	if len(in.Goals) == 0 {
		reasons = append(reasons, Reason{Code: ReasonNoGoals, Message: "No goals set"})
	} else {
		var overdue int
		for i := range in.Goals {
			if goal.IsOverdue(&in.Goals[i], now) {
				overdue++
			}
		}
		if overdue > 0 {
			reasons = append(reasons, Reason{Code: ReasonOverdueGoals, Message: plural(overdue, "overdue goal")})
		}
	}

	if len(in.Meetings) == 0 {
		reasons = append(reasons, Reason{Code: ReasonNoMeetings, Message: "No meetings scheduled"})
	} else if th.MissedMeetingsLimit > 0 {
		if missed := meeting.CountByEffectiveStatus(in.Meetings, now)[meeting.StatusMissed]; missed >= th.MissedMeetingsLimit {
			reasons = append(reasons, Reason{Code: ReasonMissedMeetings, Message: plural(missed, "missed meeting")})
		}
	}

	if n := actionitem.CountNeedsHelp(in.ActionItems); n > 0 {
		reasons = append(reasons, Reason{Code: ReasonNeedsHelp, Message: plural(n, "action item") + " flagged for help"})
	}

	return Result{
		NeedsAttention: len(reasons) > 0,
		Priority:       priority(len(reasons), th.HighPriorityReasons),
		Reasons:        reasons,
	}
}

func priority(n, high int) string {
	switch {
	case n == 0:
		return PriorityNone
	case n > high:
		return PriorityHigh
	case n == high:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
