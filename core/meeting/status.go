package meeting

import (
	"math"
	"sort"
	"sync/atomic"
	"time"
)

// DefaultMissedGrace is how long after its start a scheduled meeting still counts as scheduled.
const DefaultMissedGrace = 24 * time.Hour

var missedGrace atomic.Int64

func init() {
	missedGrace.Store(int64(DefaultMissedGrace))
}

// SetMissedGrace changes the grace period used by EffectiveStatus. Negative values are ignored.
func SetMissedGrace(d time.Duration) {
	if d >= 0 {
		missedGrace.Store(int64(d))
	}
}

func MissedGrace() time.Duration {
	return time.Duration(missedGrace.Load())
}

// transitions lists the statuses reachable from each stored status.
var transitions = map[string][]string{
	StatusPendingReview: {StatusScheduled, StatusCancelled},
	StatusScheduled:     {StatusCompleted, StatusMissed, StatusCancelled},
	StatusMissed:        {StatusCompleted},
	StatusCompleted:     {StatusMissed},
}

func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsLapsed reports whether m is still scheduled although its grace period ended before now.
func IsLapsed(m *Meeting, now time.Time) bool {
	return m.Status == StatusScheduled && !m.ScheduledDate.IsZero() &&
		m.ScheduledDate.Add(MissedGrace()).Before(now)
}

// EffectiveStatus is the status every reader displays: lapsed scheduled meetings are missed.
func EffectiveStatus(m *Meeting, now time.Time) string {
	if m == nil {
		return ""
	}
	if IsLapsed(m, now) {
		return StatusMissed
	}
	return m.Status
}

// CountByEffectiveStatus tallies meetings per effective status.
func CountByEffectiveStatus(meetings []Meeting, now time.Time) map[string]int {
	counts := make(map[string]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for i := range meetings {
		counts[EffectiveStatus(&meetings[i], now)]++
	}
	return counts
}

// AttendanceRate is round(100 * completed / (completed + missed)), or 0 with no such meetings.
func AttendanceRate(meetings []Meeting, now time.Time) int {
	counts := CountByEffectiveStatus(meetings, now)
	completed, missed := counts[StatusCompleted], counts[StatusMissed]
	if completed+missed == 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(completed+missed)))
}

// Upcoming returns up to limit meetings still effectively scheduled at or after now, soonest first.
// A limit <= 0 returns them all.
func Upcoming(meetings []Meeting, now time.Time, limit int) []Meeting {
	out := make([]Meeting, 0)
	for i := range meetings {
		m := meetings[i]
		if EffectiveStatus(&m, now) == StatusScheduled && !m.ScheduledDate.Before(now) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
