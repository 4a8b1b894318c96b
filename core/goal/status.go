package goal

import (
	"time"

	"github.com/istudy/dashboard/core/dates"
)

// Display variants
const (
	VariantGray  = "gray"
	VariantBlue  = "blue"
	VariantGreen = "green"
	VariantRed   = "red"
)

// Display is how a goal status is rendered: a label and a colour variant.
type Display struct {
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

var (
	displayUnknown = Display{Label: "Unknown", Variant: VariantGray}

	displays = map[string]Display{
		StatusNotStarted: {Label: "Not Started", Variant: VariantGray},
		StatusActive:     {Label: "Active", Variant: VariantBlue},
		StatusCompleted:  {Label: "Done", Variant: VariantGreen},
		StatusOverdue:    {Label: "Overdue", Variant: VariantRed},
	}
)

// IsOverdue reports whether g has a target date on a calendar day before now's and is not completed.
func IsOverdue(g *Goal, now time.Time) bool {
	if g == nil || g.Status == StatusCompleted {
		return false
	}
	return dates.IsPast(g.TargetDate, now)
}

// ComputedStatus is StatusOverdue for overdue goals and the stored status otherwise.
func ComputedStatus(g *Goal, now time.Time) string {
	if g == nil {
		return ""
	}
	if IsOverdue(g, now) {
		return StatusOverdue
	}
	return g.Status
}

// DisplayStatus maps g to its label and variant. Overdue wins over the stored status.
func DisplayStatus(g *Goal, now time.Time) Display {
	if g == nil {
		return displayUnknown
	}
	if d, ok := displays[ComputedStatus(g, now)]; ok {
		return d
	}
	return displayUnknown
}

// CountByComputedStatus tallies goals per computed status.
func CountByComputedStatus(goals []Goal, now time.Time) map[string]int {
	counts := map[string]int{
		StatusNotStarted: 0,
		StatusActive:     0,
		StatusCompleted:  0,
		StatusOverdue:    0,
	}
	for i := range goals {
		counts[ComputedStatus(&goals[i], now)]++
	}
	return counts
}
