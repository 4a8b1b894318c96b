package importantdate

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/dates"
	"github.com/istudy/dashboard/core/user"
)

// Scopes, derived from the creator's role.
const (
	ScopeAdmin   = "admin"
	ScopeAdvisor = "advisor"
	ScopeStudent = "student"
)

// ImportantDate is a calendar entry. Global entries have neither AdvisorID nor StudentID.
type ImportantDate struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Date        time.Time `json:"date" bson:"date"`
	Scope       string    `json:"scope" bson:"scope"`
	AdvisorID   string    `json:"advisor_id,omitempty" bson:"advisor_id,omitempty"`
	StudentID   string    `json:"student_id,omitempty" bson:"student_id,omitempty"`
	CreatedBy   string    `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (d *ImportantDate) IsGlobal() bool {
	return d.AdvisorID == "" && d.StudentID == ""
}

// VisibleTo reports whether viewer may see d. Admins see everything, advisors see global
// dates and their own, students see global dates, their advisor's and their own.
func VisibleTo(d *ImportantDate, viewer user.User) bool {
	switch {
	case viewer.IsAdministrator():
		return true
	case d.IsGlobal():
		return true
	case viewer.IsAdvisor():
		return d.StudentID == "" && d.AdvisorID == viewer.ID
	default:
		if d.StudentID != "" {
			return d.StudentID == viewer.ID
		}
		return viewer.AdvisorID != "" && d.AdvisorID == viewer.AdvisorID
	}
}

type NewImportantDate struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Date        time.Time `json:"date" validate:"required"`
}

func (nd *NewImportantDate) Validate(validate *validator.Validate) error {
	nd.Title = core.CleanString(nd.Title)
	nd.Description = core.CleanString(nd.Description)
	return validate.Struct(nd)
}

type UpdateImportantDate struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Date        *time.Time `json:"date"`
}

func (ud *UpdateImportantDate) Validate(validate *validator.Validate) error {
	return validate.Struct(ud)
}

// QueryFilter selects dates in [From, To) matching any of the visibility clauses.
// All disables the visibility clauses.
type QueryFilter struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`

	All        bool     `query:"-"`
	Global     bool     `query:"-"`
	AdvisorIDs []string `query:"-"`
	StudentIDs []string `query:"-"`
}

// Matches reports whether d satisfies the filter. Repositories without a query language use it.
func (qf *QueryFilter) Matches(d *ImportantDate) bool {
	if !qf.From.IsZero() && d.Date.Before(qf.From) {
		return false
	}
	if !qf.To.IsZero() && !d.Date.Before(qf.To) {
		return false
	}
	if qf.All {
		return true
	}
	if qf.Global && d.IsGlobal() {
		return true
	}
	if d.StudentID != "" {
		return contains(qf.StudentIDs, d.StudentID)
	}
	return d.AdvisorID != "" && contains(qf.AdvisorIDs, d.AdvisorID)
}

// ForViewer narrows qf to the dates viewer may see.
func (qf *QueryFilter) ForViewer(viewer user.User) {
	qf.All, qf.Global, qf.AdvisorIDs, qf.StudentIDs = false, true, nil, nil
	switch {
	case viewer.IsAdministrator():
		qf.All = true
	case viewer.IsAdvisor():
		qf.AdvisorIDs = []string{viewer.ID}
	default:
		qf.StudentIDs = []string{viewer.ID}
		if viewer.AdvisorID != "" {
			qf.AdvisorIDs = []string{viewer.AdvisorID}
		}
	}
}

var OrderingFields = []string{"date", "title", "created_at"}

// Upcoming keeps the dates on or after now's calendar day.
func Upcoming(ds []ImportantDate, now time.Time) []ImportantDate {
	today := dates.StartOfDay(now)
	out := make([]ImportantDate, 0, len(ds))
	for _, d := range ds {
		if !d.Date.Before(today) {
			out = append(out, d)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
