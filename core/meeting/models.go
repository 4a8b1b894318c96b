package meeting

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

const (
	StatusScheduled     = "scheduled"
	StatusCompleted     = "completed"
	StatusMissed        = "missed"
	StatusCancelled     = "cancelled"
	StatusPendingReview = "pending-review"
)

const (
	SourceManual   = "manual"
	SourceCalendly = "calendly"
)

var Statuses = []string{StatusScheduled, StatusCompleted, StatusMissed, StatusCancelled, StatusPendingReview}

type Meeting struct {
	ID                  string    `json:"id" bson:"_id"`
	StudentID           string    `json:"student_id" bson:"student_id"`
	AdvisorID           string    `json:"advisor_id,omitempty" bson:"advisor_id,omitempty"`
	Title               string    `json:"title" bson:"title"`
	Notes               string    `json:"notes" bson:"notes"`
	Location            string    `json:"location,omitempty" bson:"location,omitempty"`
	ScheduledDate       time.Time `json:"scheduled_date" bson:"scheduled_date"`
	DurationMinutes     int       `json:"duration_minutes" bson:"duration_minutes"`
	Status              string    `json:"status" bson:"status"`
	StudentSelfReported bool      `json:"student_self_reported" bson:"student_self_reported"`
	Source              string    `json:"source" bson:"source"`
	CalendlyEventURI    string    `json:"calendly_event_uri,omitempty" bson:"calendly_event_uri,omitempty"`
	CreatedBy           string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

// NewMeeting is what an advisor provides to schedule a meeting with a student.
type NewMeeting struct {
	StudentID       string    `json:"student_id" validate:"required,objectid"`
	Title           string    `json:"title" validate:"max=200"`
	Notes           string    `json:"notes" validate:"max=5000"`
	Location        string    `json:"location" validate:"max=500"`
	ScheduledDate   time.Time `json:"scheduled_date" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0,lte=480"`
}

func (nm *NewMeeting) Validate(validate *validator.Validate) error {
	nm.StudentID = core.CleanString(nm.StudentID)
	nm.Title = core.CleanString(nm.Title)
	nm.Notes = core.CleanString(nm.Notes)
	nm.Location = core.CleanString(nm.Location)
	if nm.DurationMinutes == 0 {
		nm.DurationMinutes = DefaultDurationMinutes
	}
	return validate.Struct(nm)
}

// RequestMeeting is what a student provides to ask their advisor for a meeting.
type RequestMeeting struct {
	Title         string    `json:"title" validate:"max=200"`
	Notes         string    `json:"notes" validate:"max=5000"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required,targetdate"`
}

func (rm *RequestMeeting) Validate(validate *validator.Validate) error {
	rm.Title = core.CleanString(rm.Title)
	rm.Notes = core.CleanString(rm.Notes)
	return validate.Struct(rm)
}

type UpdateMeeting struct {
	Title           *string    `json:"title" validate:"omitempty,max=200"`
	Notes           *string    `json:"notes" validate:"omitempty,max=5000"`
	Location        *string    `json:"location" validate:"omitempty,max=500"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=0,lte=480"`
}

func (um *UpdateMeeting) Validate(validate *validator.Validate) error {
	return validate.Struct(um)
}

type SetStatus struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed missed cancelled pending-review"`
}

func (ss *SetStatus) Validate(validate *validator.Validate) error {
	ss.Status = core.CleanString(ss.Status, true /* lower */)
	return validate.Struct(ss)
}

type SelfReport struct {
	Attended *bool `json:"attended" validate:"required"`
}

func (sr *SelfReport) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}

// QueryFilter applies AND on set fields. From and To bound ScheduledDate as [From, To).
type QueryFilter struct {
	StudentIDs       []string  `query:"student_id"`
	AdvisorID        string    `query:"advisor_id"`
	Statuses         []string  `query:"status"`
	Source           string    `query:"source"`
	From             time.Time `query:"from"`
	To               time.Time `query:"to"`
	CalendlyEventURI string    `query:"-"`
}

var OrderingFields = []string{"scheduled_date", "status", "created_at"}

const DefaultDurationMinutes = 30

// Item is a Meeting with its effective status, as served to the dashboard.
type Item struct {
	Meeting
	EffectiveStatus string `json:"effective_status"`
}

func NewItem(m Meeting, now time.Time) Item {
	return Item{Meeting: m, EffectiveStatus: EffectiveStatus(&m, now)}
}

func NewItems(meetings []Meeting, now time.Time) []Item {
	items := make([]Item, 0, len(meetings))
	for i := range meetings {
		items = append(items, NewItem(meetings[i], now))
	}
	return items
}
