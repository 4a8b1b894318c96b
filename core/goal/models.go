package goal

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

// Stored statuses. StatusOverdue is only ever computed.
const (
	StatusNotStarted = "not_started"
	StatusActive     = "active"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
)

const (
	CategoryAcademic = "academic"
	CategoryCareer   = "career"
	CategoryPersonal = "personal"
	CategoryProject  = "project"
	CategoryOther    = "other"
)

var (
	Statuses   = []string{StatusNotStarted, StatusActive, StatusCompleted}
	Categories = []string{CategoryAcademic, CategoryCareer, CategoryPersonal, CategoryProject, CategoryOther}
)

type Goal struct {
	ID             string    `json:"id" bson:"_id"`
	UserID         string    `json:"user_id" bson:"user_id"`
	Title          string    `json:"title" bson:"title"`
	Description    string    `json:"description" bson:"description"`
	Category       string    `json:"category" bson:"category"`
	TargetDate     time.Time `json:"target_date,omitempty" bson:"target_date,omitempty"`
	SuccessMetrics string    `json:"success_metrics" bson:"success_metrics"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// NewGoal contains information needed to create a new Goal.
type NewGoal struct {
	Title          string    `json:"title" validate:"required,notblank,max=200"`
	Description    string    `json:"description" validate:"max=5000"`
	Category       string    `json:"category" validate:"omitempty,oneof=academic career personal project other"`
	TargetDate     time.Time `json:"target_date" validate:"targetdate"`
	SuccessMetrics string    `json:"success_metrics" validate:"max=2000"`
	Status         string    `json:"status" validate:"omitempty,goalstatus"`
}

func (ng *NewGoal) Clean() {
	ng.Title = core.CleanString(ng.Title)
	ng.Description = core.CleanString(ng.Description)
	ng.Category = core.CleanString(ng.Category, true /* lower */)
	ng.SuccessMetrics = core.CleanString(ng.SuccessMetrics)
	if ng.Category == "" {
		ng.Category = CategoryOther
	}
	if ng.Status == "" {
		ng.Status = StatusNotStarted
	}
}

// UpdateGoal defines what information may be provided to modify an existing Goal.
// A nil field is left unchanged.
type UpdateGoal struct {
	Title          *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	Category       *string    `json:"category" validate:"omitempty,oneof=academic career personal project other"`
	TargetDate     *time.Time `json:"target_date" validate:"omitempty,targetdate"`
	SuccessMetrics *string    `json:"success_metrics" validate:"omitempty,max=2000"`
	Status         *string    `json:"status" validate:"omitempty,goalstatus"`
}

type QueryFilter struct {
	UserIDs  []string `query:"user_id"`
	Statuses []string `query:"status"`
	Category string   `query:"category"`
}

var OrderingFields = []string{"title", "target_date", "status", "created_at", "updated_at"}

// Item is a Goal with its derived fields, as served to the dashboard.
type Item struct {
	Goal
	ComputedStatus string  `json:"computed_status"`
	Display        Display `json:"display"`
	Overdue        bool    `json:"overdue"`
}

func NewItem(g Goal, now time.Time) Item {
	return Item{
		Goal:           g,
		ComputedStatus: ComputedStatus(&g, now),
		Display:        DisplayStatus(&g, now),
		Overdue:        IsOverdue(&g, now),
	}
}

func NewItems(goals []Goal, now time.Time) []Item {
	items := make([]Item, 0, len(goals))
	for _, g := range goals {
		items = append(items, NewItem(g, now))
	}
	return items
}

func (ng *NewGoal) Validate(validate *validator.Validate) error {
	ng.Clean()
	return validate.Struct(ng)
}

func (ug *UpdateGoal) Validate(validate *validator.Validate) error {
	if ug.Category != nil {
		c := core.CleanString(*ug.Category, true /* lower */)
		ug.Category = &c
	}
	return validate.Struct(ug)
}
