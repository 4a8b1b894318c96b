package actionitem

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

// ActionItem is a lightweight to-do owned by a student, possibly assigned by an advisor.
type ActionItem struct {
	ID          string     `json:"id" bson:"_id"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Text        string     `json:"text" bson:"text"`
	Completed   bool       `json:"completed" bson:"completed"`
	Struggling  bool       `json:"struggling" bson:"struggling"`
	CompletedAt *time.Time `json:"completed_at" bson:"completed_at,omitempty"`
	AssignedBy  string     `json:"assigned_by,omitempty" bson:"assigned_by,omitempty"`
	GroupID     string     `json:"group_id,omitempty" bson:"group_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// NeedsHelp reports whether the student flagged an item they have not completed yet.
func (ai *ActionItem) NeedsHelp() bool {
	return ai.Struggling && !ai.Completed
}

func (ai ActionItem) MarshalJSON() ([]byte, error) {
	type alias ActionItem
	return json.Marshal(struct {
		alias
		NeedsHelp bool `json:"needs_help"`
	}{alias(ai), ai.NeedsHelp()})
}

type NewActionItem struct {
	Text string `json:"text" validate:"required,notblank,max=1000"`
}

func (na *NewActionItem) Validate(validate *validator.Validate) error {
	na.Text = core.CleanString(na.Text)
	return validate.Struct(na)
}

// AssignItems creates the same item for every listed student and every member of GroupID.
type AssignItems struct {
	Text    string   `json:"text" validate:"required,notblank,max=1000"`
	UserIDs []string `json:"user_ids" validate:"required_without=GroupID,dive,objectid"`
	GroupID string   `json:"group_id" validate:"omitempty,objectid"`
}

func (as *AssignItems) Validate(validate *validator.Validate) error {
	as.Text = core.CleanString(as.Text)
	as.GroupID = core.CleanString(as.GroupID)
	return validate.Struct(as)
}

type UpdateActionItem struct {
	Text string `json:"text" validate:"required,notblank,max=1000"`
}

func (ua *UpdateActionItem) Validate(validate *validator.Validate) error {
	ua.Text = core.CleanString(ua.Text)
	return validate.Struct(ua)
}

// SetFlag is the body of the complete and struggling endpoints.
type SetFlag struct {
	Value *bool `json:"value" validate:"required"`
}

type QueryFilter struct {
	UserIDs    []string `query:"user_id"`
	GroupID    string   `query:"group_id"`
	Completed  *bool    `query:"completed"`
	Struggling *bool    `query:"struggling"`
}

var OrderingFields = []string{"created_at", "updated_at", "completed", "text"}

// CountOpen returns the number of incomplete items.
func CountOpen(items []ActionItem) int {
	var n int
	for _, ai := range items {
		if !ai.Completed {
			n++
		}
	}
	return n
}

// CountNeedsHelp returns the number of items for which NeedsHelp holds.
func CountNeedsHelp(items []ActionItem) int {
	var n int
	for i := range items {
		if items[i].NeedsHelp() {
			n++
		}
	}
	return n
}
