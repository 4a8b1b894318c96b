package advisortodo

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/dates"
)

// Todo is an entry of an advisor's own to-do list, optionally about one student.
type Todo struct {
	ID        string    `json:"id" bson:"_id"`
	AdvisorID string    `json:"advisor_id" bson:"advisor_id"`
	Text      string    `json:"text" bson:"text"`
	DueDate   time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Completed bool      `json:"completed" bson:"completed"`
	StudentID string    `json:"student_id,omitempty" bson:"student_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsOverdue follows the goal rule: a due date on an earlier calendar day and not completed.
func IsOverdue(td *Todo, now time.Time) bool {
	if td == nil || td.Completed {
		return false
	}
	return dates.IsPast(td.DueDate, now)
}

type Item struct {
	Todo
	Overdue bool `json:"overdue"`
}

func NewItems(todos []Todo, now time.Time) []Item {
	items := make([]Item, 0, len(todos))
	for i := range todos {
		items = append(items, Item{Todo: todos[i], Overdue: IsOverdue(&todos[i], now)})
	}
	return items
}

type NewTodo struct {
	Text      string    `json:"text" validate:"required,notblank,max=1000"`
	DueDate   time.Time `json:"due_date" validate:"targetdate"`
	StudentID string    `json:"student_id" validate:"omitempty,objectid"`
}

func (nt *NewTodo) Validate(validate *validator.Validate) error {
	nt.Text = core.CleanString(nt.Text)
	nt.StudentID = core.CleanString(nt.StudentID)
	return validate.Struct(nt)
}

type UpdateTodo struct {
	Text      *string    `json:"text" validate:"omitempty,notblank,max=1000"`
	DueDate   *time.Time `json:"due_date" validate:"omitempty,targetdate"`
	Completed *bool      `json:"completed"`
	StudentID *string    `json:"student_id" validate:"omitempty,objectid"`
}

func (ut *UpdateTodo) Validate(validate *validator.Validate) error {
	return validate.Struct(ut)
}

type QueryFilter struct {
	AdvisorID string `query:"advisor_id"`
	StudentID string `query:"student_id"`
	Completed *bool  `query:"completed"`
}

var OrderingFields = []string{"due_date", "created_at", "completed"}
