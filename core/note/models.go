package note

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

type Note struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Pinned    bool      `json:"pinned" bson:"pinned"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type NewNote struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"max=20000"`
	Pinned  bool   `json:"pinned"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	return validate.Struct(nn)
}

type UpdateNote struct {
	Title   *string `json:"title" validate:"omitempty,notblank,max=200"`
	Content *string `json:"content" validate:"omitempty,max=20000"`
	Pinned  *bool   `json:"pinned"`
}

func (un *UpdateNote) Validate(validate *validator.Validate) error {
	return validate.Struct(un)
}

// QueryFilter.Search does a case-insensitive match on Title or Content.
type QueryFilter struct {
	UserIDs []string `query:"user_id"`
	Pinned  *bool    `query:"pinned"`
	Search  string   `query:"search"`
}

var OrderingFields = []string{"title", "pinned", "created_at", "updated_at"}
