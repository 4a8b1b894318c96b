package group

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

// ProjectGroup is a team of students managed by one advisor.
type ProjectGroup struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	AdvisorID   string    `json:"advisor_id" bson:"advisor_id"`
	MemberIDs   []string  `json:"member_ids" bson:"member_ids"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (g *ProjectGroup) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type NewGroup struct {
	Name        string   `json:"name" validate:"required,notblank,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	MemberIDs   []string `json:"member_ids" validate:"dive,objectid"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return validate.Struct(ng)
}

type UpdateGroup struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	return validate.Struct(ug)
}

// Members is the body of the add-members endpoint.
type Members struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,objectid"`
}

func (m *Members) Validate(validate *validator.Validate) error {
	return validate.Struct(m)
}

type QueryFilter struct {
	AdvisorID string `query:"advisor_id"`
	MemberID  string `query:"member_id"`
}

var OrderingFields = []string{"name", "created_at"}
