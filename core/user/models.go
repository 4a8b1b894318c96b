package user

import (
	"time"

	"github.com/istudy/dashboard/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleAdvisor = "advisor"
	RoleAdmin   = "admin"
)

var (
	AllRoles = []string{RoleStudent, RoleAdvisor, RoleAdmin}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Advisor", Value: RoleAdvisor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	PhotoURL  string    `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Role      string    `json:"role" bson:"role"`
	IsAdmin   bool      `json:"is_admin" bson:"is_admin"`
	AdvisorID string    `json:"advisor_id,omitempty" bson:"advisor_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login" bson:"last_login"` // UTC
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent && !u.IsAdmin
}

func (u *User) IsAdvisor() bool {
	return u.Role == RoleAdvisor
}

// IsAdministrator reports admin rights, from either the stored flag or the admin role.
func (u *User) IsAdministrator() bool {
	return u.IsAdmin || u.Role == RoleAdmin
}

// Advises reports whether u is the advisor of student.
func (u *User) Advises(student User) bool {
	return u.IsAdvisor() && student.AdvisorID != "" && student.AdvisorID == u.ID
}

// CanAccessStudent reports whether u may see and manage records owned by student:
// the student themselves, their advisor, or an admin.
func (u *User) CanAccessStudent(student User) bool {
	return u.ID == student.ID || u.IsAdministrator() || u.Advises(student)
}

// Identity is what the federated sign-in provider asserts about a user.
type Identity struct {
	Subject  string `json:"sub"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	PhotoURL string `json:"picture"`
}

func (id *Identity) Clean() {
	id.Email = core.CleanString(id.Email, true /* lower */)
	id.Name = core.CleanString(id.Name)
	if id.Name == "" {
		id.Name = id.Email
	}
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role, AdvisorID and IsAdmin can only be changed by admins.
type UpdateUser struct {
	Name      *string `json:"name" validate:"omitempty,notblank"`
	PhotoURL  *string `json:"photo_url" validate:"omitempty,url"`
	Role      *string `json:"role" validate:"omitempty,role"`
	AdvisorID *string `json:"advisor_id"`
	IsAdmin   *bool   `json:"is_admin"`
}

// HasAdminFields reports whether uu touches fields reserved to admins.
func (uu *UpdateUser) HasAdminFields() bool {
	return uu.Role != nil || uu.AdvisorID != nil || uu.IsAdmin != nil
}

type QueryFilter struct {
	Search    string   `query:"search"`
	Roles     []string `query:"role"`
	AdvisorID string   `query:"advisor_id"`
	IDs       []string `query:"id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.AdvisorID == "" && qf.IDs == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AdvisorID = core.CleanString(qf.AdvisorID)
}

// Orderings accepted by Repository.QueryUsers.
var OrderingFields = []string{"name", "email", "role", "created_at", "last_login"}
