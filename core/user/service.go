package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
)

var ErrNotFound = core.NewNotFoundError("user")

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

// SignIn finds or creates the user behind a federated identity and records the login.
// The admin flag follows the configured admin email; a stored flag is never revoked here.
func (svc *Service) SignIn(ctx context.Context, id Identity) (User, error) {
	id.Clean()
	now := core.NowFunc().UTC()

	usr, err := svc.repo.GetUserByEmail(ctx, id.Email)
	if err != nil {
		if !core.IsNotFound(err) {
			return User{}, errors.Wrap(err, "finding user by email")
		}
		isAdmin := svc.conf.IsAdminEmail(id.Email)
		role := RoleStudent
		if isAdmin {
			role = RoleAdmin
		}
		usr = User{
			ID:        uuid.NewString(),
			Name:      id.Name,
			Email:     id.Email,
			PhotoURL:  id.PhotoURL,
			Role:      role,
			IsAdmin:   isAdmin,
			CreatedAt: now,
			UpdatedAt: now,
			LastLogin: now,
		}
		usr, err = svc.repo.CreateUser(ctx, usr)
		return usr, errors.Wrap(err, "creating user")
	}

	if svc.conf.IsAdminEmail(usr.Email) {
		usr.IsAdmin = true
	}
	if usr.PhotoURL == "" {
		usr.PhotoURL = id.PhotoURL
	}
	usr.LastLogin = now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating last login")
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, core.AllowedOrderings(ordering, OrderingFields...))
}

// Students returns the students advised by advisorID, or every student when advisorID is empty.
// Users holding admin rights are never students.
func (svc *Service) Students(ctx context.Context, advisorID string) ([]User, error) {
	filter := &QueryFilter{Roles: []string{RoleStudent}, AdvisorID: advisorID}
	users, err := svc.repo.QueryUsers(ctx, filter, []core.DBOrdering{{Field: "name", Ascending: true}})
	if err != nil {
		return nil, err
	}
	students := make([]User, 0, len(users))
	for _, u := range users {
		if u.IsStudent() {
			students = append(students, u)
		}
	}
	return students, nil
}

func (svc *Service) Advisors(ctx context.Context) ([]User, error) {
	filter := &QueryFilter{Roles: []string{RoleAdvisor}}
	return svc.repo.QueryUsers(ctx, filter, []core.DBOrdering{{Field: "name", Ascending: true}})
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update applies uu to the user with id. Callers enforce who may set admin-only fields.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if uu.Name != nil {
		usr.Name = core.CleanString(*uu.Name)
	}
	if uu.PhotoURL != nil {
		usr.PhotoURL = core.CleanString(*uu.PhotoURL)
	}
	if uu.Role != nil {
		usr.Role = *uu.Role
		if usr.Role != RoleStudent {
			usr.AdvisorID = ""
		}
	}
	if uu.AdvisorID != nil {
		advisorID := core.CleanString(*uu.AdvisorID)
		if advisorID != "" && usr.Role != RoleStudent {
			return User{}, core.NewValidationError(nil, core.FieldError{Field: "advisor_id", Error: "only students have an advisor"})
		}
		if advisorID != "" {
			advisor, err := svc.repo.GetUserByID(ctx, advisorID)
			if err != nil {
				if core.IsNotFound(err) {
					return User{}, core.NewValidationError(nil, core.FieldError{Field: "advisor_id", Error: "advisor not found"})
				}
				return User{}, errors.Wrap(err, "finding advisor")
			}
			if !advisor.IsAdvisor() {
				return User{}, core.NewValidationError(nil, core.FieldError{Field: "advisor_id", Error: "user is not an advisor"})
			}
		}
		usr.AdvisorID = advisorID
	}
	if uu.IsAdmin != nil {
		usr.IsAdmin = *uu.IsAdmin || svc.conf.IsAdminEmail(usr.Email)
	}
	usr.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Promote grants admin rights to the user with email.
func (svc *Service) Promote(ctx context.Context, email string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	usr.IsAdmin = true
	usr.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
