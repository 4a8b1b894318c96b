package echoapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/dashboard"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/services/metrics"
)

// base is embedded by every resource API.
type base struct {
	conf     *core.Config
	users    *user.Service
	validate *validator.Validate
	dash     *dashboard.Service
}

// changed records a write on resource and drops the cached admin overview.
func (b *base) changed(ctx context.Context, resource, operation string) {
	metrics.TrackOperation(resource, operation)
	if b.dash != nil {
		b.dash.InvalidateOverview(ctx)
	}
}

func (b *base) ctxUser(ctx echo.Context) (user.User, error) {
	usr, err := getContextUser(ctx, b.users)
	return usr, errors.Wrap(err, "getting context user")
}

// checkAccess fails with a 404 unless viewer may manage the records of ownerID.
// Records of hidden students read as missing.
func (b *base) checkAccess(ctx echo.Context, viewer user.User, ownerID string) error {
	if viewer.ID == ownerID || viewer.IsAdministrator() {
		return nil
	}
	if !viewer.IsAdvisor() || ownerID == "" {
		return errHttpNotFound
	}
	owner, err := b.users.GetByID(ctx.Request().Context(), ownerID)
	if err != nil {
		if core.IsNotFound(err) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding owner")
	}
	if viewer.Advises(owner) {
		return nil
	}
	return errHttpNotFound
}

// checkStudent is checkAccess for a target that must be an existing student.
func (b *base) checkStudent(ctx echo.Context, viewer user.User, studentID string) (user.User, error) {
	if err := b.checkAccess(ctx, viewer, studentID); err != nil {
		return user.User{}, err
	}
	student, err := b.users.GetByID(ctx.Request().Context(), studentID)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, errors.Wrap(err, "finding student")
	}
	if !student.IsStudent() {
		return user.User{}, errHttpNotFound
	}
	return student, nil
}

// scopeUserIDs narrows requested to the users whose records viewer may list.
// An empty requested means every visible user. ok is false when nothing is visible,
// in which case the caller answers with an empty list.
func (b *base) scopeUserIDs(ctx echo.Context, viewer user.User, requested []string) (ids []string, ok bool, err error) {
	switch {
	case viewer.IsAdministrator():
		return requested, true, nil
	case viewer.IsAdvisor():
		students, err := b.users.Students(ctx.Request().Context(), viewer.ID)
		if err != nil {
			return nil, false, errors.Wrap(err, "listing advised students")
		}
		allowed := make([]string, 0, len(students)+1)
		allowed = append(allowed, viewer.ID)
		for _, s := range students {
			allowed = append(allowed, s.ID)
		}
		if len(requested) == 0 {
			return allowed, true, nil
		}
		ids = intersect(requested, allowed)
		return ids, len(ids) > 0, nil
	default:
		if len(requested) == 0 || contains(requested, viewer.ID) {
			return []string{viewer.ID}, true, nil
		}
		return nil, false, nil
	}
}

// studentIDs returns the students viewer may manage; nil means all of them.
func (b *base) studentIDs(ctx echo.Context, viewer user.User) ([]string, error) {
	if viewer.IsAdministrator() {
		return nil, nil
	}
	if !viewer.IsAdvisor() {
		return []string{viewer.ID}, nil
	}
	students, err := b.users.Students(ctx.Request().Context(), viewer.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing advised students")
	}
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	out := make([]string, 0, len(a))
	for _, id := range a {
		if set[id] {
			out = append(out, id)
			delete(set, id)
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

const contextObjectKey = "object"

// objectMiddleware loads the record named by the :id param and hides it unless the
// context user may access the records of its owner.
func objectMiddleware[T any](b *base, get func(ctx context.Context, id string) (T, error), owner func(*T) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := b.ctxUser(ctx)
			if err != nil {
				return err
			}
			obj, err := get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if core.IsNotFound(err) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding object by ID")
			}
			if err = b.checkAccess(ctx, ctxUsr, owner(&obj)); err != nil {
				return err
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}

// ownerMiddleware restricts changes to the record owner and admins. It runs after
// objectMiddleware.
func ownerMiddleware[T any](b *base, owner func(*T) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			obj, err := getObject[T](ctx)
			if err != nil {
				return err
			}
			ctxUsr, err := b.ctxUser(ctx)
			if err != nil {
				return err
			}
			if owner(&obj) != ctxUsr.ID && !ctxUsr.IsAdministrator() {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func getObject[T any](ctx echo.Context) (T, error) {
	obj, ok := ctx.Get(contextObjectKey).(T)
	if !ok {
		return obj, errors.New("object not found in echo.Context")
	}
	return obj, nil
}

// ownerFor resolves the owner of a record being created: the user_id query param when
// viewer may manage that user, else viewer.
func (b *base) ownerFor(ctx echo.Context, viewer user.User) (string, error) {
	ownerID := queryString(ctx, "user_id")
	if ownerID == "" || ownerID == viewer.ID {
		return viewer.ID, nil
	}
	if _, err := b.checkStudent(ctx, viewer, ownerID); err != nil {
		return "", err
	}
	return ownerID, nil
}
