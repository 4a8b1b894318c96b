package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core/user"
)

func adminMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, func(usr *user.User) bool { return usr.IsAdministrator() })
}

// staffMiddleware lets advisors and admins through.
func staffMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, func(usr *user.User) bool { return usr.IsAdvisor() || usr.IsAdministrator() })
}

func roleMiddleware(svc *user.Service, allowed func(usr *user.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if allowed(&usr) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
