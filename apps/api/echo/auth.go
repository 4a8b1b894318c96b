package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/services/metrics"
)

const (
	contextClaimsKey = "claims"
	contextUserKey   = "user"
	bearerPrefix     = "Bearer "
	signingMethod    = "HS256"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(conf *core.Config, usr user.User) *Claims {
	now := core.NowFunc()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.Server.JWTIssuer,
			Subject:   usr.ID,
			Audience:  jwt.ClaimStrings{conf.AppName},
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:    usr.Name,
		Email:   usr.Email,
		Role:    usr.Role,
		IsAdmin: usr.IsAdministrator(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(signingMethod), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// jwtMiddleware authenticates requests carrying a bearer token signed with the secret key.
func jwtMiddleware(conf *core.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithIssuer(conf.Server.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return core.NowFunc() }),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, bearerPrefix) || len(auth) == len(bearerPrefix) {
				return errMissingToken
			}

			claims := new(Claims)
			token, err := parser.ParseWithClaims(auth[len(bearerPrefix):], claims, keyFunc)
			if err != nil || !token.Valid {
				return errInvalidToken
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}

// getContextUser loads the authenticated user, so role changes apply without a new token.
func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type (
	authApi struct {
		base
	}

	TokenResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, b base) {
	api := authApi{base: b}

	// Production tokens come from the federated sign-in front; this exchange trusts the
	// asserted identity and is only mounted outside production.
	if b.conf.AllowsIdentitySignIn() {
		g.POST("/auth/sign-in", api.signIn)
	}
	g.GET("/me", api.me, jwt)
	g.POST("/auth/token-refresh", api.refresh, jwt)
}

func (api *authApi) signIn(ctx echo.Context) error {
	var data user.Identity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Identity")
	}
	data.Clean()
	if err := api.validate.Struct(&data); err != nil {
		metrics.TrackSignIn("invalid")
		return err
	}

	usr, err := api.users.SignIn(ctx.Request().Context(), data)
	if err != nil {
		metrics.TrackSignIn("error")
		return errors.Wrap(err, "signing in")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	metrics.TrackSignIn("success")
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token, User: usr})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

// refresh issues a new token carrying the user's current role.
func (api *authApi) refresh(ctx echo.Context) error {
	usr, err := api.ctxUser(ctx)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token, User: usr})
}
