package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/istudy/dashboard/apps/api/echo"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/tests"
)

func TestHome(t *testing.T) {
	rec := do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the Independent Study API!", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	_ = do(http.MethodGet, "/", "")
	rec := do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func Test_authApi_me(t *testing.T) {
	reset(t)

	student := testutil.CreateUser(t, repos.Users, "Ada", "ada@uni.edu", user.RoleStudent, "")
	ghost := user.User{ID: "ghost", Name: "Ghost", Email: "ghost@uni.edu", Role: user.RoleStudent}

	expired := GetUserClaims(conf, student)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expiredToken, err := GenerateToken(conf, expired)
	require.NoError(t, err)

	otherConf := *conf
	otherConf.SecretKey = "another-secret"
	forgedToken, err := GenerateToken(&otherConf, GetUserClaims(&otherConf, student))
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Garbage token", path: "/v1/me", token: "garbage", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "Expired token", path: "/v1/me", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "Forged token", path: "/v1/me", token: forgedToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{
			name: "Unknown user", path: "/v1/me", token: getToken(t, ghost), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "OK", path: "/v1/me", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
	}
	runHTTPTests(t, tests)
}

func Test_authApi_signIn(t *testing.T) {
	reset(t)

	existing := testutil.CreateUser(t, repos.Users, "Grace", "grace@uni.edu", user.RoleAdvisor, "")

	t.Run("invalid identity", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/auth/sign-in", "", []byte(`{"email":"not-an-email"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Contains(t, errs, "email")
	})

	t.Run("first sign-in creates a student", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/auth/sign-in", "", []byte(`{"email":" New@Uni.edu ","name":"Newbie"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp TokenResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "new@uni.edu", resp.User.Email)
		assert.Equal(t, user.RoleStudent, resp.User.Role)
		assert.False(t, resp.User.IsAdmin)

		me := do(http.MethodGet, "/v1/me", resp.Token)
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("existing user keeps their role", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/auth/sign-in", "", []byte(`{"email":"grace@uni.edu"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp TokenResponse
		decode(t, rec, &resp)
		assert.Equal(t, existing.ID, resp.User.ID)
		assert.Equal(t, user.RoleAdvisor, resp.User.Role)
	})

	t.Run("configured admin email", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/auth/sign-in", "", []byte(`{"email":"admin@uni.edu","name":"Boss"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp TokenResponse
		decode(t, rec, &resp)
		assert.True(t, resp.User.IsAdmin)
		assert.Equal(t, user.RoleAdmin, resp.User.Role)
	})
}

func Test_authApi_signInUnmountedInProduction(t *testing.T) {
	reset(t)
	admin := testutil.CreateUser(t, repos.Users, "Zed Admin", "admin@uni.edu", user.RoleAdmin, "")

	prod := *conf
	prod.Env = "PROD"
	prod.Debug = true
	prod.TestMode = false
	prodApp := NewServer(&prod, svcLogger, deps)
	defer func() { _ = prodApp.Close() }()

	body := []byte(`{"email":"admin@uni.edu"}`)

	req, rec := newRequest(http.MethodPost, "/v1/auth/sign-in", body)
	prodApp.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"token"`)

	req, rec = newAuthRequest(http.MethodPost, "/v1/auth/sign-in", getToken(t, admin), body)
	prodApp.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_authApi_refresh(t *testing.T) {
	reset(t)

	usr := testutil.CreateUser(t, repos.Users, "Ada", "ada@uni.edu", user.RoleStudent, "")

	rec := do(http.MethodPost, "/v1/auth/token-refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodPost, "/v1/auth/token-refresh", getToken(t, usr))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, usr.ID, resp.User.ID)
}
