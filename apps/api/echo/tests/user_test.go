package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/tests"
)

type userFixtures struct {
	admin, advisor, otherAdvisor, alice, bob, carol user.User
}

func createUsers(t *testing.T) userFixtures {
	t.Helper()
	var f userFixtures
	f.admin = testutil.CreateUser(t, repos.Users, "Zed Admin", "zed@uni.edu", user.RoleAdmin, "")
	f.advisor = testutil.CreateUser(t, repos.Users, "Grace Advisor", "grace@uni.edu", user.RoleAdvisor, "")
	f.otherAdvisor = testutil.CreateUser(t, repos.Users, "Hopper Advisor", "hopper@uni.edu", user.RoleAdvisor, "")
	f.alice = testutil.CreateUser(t, repos.Users, "Alice", "alice@uni.edu", user.RoleStudent, f.advisor.ID)
	f.bob = testutil.CreateUser(t, repos.Users, "Bob", "bob@uni.edu", user.RoleStudent, f.advisor.ID)
	f.carol = testutil.CreateUser(t, repos.Users, "Carol", "carol@uni.edu", user.RoleStudent, f.otherAdvisor.ID)
	return f
}

func Test_userApi_query(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Students are forbidden", path: "/v1/users", token: getToken(t, f.alice), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "Advisor sees own students", path: "/v1/users?ordering=name", token: getToken(t, f.advisor),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.alice, f.bob}),
		},
		{
			name: "Advisor cannot widen the scope", path: "/v1/users?ordering=name&role=advisor&advisor_id=" + f.otherAdvisor.ID, token: getToken(t, f.advisor),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.alice, f.bob}),
		},
		{
			name: "Admin filters by role", path: "/v1/users?role=advisor&ordering=name", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.advisor, f.otherAdvisor}),
		},
		{
			name: "Admin searches", path: "/v1/users?search=CAROL", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.carol}),
		},
		{
			name: "Admin sorts descending", path: "/v1/users?role=student&ordering=-name", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.carol, f.bob, f.alice}),
		},
		{
			name: "No match", path: "/v1/users?search=nobody", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User(nil)),
		},
	}
	runHTTPTests(t, tests)
}

func Test_userApi_rolesAndAdvisors(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{name: "Roles are admin only", path: "/v1/users/roles", token: getToken(t, f.advisor), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Roles", path: "/v1/users/roles", token: getToken(t, f.admin), wantCode: http.StatusOK, wantData: marchallList(t, user.Roles)},
		{
			name: "Advisors", path: "/v1/users/advisors", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.advisor, f.otherAdvisor}),
		},
	}
	runHTTPTests(t, tests)
}

func Test_userApi_retrieve(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{name: "Unknown user", path: "/v1/users/nope", token: getToken(t, f.admin), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Self", path: "/v1/users/" + f.alice.ID, token: getToken(t, f.alice), wantCode: http.StatusOK, wantData: marchallObj(t, f.alice)},
		{name: "Other student is hidden", path: "/v1/users/" + f.bob.ID, token: getToken(t, f.alice), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Advisor of the student", path: "/v1/users/" + f.bob.ID, token: getToken(t, f.advisor), wantCode: http.StatusOK, wantData: marchallObj(t, f.bob)},
		{name: "Other advisor is hidden", path: "/v1/users/" + f.carol.ID, token: getToken(t, f.advisor), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Admin", path: "/v1/users/" + f.carol.ID, token: getToken(t, f.admin), wantCode: http.StatusOK, wantData: marchallObj(t, f.carol)},
	}
	runHTTPTests(t, tests)
}

func Test_userApi_update(t *testing.T) {
	reset(t)
	f := createUsers(t)

	t.Run("student renames themselves", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.alice.ID, getToken(t, f.alice), []byte(`{"name":"  Alice Liddell "}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, "Alice Liddell", got.Name)
		assert.Equal(t, f.advisor.ID, got.AdvisorID)
	})

	t.Run("student cannot change their role", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.alice.ID, getToken(t, f.alice), []byte(`{"role":"admin"}`))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("advisor cannot edit a student", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.bob.ID, getToken(t, f.advisor), []byte(`{"name":"Robert"}`))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("blank name", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.alice.ID, getToken(t, f.alice), []byte(`{"name":"   "}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin rejects an unknown role", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.bob.ID, getToken(t, f.admin), []byte(`{"role":"dean"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Contains(t, errs, "role")
	})

	t.Run("admin rejects a non-advisor advisor", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.bob.ID, getToken(t, f.admin), []byte(`{"advisor_id":"`+f.carol.ID+`"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"advisor_id":"user is not an advisor"}`, rec.Body.String())
	})

	t.Run("admin reassigns the advisor", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.bob.ID, getToken(t, f.admin), []byte(`{"advisor_id":"`+f.otherAdvisor.ID+`"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// the former advisor lost access
		rec = do(http.MethodGet, "/v1/users/"+f.bob.ID, getToken(t, f.advisor))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = do(http.MethodGet, "/v1/users/"+f.bob.ID, getToken(t, f.otherAdvisor))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("promoting to advisor drops the advisor link", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.carol.ID, getToken(t, f.admin), []byte(`{"role":"advisor"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, user.RoleAdvisor, got.Role)
		assert.Empty(t, got.AdvisorID)
	})

	t.Run("only students get an advisor", func(t *testing.T) {
		rec := do(http.MethodPut, "/v1/users/"+f.otherAdvisor.ID, getToken(t, f.admin), []byte(`{"advisor_id":"`+f.advisor.ID+`"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"advisor_id":"only students have an advisor"}`, rec.Body.String())

		rec = do(http.MethodPut, "/v1/users/"+f.alice.ID, getToken(t, f.admin), []byte(`{"role":"advisor","advisor_id":"`+f.otherAdvisor.ID+`"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(http.MethodGet, "/v1/users/"+f.otherAdvisor.ID, getToken(t, f.admin))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		decode(t, rec, &got)
		assert.Empty(t, got.AdvisorID)

		rec = do(http.MethodPut, "/v1/users/"+f.otherAdvisor.ID, getToken(t, f.admin), []byte(`{"advisor_id":""}`))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_destroy(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{name: "Advisors cannot delete", method: http.MethodDelete, path: "/v1/users/" + f.alice.ID, token: getToken(t, f.advisor), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Admin cannot delete themselves", method: http.MethodDelete, path: "/v1/users/" + f.admin.ID, token: getToken(t, f.admin), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "OK", method: http.MethodDelete, path: "/v1/users/" + f.alice.ID, token: getToken(t, f.admin), wantCode: http.StatusNoContent},
		{name: "Gone", path: "/v1/users/" + f.alice.ID, token: getToken(t, f.admin), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Bulk with self", method: http.MethodDelete, path: "/v1/users?id=" + f.bob.ID + "&id=" + f.admin.ID, token: getToken(t, f.admin), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Bulk", method: http.MethodDelete, path: "/v1/users?id=" + f.bob.ID + "," + f.carol.ID, token: getToken(t, f.admin), wantCode: http.StatusNoContent},
		{
			name: "Only staff left", path: "/v1/users?ordering=name", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallList(t, []user.User{f.advisor, f.otherAdvisor, f.admin}),
		},
	}
	runHTTPTests(t, tests)
}
