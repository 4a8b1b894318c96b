package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istudy/dashboard/core/group"
	"github.com/istudy/dashboard/tests"
)

func Test_groupApi_query(t *testing.T) {
	reset(t)
	f := createUsers(t)

	robotics := testutil.CreateGroup(t, repos.Groups, f.advisor.ID, "Robotics", f.alice.ID, f.bob.ID)
	compilers := testutil.CreateGroup(t, repos.Groups, f.advisor.ID, "Compilers", f.bob.ID)
	poetry := testutil.CreateGroup(t, repos.Groups, f.otherAdvisor.ID, "Poetry", f.carol.ID)

	list := func(gs ...group.ProjectGroup) []byte { return marchallList(t, gs) }

	tests := []httpTest{
		{name: "Student sees own groups", path: "/v1/groups?ordering=name", token: getToken(t, f.bob), wantCode: http.StatusOK, wantData: list(compilers, robotics)},
		{name: "Student cannot peek", path: "/v1/groups?member_id=" + f.carol.ID, token: getToken(t, f.alice), wantCode: http.StatusOK, wantData: list(robotics)},
		{name: "Advisor sees led groups", path: "/v1/groups?ordering=name&advisor_id=" + f.otherAdvisor.ID, token: getToken(t, f.advisor), wantCode: http.StatusOK, wantData: list(compilers, robotics)},
		{name: "Admin filters by member", path: "/v1/groups?member_id=" + f.carol.ID, token: getToken(t, f.admin), wantCode: http.StatusOK, wantData: list(poetry)},
		{name: "Member reads", path: "/v1/groups/" + robotics.ID, token: getToken(t, f.alice), wantCode: http.StatusOK, wantData: marchallObj(t, robotics)},
		{name: "Hidden from non-members", path: "/v1/groups/" + compilers.ID, token: getToken(t, f.alice), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Hidden from other advisors", path: "/v1/groups/" + poetry.ID, token: getToken(t, f.advisor), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	runHTTPTests(t, tests)
}

func Test_groupApi_create(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{
			name: "Students cannot create", method: http.MethodPost, path: "/v1/groups", token: getToken(t, f.alice),
			body: []byte(`{"name":"Study buddies"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Name required", method: http.MethodPost, path: "/v1/groups", token: getToken(t, f.advisor),
			body: []byte(`{"name":""}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"this field is required"}`),
		},
		{
			name: "Member must be advised", method: http.MethodPost, path: "/v1/groups", token: getToken(t, f.advisor),
			body:     []byte(`{"name":"Robotics","member_ids":["` + f.carol.ID + `"]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"member_ids":"unknown student ` + f.carol.ID + `"}`),
		},
		{
			name: "Admin names an unknown advisor", method: http.MethodPost, path: "/v1/groups?advisor_id=" + f.alice.ID, token: getToken(t, f.admin),
			body: []byte(`{"name":"Robotics"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"advisor_id":"unknown advisor"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("advisor creates", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/groups", getToken(t, f.advisor), []byte(`{"name":" Robotics ","member_ids":["`+f.alice.ID+`","`+f.alice.ID+`","`+f.bob.ID+`"]}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got group.ProjectGroup
		decode(t, rec, &got)
		assert.Equal(t, "Robotics", got.Name)
		assert.Equal(t, f.advisor.ID, got.AdvisorID)
		assert.Equal(t, []string{f.alice.ID, f.bob.ID}, got.MemberIDs)
	})

	t.Run("admin creates for an advisor", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/groups?advisor_id="+f.otherAdvisor.ID, getToken(t, f.admin), []byte(`{"name":"Poetry","member_ids":["`+f.carol.ID+`"]}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got group.ProjectGroup
		decode(t, rec, &got)
		assert.Equal(t, f.otherAdvisor.ID, got.AdvisorID)
	})
}

func Test_groupApi_members(t *testing.T) {
	reset(t)
	f := createUsers(t)

	grp := testutil.CreateGroup(t, repos.Groups, f.advisor.ID, "Robotics", f.alice.ID)
	path := "/v1/groups/" + grp.ID

	tests := []httpTest{
		{name: "Members cannot manage", method: http.MethodPost, path: path + "/members", token: getToken(t, f.alice), body: []byte(`{"user_ids":["` + f.bob.ID + `"]}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Nobody to add", method: http.MethodPost, path: path + "/members", token: getToken(t, f.advisor), body: []byte(`{"user_ids":[]}`), wantCode: http.StatusBadRequest},
		{
			name: "Unknown student", method: http.MethodPost, path: path + "/members", token: getToken(t, f.advisor), body: []byte(`{"user_ids":["` + f.carol.ID + `"]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"member_ids":"unknown student ` + f.carol.ID + `"}`),
		},
	}
	runHTTPTests(t, tests)

	rec := do(http.MethodPost, path+"/members", getToken(t, f.advisor), []byte(`{"user_ids":["`+f.bob.ID+`","`+f.alice.ID+`"]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got group.ProjectGroup
	decode(t, rec, &got)
	assert.Equal(t, []string{f.alice.ID, f.bob.ID}, got.MemberIDs)

	// bob now sees the group
	rec = do(http.MethodGet, path, getToken(t, f.bob))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodDelete, path+"/members/"+f.alice.ID, getToken(t, f.advisor))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &got)
	assert.Equal(t, []string{f.bob.ID}, got.MemberIDs)

	rec = do(http.MethodGet, path, getToken(t, f.alice))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodPut, path, getToken(t, f.advisor), []byte(`{"description":"Build a rover"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &got)
	assert.Equal(t, "Build a rover", got.Description)

	rec = do(http.MethodDelete, path, getToken(t, f.bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(http.MethodDelete, path, getToken(t, f.advisor))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
