package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/tests"
)

func Test_reflectionApi_query(t *testing.T) {
	reset(t)
	f := createUsers(t)

	now := time.Now()
	pre := testutil.CreateReflection(t, repos.Reflections, f.alice.ID, reflection.TypePreMeeting, "Read two papers", now.AddDate(0, 0, -3))
	post := testutil.CreateReflection(t, repos.Reflections, f.alice.ID, reflection.TypePostMeeting, "Narrowed the topic", now.AddDate(0, 0, -1))
	bobs := testutil.CreateReflection(t, repos.Reflections, f.bob.ID, reflection.TypePreMeeting, "Set up the repo", now)

	tests := []httpTest{
		{
			name: "Own, newest first", path: "/v1/reflections", token: getToken(t, f.alice),
			wantCode: http.StatusOK, wantData: marchallList(t, []reflection.Reflection{post, pre}),
		},
		{
			name: "By type", path: "/v1/reflections?type=pre-meeting", token: getToken(t, f.alice),
			wantCode: http.StatusOK, wantData: marchallList(t, []reflection.Reflection{pre}),
		},
		{
			name: "Oldest first", path: "/v1/reflections?ordering=created_at", token: getToken(t, f.alice),
			wantCode: http.StatusOK, wantData: marchallList(t, []reflection.Reflection{pre, post}),
		},
		{
			name: "Advisor reads advised students", path: "/v1/reflections?user_id=" + f.bob.ID, token: getToken(t, f.advisor),
			wantCode: http.StatusOK, wantData: marchallList(t, []reflection.Reflection{bobs}),
		},
		{
			name: "Other advisor sees nothing", path: "/v1/reflections?user_id=" + f.bob.ID, token: getToken(t, f.otherAdvisor),
			wantCode: http.StatusOK, wantData: marchallList(t, nil),
		},
		{name: "Detail hidden from other students", path: "/v1/reflections/" + pre.ID, token: getToken(t, f.bob), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Detail for the advisor", path: "/v1/reflections/" + pre.ID, token: getToken(t, f.advisor), wantCode: http.StatusOK, wantData: marchallObj(t, pre)},
	}
	runHTTPTests(t, tests)
}

func Test_reflectionApi_create(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{
			name: "Advisors do not journal", method: http.MethodPost, path: "/v1/reflections", token: getToken(t, f.advisor),
			body: []byte(`{"type":"pre-meeting","progress":"x"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Type required", method: http.MethodPost, path: "/v1/reflections", token: getToken(t, f.alice),
			body: []byte(`{"progress":"x"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"type":"this field is required"}`),
		},
		{
			name: "Empty reflection", method: http.MethodPost, path: "/v1/reflections", token: getToken(t, f.alice),
			body:     []byte(`{"type":"post-meeting","progress":"   "}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"content":"at least one reflection field must be filled in"}`),
		},
	}
	runHTTPTests(t, tests)

	rec := do(http.MethodPost, "/v1/reflections", getToken(t, f.alice), []byte(`{"type":"Post-Meeting","takeaways":" Scope down "}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got reflection.Reflection
	decode(t, rec, &got)
	assert.Equal(t, f.alice.ID, got.UserID)
	assert.Equal(t, reflection.TypePostMeeting, got.Type)
	assert.Equal(t, "Scope down", got.Takeaways)
}

func Test_reflectionApi_destroy(t *testing.T) {
	reset(t)
	f := createUsers(t)

	r := testutil.CreateReflection(t, repos.Reflections, f.alice.ID, reflection.TypePreMeeting, "Read two papers")

	tests := []httpTest{
		{name: "Advisor cannot delete", method: http.MethodDelete, path: "/v1/reflections/" + r.ID, token: getToken(t, f.advisor), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Owner deletes", method: http.MethodDelete, path: "/v1/reflections/" + r.ID, token: getToken(t, f.alice), wantCode: http.StatusNoContent},
		{name: "Gone", path: "/v1/reflections/" + r.ID, token: getToken(t, f.alice), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	runHTTPTests(t, tests)
}
