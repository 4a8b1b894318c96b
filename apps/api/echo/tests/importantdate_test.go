package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/tests"
)

func Test_importantDateApi_visibility(t *testing.T) {
	reset(t)
	f := createUsers(t)

	day := time.Now().UTC().Truncate(24 * time.Hour)
	global := testutil.CreateImportantDate(t, repos.ImportantDates, f.admin, "Spring break", day.AddDate(0, 0, 10), "")
	advisors := testutil.CreateImportantDate(t, repos.ImportantDates, f.advisor, "Lab demo day", day.AddDate(0, 0, 5), "")
	others := testutil.CreateImportantDate(t, repos.ImportantDates, f.otherAdvisor, "Poetry night", day.AddDate(0, 0, 6), "")
	alices := testutil.CreateImportantDate(t, repos.ImportantDates, f.alice, "Thesis due", day.AddDate(0, 0, 20), "")
	carols := testutil.CreateImportantDate(t, repos.ImportantDates, f.carol, "Visa renewal", day.AddDate(0, 0, 1), "")

	list := func(ds ...importantdate.ImportantDate) []byte { return marchallList(t, ds) }

	tests := []httpTest{
		{name: "Auth required", path: "/v1/important-dates", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Student sees global, advisor's and own", path: "/v1/important-dates", token: getToken(t, f.alice),
			wantCode: http.StatusOK, wantData: list(advisors, global, alices),
		},
		{
			name: "Advisor sees global and own", path: "/v1/important-dates", token: getToken(t, f.advisor),
			wantCode: http.StatusOK, wantData: list(advisors, global),
		},
		{
			name: "Admin sees everything", path: "/v1/important-dates", token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: list(carols, advisors, others, global, alices),
		},
		{
			name: "Date window", path: "/v1/important-dates?from=" + day.AddDate(0, 0, 6).Format("2006-01-02") + "&to=" + day.AddDate(0, 0, 15).Format("2006-01-02"), token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: list(global),
		},
		{
			name: "By title", path: "/v1/important-dates?ordering=title", token: getToken(t, f.advisor),
			wantCode: http.StatusOK, wantData: list(advisors, global),
		},
		{name: "Hidden from other advisors", path: "/v1/important-dates/" + advisors.ID, token: getToken(t, f.otherAdvisor), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Hidden from other students", path: "/v1/important-dates/" + alices.ID, token: getToken(t, f.bob), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Student reads the advisor's date", path: "/v1/important-dates/" + advisors.ID, token: getToken(t, f.bob), wantCode: http.StatusOK, wantData: marchallObj(t, advisors)},
	}
	runHTTPTests(t, tests)
}

func Test_importantDateApi_write(t *testing.T) {
	reset(t)
	f := createUsers(t)

	when := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Second)

	t.Run("scope follows the creator", func(t *testing.T) {
		body := []byte(`{"title":" Committee meeting ","date":"` + when.Format(time.RFC3339) + `"}`)
		for _, tc := range []struct {
			name      string
			token     string
			scope     string
			advisorID string
			studentID string
		}{
			{"admin", getToken(t, f.admin), importantdate.ScopeAdmin, "", ""},
			{"advisor", getToken(t, f.advisor), importantdate.ScopeAdvisor, f.advisor.ID, ""},
			{"student", getToken(t, f.alice), importantdate.ScopeStudent, "", f.alice.ID},
		} {
			rec := do(http.MethodPost, "/v1/important-dates", tc.token, body)
			require.Equal(t, http.StatusCreated, rec.Code, "%s: %s", tc.name, rec.Body.String())
			var got importantdate.ImportantDate
			decode(t, rec, &got)
			assert.Equal(t, "Committee meeting", got.Title, tc.name)
			assert.Equal(t, tc.scope, got.Scope, tc.name)
			assert.Equal(t, tc.advisorID, got.AdvisorID, tc.name)
			assert.Equal(t, tc.studentID, got.StudentID, tc.name)
		}
	})

	t.Run("date required", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/important-dates", getToken(t, f.alice), []byte(`{"title":"Nothing"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"date":"this field is required"}`, rec.Body.String())
	})

	d := testutil.CreateImportantDate(t, repos.ImportantDates, f.advisor, "Lab demo day", when, "")

	tests := []httpTest{
		{name: "Students cannot edit the advisor's date", method: http.MethodPut, path: "/v1/important-dates/" + d.ID, token: getToken(t, f.alice), body: []byte(`{"title":"Mine"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Blank title", method: http.MethodPut, path: "/v1/important-dates/" + d.ID, token: getToken(t, f.advisor), body: []byte(`{"title":" "}`), wantCode: http.StatusBadRequest},
		{name: "Creator edits", method: http.MethodPut, path: "/v1/important-dates/" + d.ID, token: getToken(t, f.advisor), body: []byte(`{"description":"Room 204"}`), wantCode: http.StatusOK},
		{name: "Students cannot delete", method: http.MethodDelete, path: "/v1/important-dates/" + d.ID, token: getToken(t, f.bob), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Admin deletes", method: http.MethodDelete, path: "/v1/important-dates/" + d.ID, token: getToken(t, f.admin), wantCode: http.StatusNoContent},
		{name: "Gone", path: "/v1/important-dates/" + d.ID, token: getToken(t, f.admin), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	runHTTPTests(t, tests)
}
