package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istudy/dashboard/core/advisortodo"
	"github.com/istudy/dashboard/tests"
)

func Test_advisorTodoApi_query(t *testing.T) {
	reset(t)
	f := createUsers(t)

	day := time.Now().UTC().Truncate(time.Second)
	late := testutil.CreateTodo(t, repos.AdvisorTodos, f.advisor.ID, "Grade proposals", day.AddDate(0, 0, -3), false)
	soon := testutil.CreateTodo(t, repos.AdvisorTodos, f.advisor.ID, "Book the lab", day.AddDate(0, 0, 2), false)
	done := testutil.CreateTodo(t, repos.AdvisorTodos, f.advisor.ID, "Send syllabus", day.AddDate(0, 0, -10), true)
	others := testutil.CreateTodo(t, repos.AdvisorTodos, f.otherAdvisor.ID, "Read poems", day, false)

	items := func(todos ...advisortodo.Todo) []byte {
		return marchallList(t, advisortodo.NewItems(todos, time.Now()))
	}

	tests := []httpTest{
		{name: "Students are forbidden", path: "/v1/advisor-todos", token: getToken(t, f.alice), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Open first, then by due date", path: "/v1/advisor-todos", token: getToken(t, f.advisor), wantCode: http.StatusOK, wantData: items(late, soon, done)},
		{name: "Open only", path: "/v1/advisor-todos?completed=false", token: getToken(t, f.advisor), wantCode: http.StatusOK, wantData: items(late, soon)},
		{name: "Advisor cannot read others", path: "/v1/advisor-todos?advisor_id=" + f.otherAdvisor.ID, token: getToken(t, f.advisor), wantCode: http.StatusOK, wantData: items(late, soon, done)},
		{name: "Admin reads any advisor", path: "/v1/advisor-todos?advisor_id=" + f.otherAdvisor.ID, token: getToken(t, f.admin), wantCode: http.StatusOK, wantData: items(others)},
		{name: "Hidden from other advisors", path: "/v1/advisor-todos/" + late.ID, token: getToken(t, f.otherAdvisor), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	runHTTPTests(t, tests)

	rec := do(http.MethodGet, "/v1/advisor-todos/"+late.ID, getToken(t, f.advisor))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got advisortodo.Item
	decode(t, rec, &got)
	assert.True(t, got.Overdue)
}

func Test_advisorTodoApi_write(t *testing.T) {
	reset(t)
	f := createUsers(t)

	tests := []httpTest{
		{
			name: "Text required", method: http.MethodPost, path: "/v1/advisor-todos", token: getToken(t, f.advisor),
			body: []byte(`{"text":" "}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"text":"this field is required"}`),
		},
		{
			name: "Past due date", method: http.MethodPost, path: "/v1/advisor-todos", token: getToken(t, f.advisor),
			body:     []byte(`{"text":"Late","due_date":"` + time.Now().AddDate(0, 0, -4).Format(time.RFC3339) + `"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"due_date":"date cannot be in the past"}`),
		},
		{
			name: "Student not advised", method: http.MethodPost, path: "/v1/advisor-todos", token: getToken(t, f.advisor),
			body: []byte(`{"text":"Call Carol","student_id":"` + f.carol.ID + `"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"student_id":"unknown student"}`),
		},
	}
	runHTTPTests(t, tests)

	rec := do(http.MethodPost, "/v1/advisor-todos", getToken(t, f.advisor), []byte(`{"text":"Call Alice","student_id":"`+f.alice.ID+`"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var td advisortodo.Item
	decode(t, rec, &td)
	assert.Equal(t, f.advisor.ID, td.AdvisorID)
	assert.Equal(t, f.alice.ID, td.StudentID)
	assert.False(t, td.Overdue)

	rec = do(http.MethodGet, "/v1/advisor-todos?student_id="+f.alice.ID, getToken(t, f.advisor))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []advisortodo.Item
	decode(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, td.ID, listed[0].ID)

	rec = do(http.MethodPut, "/v1/advisor-todos/"+td.ID, getToken(t, f.advisor), []byte(`{"student_id":"`+f.carol.ID+`"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPut, "/v1/advisor-todos/"+td.ID, getToken(t, f.advisor), []byte(`{"completed":true}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &td)
	assert.True(t, td.Completed)

	rec = do(http.MethodDelete, "/v1/advisor-todos/"+td.ID, getToken(t, f.otherAdvisor))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(http.MethodDelete, "/v1/advisor-todos/"+td.ID, getToken(t, f.advisor))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
