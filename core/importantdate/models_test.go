package importantdate

import (
	"testing"

	"github.com/istudy/dashboard/core/user"
)

func TestVisibleTo(t *testing.T) {
	admin := user.User{ID: "admin", Role: user.RoleAdmin}
	advisor := user.User{ID: "adv1", Role: user.RoleAdvisor}
	otherAdvisor := user.User{ID: "adv2", Role: user.RoleAdvisor}
	student := user.User{ID: "stu1", Role: user.RoleStudent, AdvisorID: "adv1"}
	otherStudent := user.User{ID: "stu2", Role: user.RoleStudent, AdvisorID: "adv2"}
	orphan := user.User{ID: "stu3", Role: user.RoleStudent}

	global := &ImportantDate{Scope: ScopeAdmin}
	advisorDate := &ImportantDate{Scope: ScopeAdvisor, AdvisorID: "adv1"}
	studentDate := &ImportantDate{Scope: ScopeStudent, StudentID: "stu1"}

	tests := []struct {
		name   string
		date   *ImportantDate
		viewer user.User
		want   bool
	}{
		{name: "admin sees global", date: global, viewer: admin, want: true},
		{name: "admin sees advisor date", date: advisorDate, viewer: admin, want: true},
		{name: "admin sees student date", date: studentDate, viewer: admin, want: true},
		{name: "advisor sees global", date: global, viewer: advisor, want: true},
		{name: "advisor sees own", date: advisorDate, viewer: advisor, want: true},
		{name: "advisor does not see other advisor's", date: advisorDate, viewer: otherAdvisor, want: false},
		{name: "advisor does not see student date", date: studentDate, viewer: advisor, want: false},
		{name: "student sees global", date: global, viewer: student, want: true},
		{name: "student sees their advisor's", date: advisorDate, viewer: student, want: true},
		{name: "student sees own", date: studentDate, viewer: student, want: true},
		{name: "student does not see other advisor's", date: advisorDate, viewer: otherStudent, want: false},
		{name: "student does not see other student's", date: studentDate, viewer: otherStudent, want: false},
		{name: "student without advisor", date: advisorDate, viewer: orphan, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibleTo(tt.date, tt.viewer); got != tt.want {
				t.Errorf("VisibleTo() = %v, want %v", got, tt.want)
			}

			// the query filter must agree with VisibleTo
			var qf QueryFilter
			qf.ForViewer(tt.viewer)
			if got := qf.Matches(tt.date); got != tt.want {
				t.Errorf("QueryFilter.Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
