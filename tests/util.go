// Package testutil holds fixtures shared by the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/advisortodo"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/group"
	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/note"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
)

// Config returns a TEST configuration that does not depend on the environment.
func Config() *core.Config {
	return &core.Config{
		AppName:         "Independent Study",
		Build:           "test",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret",
		AdminEmail:      "admin@uni.edu",
		Timezone:        "America/Los_Angeles",
		FrontendBaseURL: "http://localhost:3000",
		Server: core.ServerConfig{
			Host:               "localhost",
			JWTIssuer:          "istudy",
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
		},
		Database:  core.DatabaseConfig{Engine: "inmem"},
		Redis:     core.RedisConfig{OverviewTTL: time.Minute},
		Attention: core.AttentionConfig{ReflectionStaleDays: 14, HighPriorityReasons: 2, MissedMeetingsLimit: 2},
		Meeting:   core.MeetingConfig{MissedGrace: 24 * time.Hour},
	}
}

func stamp(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC()
	}
	return time.Now().UTC()
}

func CreateUser(t *testing.T, repo user.Repository, name, email, role, advisorID string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := stamp(createdAt)
	usr, err := repo.CreateUser(context.Background(), user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		IsAdmin:   role == user.RoleAdmin,
		AdvisorID: advisorID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
		LastLogin: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateGoal(t *testing.T, repo goal.Repository, userID, title, status string, target time.Time, createdAt ...time.Time) goal.Goal {
	t.Helper()
	tstamp := stamp(createdAt)
	g, err := repo.CreateGoal(context.Background(), goal.Goal{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		Category:   goal.CategoryAcademic,
		TargetDate: target,
		Status:     status,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateGoal() failed: %v", err)
	}
	return g
}

func CreateActionItem(t *testing.T, repo actionitem.Repository, userID, text string, completed, struggling bool, createdAt ...time.Time) actionitem.ActionItem {
	t.Helper()
	tstamp := stamp(createdAt)
	ai := actionitem.ActionItem{
		ID:         uuid.NewString(),
		UserID:     userID,
		Text:       text,
		Completed:  completed,
		Struggling: struggling,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if completed {
		ai.CompletedAt = &tstamp
	}
	items, err := repo.CreateActionItems(context.Background(), ai)
	if err != nil {
		t.Fatalf("CreateActionItem() failed: %v", err)
	}
	return items[0]
}

func CreateMeeting(t *testing.T, repo meeting.Repository, studentID, advisorID, status string, scheduled time.Time) meeting.Meeting {
	t.Helper()
	now := time.Now().UTC()
	m, err := repo.CreateMeeting(context.Background(), meeting.Meeting{
		ID:              uuid.NewString(),
		StudentID:       studentID,
		AdvisorID:       advisorID,
		Title:           "Check-in",
		ScheduledDate:   scheduled,
		DurationMinutes: meeting.DefaultDurationMinutes,
		Status:          status,
		Source:          meeting.SourceManual,
		CreatedBy:       advisorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateMeeting() failed: %v", err)
	}
	return m
}

func CreateReflection(t *testing.T, repo reflection.Repository, userID, typ, progress string, createdAt ...time.Time) reflection.Reflection {
	t.Helper()
	r, err := repo.CreateReflection(context.Background(), reflection.Reflection{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Progress:  progress,
		CreatedAt: stamp(createdAt),
	})
	if err != nil {
		t.Fatalf("CreateReflection() failed: %v", err)
	}
	return r
}

// CreateImportantDate stores a date owned by creator with the scope creator's role implies.
func CreateImportantDate(t *testing.T, repo importantdate.Repository, creator user.User, title string, date time.Time, studentID string) importantdate.ImportantDate {
	t.Helper()
	now := time.Now().UTC()
	d := importantdate.ImportantDate{
		ID:        uuid.NewString(),
		Title:     title,
		Date:      date,
		CreatedBy: creator.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch {
	case creator.IsAdministrator():
		d.Scope = importantdate.ScopeAdmin
	case creator.IsAdvisor():
		d.Scope, d.AdvisorID, d.StudentID = importantdate.ScopeAdvisor, creator.ID, studentID
	default:
		d.Scope, d.StudentID = importantdate.ScopeStudent, creator.ID
	}
	d, err := repo.CreateImportantDate(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateImportantDate() failed: %v", err)
	}
	return d
}

func CreateGroup(t *testing.T, repo group.Repository, advisorID, name string, memberIDs ...string) group.ProjectGroup {
	t.Helper()
	now := time.Now().UTC()
	g, err := repo.CreateGroup(context.Background(), group.ProjectGroup{
		ID:        uuid.NewString(),
		Name:      name,
		AdvisorID: advisorID,
		MemberIDs: memberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return g
}

func CreateTodo(t *testing.T, repo advisortodo.Repository, advisorID, text string, due time.Time, completed bool) advisortodo.Todo {
	t.Helper()
	now := time.Now().UTC()
	td, err := repo.CreateTodo(context.Background(), advisortodo.Todo{
		ID:        uuid.NewString(),
		AdvisorID: advisorID,
		Text:      text,
		DueDate:   due,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTodo() failed: %v", err)
	}
	return td
}

func CreateNote(t *testing.T, repo note.Repository, userID, title, content string, pinned bool, updatedAt ...time.Time) note.Note {
	t.Helper()
	tstamp := stamp(updatedAt)
	n, err := repo.CreateNote(context.Background(), note.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Pinned:    pinned,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateNote() failed: %v", err)
	}
	return n
}
