// Package database selects the storage engine and builds its repositories.
package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/advisortodo"
	"github.com/istudy/dashboard/core/calendly"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/group"
	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/note"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
	inmemdb "github.com/istudy/dashboard/storage/database/inmem"
	"github.com/istudy/dashboard/storage/database/mongodb"
)

const (
	EngineMongoDB = "mongodb"
	EngineInMem   = "inmem"
)

// Repositories bundles one repository per collection.
type Repositories struct {
	Users          user.Repository
	Goals          goal.Repository
	ActionItems    actionitem.Repository
	Meetings       meeting.Repository
	Reflections    reflection.Repository
	ImportantDates importantdate.Repository
	Groups         group.Repository
	AdvisorTodos   advisortodo.Repository
	Notes          note.Repository
	CalendlyEvents calendly.Repository

	close func(ctx context.Context) error
}

// Close releases the underlying connection, if any.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// Open connects to the configured engine.
func Open(ctx context.Context, conf *core.Config) (*Repositories, error) {
	switch strings.ToLower(conf.Database.Engine) {
	case EngineInMem:
		return InMem(inmemdb.Open()), nil
	case EngineMongoDB, "":
		client, err := mongodb.Connect(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		db := mongodb.Open(client, conf.Database.Name)
		if err = db.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, errors.Wrap(err, "ensuring indexes")
		}
		return Mongo(client, db), nil
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

func InMem(db *inmemdb.DB) *Repositories {
	return &Repositories{
		Users:          inmemdb.NewUserRepository(db),
		Goals:          inmemdb.NewGoalRepository(db),
		ActionItems:    inmemdb.NewActionItemRepository(db),
		Meetings:       inmemdb.NewMeetingRepository(db),
		Reflections:    inmemdb.NewReflectionRepository(db),
		ImportantDates: inmemdb.NewImportantDateRepository(db),
		Groups:         inmemdb.NewGroupRepository(db),
		AdvisorTodos:   inmemdb.NewAdvisorTodoRepository(db),
		Notes:          inmemdb.NewNoteRepository(db),
		CalendlyEvents: inmemdb.NewCalendlyEventRepository(db),
	}
}

func Mongo(client *mongo.Client, db *mongodb.DB) *Repositories {
	return &Repositories{
		Users:          mongodb.NewUserRepository(db),
		Goals:          mongodb.NewGoalRepository(db),
		ActionItems:    mongodb.NewActionItemRepository(db),
		Meetings:       mongodb.NewMeetingRepository(db),
		Reflections:    mongodb.NewReflectionRepository(db),
		ImportantDates: mongodb.NewImportantDateRepository(db),
		Groups:         mongodb.NewGroupRepository(db),
		AdvisorTodos:   mongodb.NewAdvisorTodoRepository(db),
		Notes:          mongodb.NewNoteRepository(db),
		CalendlyEvents: mongodb.NewCalendlyEventRepository(db),
		close:          client.Disconnect,
	}
}
