package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/calendly"
)

type calendlyEventRepository struct {
	store store[calendly.Event]
}

var _ calendly.Repository = (*calendlyEventRepository)(nil)

func NewCalendlyEventRepository(d *DB) *calendlyEventRepository {
	return &calendlyEventRepository{
		store: newStore[calendly.Event](d, calendlyEventsCollection, core.NewNotFoundError("calendly event")),
	}
}

func (repo *calendlyEventRepository) CreateEvent(ctx context.Context, e calendly.Event) (calendly.Event, error) {
	if err := repo.store.insert(ctx, e); err != nil {
		return calendly.Event{}, err
	}
	return e, nil
}

func (repo *calendlyEventRepository) QueryEvents(ctx context.Context, filter *calendly.QueryFilter, ordering []core.DBOrdering) ([]calendly.Event, error) {
	q := bson.M{}
	if filter.Kind != "" {
		q["kind"] = filter.Kind
	}
	if filter.InviteeEmail != "" {
		q["invitee_email"] = filter.InviteeEmail
	}
	if filter.Synced != nil {
		q["synced"] = *filter.Synced
	}
	return repo.store.find(ctx, q, ordering)
}

func (repo *calendlyEventRepository) UpdateEvent(ctx context.Context, e calendly.Event) (calendly.Event, error) {
	if err := repo.store.replace(ctx, e.ID, e); err != nil {
		return calendly.Event{}, err
	}
	return e, nil
}
