package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/calendly"
)

type calendlyEventRow = calendly.Event

var calendlyEventFields = map[string]comparator[calendlyEventRow]{
	"received_at": func(a, b *calendlyEventRow) int { return cmpTime(a.ReceivedAt, b.ReceivedAt) },
	"start_time":  func(a, b *calendlyEventRow) int { return cmpTime(a.StartTime, b.StartTime) },
}

type calendlyEventRepository struct {
	db *table[calendlyEventRow]
}

var _ calendly.Repository = (*calendlyEventRepository)(nil)

func NewCalendlyEventRepository(db *DB) *calendlyEventRepository {
	return &calendlyEventRepository{db: db.calendlyEvents}
}

func (repo *calendlyEventRepository) CreateEvent(_ context.Context, e calendly.Event) (calendly.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[e.ID] = &e
	return e, nil
}

func (repo *calendlyEventRepository) QueryEvents(_ context.Context, filter *calendly.QueryFilter, ordering []core.DBOrdering) ([]calendly.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := repo.db.filter(func(e *calendly.Event) bool {
		return (filter.Kind == "" || e.Kind == filter.Kind) &&
			(filter.InviteeEmail == "" || e.InviteeEmail == filter.InviteeEmail) &&
			(filter.Synced == nil || e.Synced == *filter.Synced)
	})
	sortRows(events, ordering, calendlyEventFields, func(a, b *calendlyEventRow) int { return cmpString(a.ID, b.ID) })
	return events, nil
}

func (repo *calendlyEventRepository) UpdateEvent(_ context.Context, e calendly.Event) (calendly.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[e.ID]; !ok {
		return calendly.Event{}, core.NewNotFoundError("calendly event")
	}
	repo.db.rows[e.ID] = &e
	return e, nil
}
