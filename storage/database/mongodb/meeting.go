package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/meeting"
)

type meetingRepository struct {
	store store[meeting.Meeting]
}

var _ meeting.Repository = (*meetingRepository)(nil)

func NewMeetingRepository(d *DB) *meetingRepository {
	return &meetingRepository{store: newStore[meeting.Meeting](d, meetingsCollection, meeting.ErrNotFound)}
}

func (repo *meetingRepository) CreateMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	if err := repo.store.insert(ctx, m); err != nil {
		return meeting.Meeting{}, err
	}
	return m, nil
}

func (repo *meetingRepository) QueryMeetings(ctx context.Context, filter *meeting.QueryFilter, ordering []core.DBOrdering) ([]meeting.Meeting, error) {
	q := bson.M{}
	if len(filter.StudentIDs) > 0 {
		q["student_id"] = in(filter.StudentIDs)
	}
	if filter.AdvisorID != "" {
		q["advisor_id"] = filter.AdvisorID
	}
	if len(filter.Statuses) > 0 {
		q["status"] = in(filter.Statuses)
	}
	if filter.Source != "" {
		q["source"] = filter.Source
	}
	if filter.CalendlyEventURI != "" {
		q["calendly_event_uri"] = filter.CalendlyEventURI
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		rng := bson.M{}
		if !filter.From.IsZero() {
			rng["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			rng["$lt"] = filter.To
		}
		q["scheduled_date"] = rng
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "scheduled_date"}))
}

func (repo *meetingRepository) GetMeetingByID(ctx context.Context, id string) (meeting.Meeting, error) {
	return repo.store.get(ctx, id)
}

func (repo *meetingRepository) UpdateMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	if err := repo.store.replace(ctx, m.ID, m); err != nil {
		return meeting.Meeting{}, err
	}
	return m, nil
}

func (repo *meetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
