package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/meeting"
)

type meetingRow = meeting.Meeting

var meetingFields = map[string]comparator[meetingRow]{
	"scheduled_date": func(a, b *meetingRow) int { return cmpTime(a.ScheduledDate, b.ScheduledDate) },
	"status":         func(a, b *meetingRow) int { return cmpString(a.Status, b.Status) },
	"created_at":     func(a, b *meetingRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type meetingRepository struct {
	db *table[meetingRow]
}

var _ meeting.Repository = (*meetingRepository)(nil)

func NewMeetingRepository(db *DB) *meetingRepository {
	return &meetingRepository{db: db.meetings}
}

func (repo *meetingRepository) CreateMeeting(_ context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *meetingRepository) QueryMeetings(_ context.Context, filter *meeting.QueryFilter, ordering []core.DBOrdering) ([]meeting.Meeting, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	meetings := repo.db.filter(func(m *meeting.Meeting) bool {
		return (len(filter.StudentIDs) == 0 || inSlice(filter.StudentIDs, m.StudentID)) &&
			(filter.AdvisorID == "" || m.AdvisorID == filter.AdvisorID) &&
			(len(filter.Statuses) == 0 || inSlice(filter.Statuses, m.Status)) &&
			(filter.Source == "" || m.Source == filter.Source) &&
			(filter.CalendlyEventURI == "" || m.CalendlyEventURI == filter.CalendlyEventURI) &&
			(filter.From.IsZero() || !m.ScheduledDate.Before(filter.From)) &&
			(filter.To.IsZero() || m.ScheduledDate.Before(filter.To))
	})
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "scheduled_date"}}
	}
	sortRows(meetings, ordering, meetingFields, func(a, b *meetingRow) int { return cmpString(a.ID, b.ID) })
	return meetings, nil
}

func (repo *meetingRepository) GetMeetingByID(_ context.Context, id string) (meeting.Meeting, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.rows[id]; ok {
		return *m, nil
	}
	return meeting.Meeting{}, meeting.ErrNotFound
}

func (repo *meetingRepository) UpdateMeeting(_ context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[m.ID]; !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *meetingRepository) DeleteMeeting(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return meeting.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
