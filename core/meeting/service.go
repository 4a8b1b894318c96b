package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
)

var (
	ErrNotFound          = core.NewNotFoundError("meeting")
	ErrInvalidTransition = core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status transition"})
	ErrNotSelfReportable = core.NewValidationError(nil, core.FieldError{Field: "attended", Error: "only scheduled meetings can be self-reported"})
)

type (
	Repository interface {
		CreateMeeting(ctx context.Context, m Meeting) (Meeting, error)
		QueryMeetings(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Meeting, error)
		GetMeetingByID(ctx context.Context, id string) (Meeting, error)
		UpdateMeeting(ctx context.Context, m Meeting) (Meeting, error)
		DeleteMeeting(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Schedule books a meeting on behalf of an advisor or admin.
func (svc *Service) Schedule(ctx context.Context, advisorID, createdBy string, nm NewMeeting) (Meeting, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateMeeting(ctx, Meeting{
		ID:              uuid.NewString(),
		StudentID:       nm.StudentID,
		AdvisorID:       advisorID,
		Title:           nm.Title,
		Notes:           nm.Notes,
		Location:        nm.Location,
		ScheduledDate:   nm.ScheduledDate.UTC(),
		DurationMinutes: nm.DurationMinutes,
		Status:          StatusScheduled,
		Source:          SourceManual,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// Request records a student's meeting request, pending their advisor's review.
func (svc *Service) Request(ctx context.Context, studentID, advisorID string, rm RequestMeeting) (Meeting, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateMeeting(ctx, Meeting{
		ID:              uuid.NewString(),
		StudentID:       studentID,
		AdvisorID:       advisorID,
		Title:           rm.Title,
		Notes:           rm.Notes,
		ScheduledDate:   rm.ScheduledDate.UTC(),
		DurationMinutes: DefaultDurationMinutes,
		Status:          StatusPendingReview,
		Source:          SourceManual,
		CreatedBy:       studentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// ScheduleExternal stores a meeting booked through the scheduling widget.
// It is idempotent on eventURI.
func (svc *Service) ScheduleExternal(ctx context.Context, studentID, advisorID, title, eventURI string, start time.Time, duration time.Duration) (Meeting, error) {
	existing, err := svc.repo.QueryMeetings(ctx, &QueryFilter{CalendlyEventURI: eventURI}, nil)
	if err != nil {
		return Meeting{}, errors.Wrap(err, "finding meeting by event")
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	now := core.NowFunc().UTC()
	minutes := int(duration / time.Minute)
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return svc.repo.CreateMeeting(ctx, Meeting{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		AdvisorID:        advisorID,
		Title:            title,
		ScheduledDate:    start.UTC(),
		DurationMinutes:  minutes,
		Status:           StatusScheduled,
		Source:           SourceCalendly,
		CalendlyEventURI: eventURI,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

// CancelExternal cancels the meeting booked as eventURI. A missing meeting is not an error,
// and neither is one whose status can no longer move to cancelled: both report false.
func (svc *Service) CancelExternal(ctx context.Context, eventURI string) (Meeting, bool, error) {
	existing, err := svc.repo.QueryMeetings(ctx, &QueryFilter{CalendlyEventURI: eventURI}, nil)
	if err != nil {
		return Meeting{}, false, errors.Wrap(err, "finding meeting by event")
	}
	if len(existing) == 0 {
		return Meeting{}, false, nil
	}
	m := existing[0]
	if m.Status == StatusCancelled {
		return m, true, nil
	}
	if !CanTransition(m.Status, StatusCancelled) {
		return m, false, nil
	}
	m.Status = StatusCancelled
	m.UpdatedAt = core.NowFunc().UTC()
	m, err = svc.repo.UpdateMeeting(ctx, m)
	return m, err == nil, err
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Meeting, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "scheduled_date"}}
	}
	return svc.repo.QueryMeetings(ctx, filter, ordering)
}

func (svc *Service) ForStudents(ctx context.Context, studentIDs ...string) ([]Meeting, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	return svc.Query(ctx, &QueryFilter{StudentIDs: studentIDs}, nil)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Meeting, error) {
	return svc.repo.GetMeetingByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateMeeting) (Meeting, error) {
	m, err := svc.repo.GetMeetingByID(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if um.Title != nil {
		m.Title = core.CleanString(*um.Title)
	}
	if um.Notes != nil {
		m.Notes = core.CleanString(*um.Notes)
	}
	if um.Location != nil {
		m.Location = core.CleanString(*um.Location)
	}
	if um.ScheduledDate != nil {
		m.ScheduledDate = um.ScheduledDate.UTC()
	}
	if um.DurationMinutes != nil {
		m.DurationMinutes = *um.DurationMinutes
	}
	m.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateMeeting(ctx, m)
}

// SetStatus moves the meeting to status, following the allowed transitions.
func (svc *Service) SetStatus(ctx context.Context, id, status string) (Meeting, error) {
	m, err := svc.repo.GetMeetingByID(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if m.Status == status {
		return m, nil
	}
	if !CanTransition(m.Status, status) {
		return Meeting{}, ErrInvalidTransition
	}
	m.Status = status
	m.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateMeeting(ctx, m)
}

// SelfReport records the student's own account of a scheduled meeting.
func (svc *Service) SelfReport(ctx context.Context, id string, attended bool) (Meeting, error) {
	m, err := svc.repo.GetMeetingByID(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if m.Status != StatusScheduled {
		return Meeting{}, ErrNotSelfReportable
	}
	if attended {
		m.Status = StatusCompleted
	} else {
		m.Status = StatusMissed
	}
	m.StudentSelfReported = true
	m.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateMeeting(ctx, m)
}

// ReconcileMissed persists the missed status of every lapsed scheduled meeting
// and returns how many were updated.
func (svc *Service) ReconcileMissed(ctx context.Context) (int, error) {
	now := core.NowFunc()
	filter := &QueryFilter{
		Statuses: []string{StatusScheduled},
		To:       now.Add(-MissedGrace()),
	}
	lapsed, err := svc.repo.QueryMeetings(ctx, filter, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying lapsed meetings")
	}

	var n int
	for _, m := range lapsed {
		if !IsLapsed(&m, now) {
			continue
		}
		m.Status = StatusMissed
		m.UpdatedAt = now.UTC()
		if _, err = svc.repo.UpdateMeeting(ctx, m); err != nil {
			return n, errors.Wrapf(err, "updating meeting %s", m.ID)
		}
		n++
	}
	return n, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMeeting(ctx, id)
}
