package calendly

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/user"
)

var errMalformedPayload = core.NewValidationError(errors.New("malformed webhook payload"))

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		UpdateEvent(ctx context.Context, e Event) (Event, error)
	}

	UserFinder interface {
		GetByEmail(ctx context.Context, email string) (user.User, error)
	}

	MeetingScheduler interface {
		ScheduleExternal(ctx context.Context, studentID, advisorID, title, eventURI string, start time.Time, duration time.Duration) (meeting.Meeting, error)
		CancelExternal(ctx context.Context, eventURI string) (meeting.Meeting, bool, error)
	}

	Service struct {
		repo     Repository
		users    UserFinder
		meetings MeetingScheduler
		logger   core.Logger
	}
)

func NewService(repo Repository, users UserFinder, meetings MeetingScheduler, logger core.Logger) *Service {
	return &Service{repo: repo, users: users, meetings: meetings, logger: logger}
}

// Ingest stores a webhook delivery and syncs it to the meetings of the matching student.
// Deliveries about unknown invitees or invitees who are not students are stored unsynced.
func (svc *Service) Ingest(ctx context.Context, body []byte) (Event, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return Event{}, errMalformedPayload
	}
	if wb.Event == "" || wb.eventURI() == "" {
		return Event{}, errMalformedPayload
	}

	evt := Event{
		ID:           uuid.NewString(),
		Kind:         wb.Event,
		InviteeEmail: core.CleanString(wb.Payload.Email, true /* lower */),
		InviteeName:  core.CleanString(wb.Payload.Name),
		HostEmail:    core.CleanString(wb.hostEmail(), true /* lower */),
		EventURI:     wb.eventURI(),
		EventName:    wb.Payload.ScheduledEvent.Name,
		StartTime:    wb.Payload.ScheduledEvent.StartTime.UTC(),
		EndTime:      wb.Payload.ScheduledEvent.EndTime.UTC(),
		ReceivedAt:   core.NowFunc().UTC(),
	}

	evt, err := svc.repo.CreateEvent(ctx, evt)
	if err != nil {
		return Event{}, errors.Wrap(err, "storing event")
	}

	synced, err := svc.sync(ctx, evt)
	if err != nil {
		return evt, errors.Wrap(err, "syncing event")
	}
	if synced.Synced {
		evt, err = svc.repo.UpdateEvent(ctx, synced)
		return evt, errors.Wrap(err, "updating event")
	}
	return evt, nil
}

func (svc *Service) sync(ctx context.Context, evt Event) (Event, error) {
	switch evt.Kind {
	case KindInviteeCreated:
		student, err := svc.users.GetByEmail(ctx, evt.InviteeEmail)
		if err != nil {
			if core.IsNotFound(err) {
				svc.logger.Info("calendly: no user for invitee " + evt.InviteeEmail)
				return evt, nil
			}
			return evt, errors.Wrap(err, "finding invitee")
		}
		if !student.IsStudent() {
			svc.logger.Info("calendly: invitee " + evt.InviteeEmail + " is not a student")
			return evt, nil
		}

		advisorID := student.AdvisorID
		if evt.HostEmail != "" {
			if host, err := svc.users.GetByEmail(ctx, evt.HostEmail); err == nil && host.IsAdvisor() {
				advisorID = host.ID
			}
		}

		m, err := svc.meetings.ScheduleExternal(
			ctx, student.ID, advisorID, evt.EventName, evt.EventURI, evt.StartTime, evt.EndTime.Sub(evt.StartTime),
		)
		if err != nil {
			return evt, errors.Wrap(err, "scheduling meeting")
		}
		evt.StudentID = student.ID
		evt.MeetingID = m.ID
		evt.Synced = true

	case KindInviteeCanceled:
		m, found, err := svc.meetings.CancelExternal(ctx, evt.EventURI)
		if err != nil {
			return evt, errors.Wrap(err, "cancelling meeting")
		}
		if found {
			evt.StudentID = m.StudentID
			evt.MeetingID = m.ID
			evt.Synced = true
		} else if m.ID != "" {
			svc.logger.Info("calendly: meeting " + m.ID + " is " + m.Status + ", not cancelling")
		}

	default:
		svc.logger.Debug("calendly: ignoring event kind " + evt.Kind)
	}
	return evt, nil
}

// Query lists stored events, most recent first unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "received_at"}}
	}
	return svc.repo.QueryEvents(ctx, filter, ordering)
}
