package calendly

import (
	"time"
)

// Webhook event kinds
const (
	KindInviteeCreated  = "invitee.created"
	KindInviteeCanceled = "invitee.canceled"
)

// Event is a stored scheduling-widget webhook delivery.
type Event struct {
	ID           string    `json:"id" bson:"_id"`
	Kind         string    `json:"kind" bson:"kind"`
	InviteeEmail string    `json:"invitee_email" bson:"invitee_email"`
	InviteeName  string    `json:"invitee_name" bson:"invitee_name"`
	HostEmail    string    `json:"host_email,omitempty" bson:"host_email,omitempty"`
	EventURI     string    `json:"event_uri" bson:"event_uri"`
	EventName    string    `json:"event_name" bson:"event_name"`
	StartTime    time.Time `json:"start_time" bson:"start_time"`
	EndTime      time.Time `json:"end_time" bson:"end_time"`
	Synced       bool      `json:"synced" bson:"synced"`
	StudentID    string    `json:"student_id,omitempty" bson:"student_id,omitempty"`
	MeetingID    string    `json:"meeting_id,omitempty" bson:"meeting_id,omitempty"`
	ReceivedAt   time.Time `json:"received_at" bson:"received_at"`
}

type QueryFilter struct {
	Kind         string `query:"kind"`
	InviteeEmail string `query:"invitee_email"`
	Synced       *bool  `query:"synced"`
}

var OrderingFields = []string{"received_at", "start_time"}

// webhookBody is the subset of the webhook delivery we read.
type webhookBody struct {
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"created_at"`
	Payload   struct {
		Email          string `json:"email"`
		Name           string `json:"name"`
		URI            string `json:"uri"`
		Event          string `json:"event"`
		ScheduledEvent struct {
			URI              string    `json:"uri"`
			Name             string    `json:"name"`
			StartTime        time.Time `json:"start_time"`
			EndTime          time.Time `json:"end_time"`
			EventMemberships []struct {
				UserEmail string `json:"user_email"`
			} `json:"event_memberships"`
		} `json:"scheduled_event"`
	} `json:"payload"`
}

func (wb *webhookBody) eventURI() string {
	if wb.Payload.ScheduledEvent.URI != "" {
		return wb.Payload.ScheduledEvent.URI
	}
	return wb.Payload.Event
}

func (wb *webhookBody) hostEmail() string {
	for _, m := range wb.Payload.ScheduledEvent.EventMemberships {
		if m.UserEmail != "" {
			return m.UserEmail
		}
	}
	return ""
}
