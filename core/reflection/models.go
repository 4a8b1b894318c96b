package reflection

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

const (
	TypePreMeeting  = "pre-meeting"
	TypePostMeeting = "post-meeting"
)

var Types = []string{TypePreMeeting, TypePostMeeting}

// Reflection is a student journal entry written before or after a meeting.
type Reflection struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Type       string    `json:"type" bson:"type"`
	MeetingID  string    `json:"meeting_id,omitempty" bson:"meeting_id,omitempty"`
	Progress   string    `json:"progress" bson:"progress"`
	Challenges string    `json:"challenges" bson:"challenges"`
	Questions  string    `json:"questions" bson:"questions"`
	Takeaways  string    `json:"takeaways" bson:"takeaways"`
	NextSteps  string    `json:"next_steps" bson:"next_steps"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type NewReflection struct {
	Type       string `json:"type" validate:"required,oneof=pre-meeting post-meeting"`
	MeetingID  string `json:"meeting_id" validate:"omitempty,objectid"`
	Progress   string `json:"progress" validate:"max=5000"`
	Challenges string `json:"challenges" validate:"max=5000"`
	Questions  string `json:"questions" validate:"max=5000"`
	Takeaways  string `json:"takeaways" validate:"max=5000"`
	NextSteps  string `json:"next_steps" validate:"max=5000"`
}

func (nr *NewReflection) Clean() {
	nr.Type = core.CleanString(nr.Type, true /* lower */)
	nr.MeetingID = core.CleanString(nr.MeetingID)
	nr.Progress = core.CleanString(nr.Progress)
	nr.Challenges = core.CleanString(nr.Challenges)
	nr.Questions = core.CleanString(nr.Questions)
	nr.Takeaways = core.CleanString(nr.Takeaways)
	nr.NextSteps = core.CleanString(nr.NextSteps)
}

func (nr *NewReflection) HasContent() bool {
	return nr.Progress != "" || nr.Challenges != "" || nr.Questions != "" || nr.Takeaways != "" || nr.NextSteps != ""
}

func (nr *NewReflection) Validate(validate *validator.Validate) error {
	nr.Clean()
	return validate.Struct(nr)
}

type QueryFilter struct {
	UserIDs []string `query:"user_id"`
	Type    string   `query:"type"`
}

var OrderingFields = []string{"created_at", "type"}

// Latest returns the most recently created reflection.
func Latest(refls []Reflection) (Reflection, bool) {
	var latest Reflection
	var found bool
	for _, r := range refls {
		if !found || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
			found = true
		}
	}
	return latest, found
}
