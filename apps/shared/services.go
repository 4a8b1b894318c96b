// Package shared builds what the API server and the admin commands have in common.
package shared

import (
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/advisortodo"
	"github.com/istudy/dashboard/core/calendly"
	"github.com/istudy/dashboard/core/dashboard"
	"github.com/istudy/dashboard/core/dates"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/group"
	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/note"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/storage/database"
)

type Services struct {
	Users          *user.Service
	Goals          *goal.Service
	ActionItems    *actionitem.Service
	Meetings       *meeting.Service
	Reflections    *reflection.Service
	ImportantDates *importantdate.Service
	Groups         *group.Service
	AdvisorTodos   *advisortodo.Service
	Notes          *note.Service
	Calendly       *calendly.Service
	Dashboard      *dashboard.Service
}

// Configure applies the process-wide settings: program time zone and missed-meeting grace.
func Configure(conf *core.Config) error {
	if conf.Timezone != "" {
		if err := dates.SetLocation(conf.Timezone); err != nil {
			return errors.Wrapf(err, "loading time zone %q", conf.Timezone)
		}
	}
	meeting.SetMissedGrace(conf.Meeting.MissedGrace)
	return nil
}

// NewServices wires the domain services on top of repos. cache may be nil.
func NewServices(conf *core.Config, logger core.Logger, mail core.EmailService, cache dashboard.Cache, repos *database.Repositories) *Services {
	svcs := &Services{
		Users:          user.NewService(repos.Users, conf),
		Goals:          goal.NewService(repos.Goals),
		Meetings:       meeting.NewService(repos.Meetings),
		Reflections:    reflection.NewService(repos.Reflections),
		ImportantDates: importantdate.NewService(repos.ImportantDates),
		Groups:         group.NewService(repos.Groups),
		AdvisorTodos:   advisortodo.NewService(repos.AdvisorTodos),
		Notes:          note.NewService(repos.Notes),
	}
	svcs.ActionItems = actionitem.NewService(repos.ActionItems, svcs.Groups)
	svcs.Calendly = calendly.NewService(repos.CalendlyEvents, svcs.Users, svcs.Meetings, logger)
	svcs.Dashboard = dashboard.NewService(dashboard.Deps{
		Conf:        conf,
		Logger:      logger,
		Mail:        mail,
		Cache:       cache,
		Users:       svcs.Users,
		Goals:       svcs.Goals,
		ActionItems: svcs.ActionItems,
		Meetings:    svcs.Meetings,
		Reflections: svcs.Reflections,
		Dates:       svcs.ImportantDates,
	})
	return svcs
}
