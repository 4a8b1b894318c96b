package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
	"github.com/istudy/dashboard/core/advisortodo"
	"github.com/istudy/dashboard/core/calendly"
	"github.com/istudy/dashboard/core/dashboard"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/group"
	"github.com/istudy/dashboard/core/importantdate"
	"github.com/istudy/dashboard/core/meeting"
	"github.com/istudy/dashboard/core/note"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
	"github.com/istudy/dashboard/services/metrics"
)

type (
	// Deps holds the services the API is served from.
	Deps struct {
		Validate   *validator.Validate
		Translator ut.Translator

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

	Server struct {
		conf     *core.Config
		logger   core.Logger
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(conf *core.Config, logger core.Logger, deps *Deps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps *Deps) {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.BodyLimit("2M"))
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.conf.FrontendBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	s.app.Use(metrics.Middleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, deps.Translator, s.SignalShutdown)

	s.app.GET("/", s.home)
	s.app.GET("/metrics", metrics.Handler())

	v1 := s.app.Group("/v1")
	jwt := jwtMiddleware(s.conf)
	b := base{conf: s.conf, users: deps.Users, validate: deps.Validate, dash: deps.Dashboard}

	registerAuthAPI(v1, jwt, b)
	registerWebhookAPI(v1, b, deps.Calendly)

	ag := v1.Group("", jwt)
	registerUserAPI(ag, b)
	registerGoalAPI(ag, b, deps.Goals)
	registerActionItemAPI(ag, b, deps.ActionItems, deps.Groups)
	registerMeetingAPI(ag, b, deps.Meetings)
	registerReflectionAPI(ag, b, deps.Reflections)
	registerImportantDateAPI(ag, b, deps.ImportantDates)
	registerGroupAPI(ag, b, deps.Groups)
	registerAdvisorTodoAPI(ag, b, deps.AdvisorTodos)
	registerNoteAPI(ag, b, deps.Notes)
	registerDashboardAPI(ag, b)
	registerAdminAPI(ag, b, deps.Meetings, deps.Calendly)
}

// Start blocks serving HTTP. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the main goroutine to stop the server gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+s.conf.AppName+" API!")
}
