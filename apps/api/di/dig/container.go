package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/istudy/dashboard/apps/api/echo"
	"github.com/istudy/dashboard/apps/shared"
	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/dashboard"
	emailsvc "github.com/istudy/dashboard/services/email"
	logsvc "github.com/istudy/dashboard/services/logger"
	"github.com/istudy/dashboard/storage/cache"
	"github.com/istudy/dashboard/storage/database"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Mailer is an email service whose pending sends can be awaited on shutdown.
	Mailer interface {
		core.EmailService
		Wait()
	}

	validatorOut struct {
		dig.Out
		Validate   *validator.Validate
		Translator ut.Translator
	}

	cacheOut struct {
		dig.Out
		Cache dashboard.Cache
		Redis *cache.RedisCache // nil without a redis url
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) *database.Repositories {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	repos, err := database.Open(ctx, conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("database ready : engine %q", conf.Database.Engine))
	return repos
}

// newCache connects to redis when a url is configured. The dashboard then runs uncached.
func newCache(conf *core.Config, logger core.Logger) cacheOut {
	if conf.Redis.URL == "" {
		return cacheOut{}
	}
	rc, err := cache.NewRedisCache(conf.Redis.URL)
	if err != nil {
		logger.Error(fmt.Sprintf("redis unavailable, running without cache: %v", err), err)
		return cacheOut{}
	}
	return cacheOut{Cache: rc, Redis: rc}
}

func newEmailService(conf *core.Config, logger core.Logger) Mailer {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() validatorOut {
	validate, translator := shared.NewValidator()
	return validatorOut{Validate: validate, Translator: translator}
}

func newServices(conf *core.Config, logger core.Logger, mail Mailer, c dashboard.Cache, repos *database.Repositories) *shared.Services {
	return shared.NewServices(conf, logger, mail, c, repos)
}

func newDeps(validate *validator.Validate, translator ut.Translator, svcs *shared.Services) *echoapi.Deps {
	return &echoapi.Deps{
		Validate:       validate,
		Translator:     translator,
		Users:          svcs.Users,
		Goals:          svcs.Goals,
		ActionItems:    svcs.ActionItems,
		Meetings:       svcs.Meetings,
		Reflections:    svcs.Reflections,
		ImportantDates: svcs.ImportantDates,
		Groups:         svcs.Groups,
		AdvisorTodos:   svcs.AdvisorTodos,
		Notes:          svcs.Notes,
		Calendly:       svcs.Calendly,
		Dashboard:      svcs.Dashboard,
	}
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newCache))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(newServices))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
