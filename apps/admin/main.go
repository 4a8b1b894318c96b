package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/istudy/dashboard/apps"
	"github.com/istudy/dashboard/apps/shared"
	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/dashboard"
	emailsvc "github.com/istudy/dashboard/services/email"
	logsvc "github.com/istudy/dashboard/services/logger"
	"github.com/istudy/dashboard/storage/cache"
	"github.com/istudy/dashboard/storage/database"
)

type mailer interface {
	core.EmailService
	Wait()
}

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	if err := shared.Configure(conf); err != nil {
		logger.Fatal(fmt.Sprintf("configuring application: %v", err), err)
	}
	core.ParseEmailTemplates(logger, false /* strict */)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	repos, err := database.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	var mail mailer
	if conf.Debug || conf.SendgridApiKey == "" {
		mail = emailsvc.NewConsoleService(conf, logger)
	} else {
		mail = emailsvc.NewSendgridService(conf, logger)
	}

	// the API caches the admin overview in redis; commands that change it must drop it there
	var overviewCache dashboard.Cache
	var rc *cache.RedisCache
	if conf.Redis.URL != "" {
		if rc, err = cache.NewRedisCache(conf.Redis.URL); err != nil {
			logger.Error(fmt.Sprintf("redis unavailable, running without cache: %v", err), err)
			rc = nil
		} else {
			overviewCache = rc
		}
	}

	// start CLI
	cli := commandLine{
		conf: conf,
		svcs: shared.NewServices(conf, logger, mail, overviewCache, repos),
		out:  os.Stdout,
	}
	err = cli.run(os.Args)

	mail.Wait()
	logger.Wait()
	if rc != nil {
		_ = rc.Close()
	}
	_ = repos.Close(context.Background())

	if err != nil {
		switch {
		case err == errHelp:
		case apps.IsArgumentError(err):
			stdLogger.Printf("\ninvalid argument: %s\n", err)
		default:
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
