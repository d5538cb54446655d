package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/rota/apps/api/echo"
	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/notice"
	"github.com/trezcool/rota/core/schedule"
	"github.com/trezcool/rota/core/user"
	emailsvc "github.com/trezcool/rota/services/email"
	logsvc "github.com/trezcool/rota/services/logger"
	"github.com/trezcool/rota/storage/database"
	inmemdb "github.com/trezcool/rota/storage/database/inmem"
	sqlxrepos "github.com/trezcool/rota/storage/database/sqlx"
)

// engineMemory keeps every record in memory; nothing survives a restart.
const engineMemory = "memory"

type storage struct {
	tx         core.Transactor
	bizRepo    business.Repository
	usrRepo    user.Repository
	schedRepo  schedule.Repository
	noticeRepo notice.Repository
	close      func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(zl.Named("db"), conf)

	// set up DB
	store, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = store.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(store.usrRepo, mailSvc, conf)
	bizSvc := business.NewService(store.bizRepo, usrSvc, store.tx)
	noticeSvc := notice.NewService(store.noticeRepo, usrSvc, mailSvc, store.tx)
	schedSvc := schedule.NewService(store.schedRepo, usrSvc, noticeSvc, store.tx, logger, conf.Schedule)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		BusinessSvc: bizSvc,
		UserSvc:     usrSvc,
		ScheduleSvc: schedSvc,
		NoticeSvc:   noticeSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStorage(conf *core.Config) (storage, error) {
	if conf.Database.Engine == engineMemory {
		db := inmemdb.Open()
		return storage{
			tx:         db,
			bizRepo:    inmemdb.NewBusinessRepository(db),
			usrRepo:    inmemdb.NewUserRepository(db),
			schedRepo:  inmemdb.NewScheduleRepository(db),
			noticeRepo: inmemdb.NewNoticeRepository(db),
			close:      func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return storage{}, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return storage{}, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return storage{}, err
	}
	return storage{
		tx:         database.NewTransactor(db),
		bizRepo:    sqlxrepos.NewBusinessRepository(db),
		usrRepo:    sqlxrepos.NewUserRepository(db),
		schedRepo:  sqlxrepos.NewScheduleRepository(db),
		noticeRepo: sqlxrepos.NewNoticeRepository(db),
		close:      db.Close,
	}, nil
}
