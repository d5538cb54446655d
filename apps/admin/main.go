package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/rota/core"
	logsvc "github.com/trezcool/rota/services/logger"
	"github.com/trezcool/rota/storage/database"
	sqlxrepos "github.com/trezcool/rota/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	os.Exit(run(conf, logger))
}

func run(conf *core.Config, logger *logsvc.RollbarLogger) int {
	defer logger.Close()

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Error(fmt.Sprintf("creating database: %v", err), err)
		return 1
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Error(fmt.Sprintf("opening database: %v", err), err)
		return 1
	}
	defer func() { _ = db.Close() }()

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: sqlxrepos.NewUserRepository(db),
		bizRepo: sqlxrepos.NewBusinessRepository(db),
		out:     os.Stdout,
	}
	if err := cli.run(os.Args[1:]); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin: %v", err), err)
		}
		return 1
	}
	return 0
}
