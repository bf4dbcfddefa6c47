package main

import (
	"log"
	"os"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/submission"
	"github.com/trezcool/bursar/core/user"
	emailsvc "github.com/trezcool/bursar/services/email"
	logsvc "github.com/trezcool/bursar/services/logger"
	"github.com/trezcool/bursar/storage/database"
	sqlxrepos "github.com/trezcool/bursar/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	// set up services
	validate := core.NewValidator()
	user.InitValidators(validate)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), validate)
	subSvc := submission.NewService(
		sqlxrepos.NewSubmissionRepository(db),
		usrSvc,
		validate,
		emailsvc.NewSyncConsoleService(conf, logger, os.Stdout),
		logger,
	)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db,
		out:    os.Stdout,
		usrSvc: usrSvc,
		subSvc: subSvc,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed: "+err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
