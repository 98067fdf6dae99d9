package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/attendance"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
	"github.com/trezcool/staffdesk/services/fetcher"
	logsvc "github.com/trezcool/staffdesk/services/logger"
	"github.com/trezcool/staffdesk/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	kv, closer, err := storage.Open(conf)
	if err != nil {
		logger.Fatal("opening storage", err)
	}
	store := session.NewStore(kv)
	if err := store.Load(); err != nil {
		logger.Warn("restoring session", err)
	}

	// set up services
	sessSvc, err := session.NewService(store, fetcher.NewHTTPFetcher(conf.Fetch, logger), conf.Dashboard, logger)
	if err != nil {
		logger.Fatal("setting up session", err)
	}
	attSvc := attendance.NewService(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// start CLI
	cli := commandLine{
		conf:      conf,
		out:       os.Stdout,
		sessSvc:   sessSvc,
		empSvc:    employee.NewService(store, conf.Dashboard.PageSize),
		reportSvc: report.NewService(store, attSvc, conf.AppName),
	}
	err = cli.run(ctx, os.Args)
	stop()
	if cerr := closer.Close(); cerr != nil {
		logger.Error("closing storage", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
