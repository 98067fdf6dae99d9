package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/trezcool/staffdesk/apps/api/di"
	echoapi "github.com/trezcool/staffdesk/apps/api/echo"
	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/session"
)

type app struct {
	conf       *core.Config
	logger     core.Logger
	sessionSvc *session.Service
	server     *echoapi.Server
}

func main() {
	c := di.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		storeLoggerParam di.StoreLoggerParam,
		storeCloser io.Closer,
		sessionSvc *session.Service,
		server *echoapi.Server,
	) {
		a := app{conf: conf, logger: logger, sessionSvc: sessionSvc, server: server}

		diag := sessionSvc.Diagnostics()
		logger.Info(fmt.Sprintf("Staffdesk API starting : version %q, storage %q", conf.Build, conf.Storage.Driver),
			map[string]interface{}{"authenticated": diag.Authenticated, "records": diag.Records, "photos": diag.Photos})

		// the session is written through on every change; closing only releases the driver
		defer func() {
			if err := storeCloser.Close(); err != nil {
				storeLoggerParam.Logger.Error("closing session storage", err)
			}
		}()

		a.serveDebug()

		go server.Start()
		a.waitForShutdown()
	}))
}

// serveDebug publishes build info and live session counters under /debug/vars.
func (a app) serveDebug() {
	expvar.NewString("build").Set(a.conf.Build)
	expvar.NewString("env").Set(a.conf.Env)
	expvar.NewString("storage").Set(a.conf.Storage.Driver)
	expvar.Publish("session", expvar.Func(func() interface{} {
		diag := a.sessionSvc.Diagnostics()
		diag.Sample = nil // no employee data on the debug port
		return diag
	}))

	go func() {
		if err := http.ListenAndServe(a.conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			a.logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()
}

// waitForShutdown blocks until the server fails or a shutdown signal arrives,
// then drains in-flight requests within the configured timeout.
func (a app) waitForShutdown() {
	select {
	case err := <-a.server.Errors():
		a.logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-a.server.ShutdownSignal():
		a.logger.Info(fmt.Sprintf("%v: shutting down, session version %d", sig, a.sessionSvc.Store().Version()))

		ctx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = a.server.Close(); err != nil {
				a.logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
	a.logger.Info("Staffdesk API stopped")
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
