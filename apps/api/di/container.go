// Package di builds the dependency graph of the API.
package di

import (
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/staffdesk/apps/api/echo"
	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/attendance"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
	emailsvc "github.com/trezcool/staffdesk/services/email"
	fetchsvc "github.com/trezcool/staffdesk/services/fetcher"
	logsvc "github.com/trezcool/staffdesk/services/logger"
	"github.com/trezcool/staffdesk/storage"
)

// StoreLoggerParam selects the logger of the storage layer.
type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	SessionSvc    *session.Service
	EmployeeSvc   *employee.Service
	AttendanceSvc *attendance.Service
	ReportSvc     *report.Service
	MailSvc       core.EmailService
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStoreLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newSessionStore restores the previous session; a corrupt snapshot starts a logged out session.
func newSessionStore(conf *core.Config, loggerParam StoreLoggerParam) (*session.Store, io.Closer, error) {
	kv, closer, err := storage.Open(conf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening storage")
	}
	store := session.NewStore(kv)
	if err := store.Load(); err != nil {
		loggerParam.Logger.Warn("restoring session", err)
	}
	return store, closer, nil
}

func newFetcher(conf *core.Config, logger core.Logger) session.Fetcher {
	return fetchsvc.NewHTTPFetcher(conf.Fetch, logger)
}

func newSessionService(conf *core.Config, store *session.Store, fetcher session.Fetcher, logger core.Logger) (*session.Service, error) {
	return session.NewService(store, fetcher, conf.Dashboard, logger)
}

func newEmployeeService(conf *core.Config, store *session.Store) *employee.Service {
	return employee.NewService(store, conf.Dashboard.PageSize)
}

func newAttendanceService(store *session.Store) *attendance.Service {
	return attendance.NewService(store)
}

func newReportService(conf *core.Config, store *session.Store, att *attendance.Service) *report.Service {
	return report.NewService(store, att, conf.AppName)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		SessionSvc:    p.SessionSvc,
		EmployeeSvc:   p.EmployeeSvc,
		AttendanceSvc: p.AttendanceSvc,
		ReportSvc:     p.ReportSvc,
		MailSvc:       p.MailSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newSessionStore))
	must(c.Provide(newFetcher))
	must(c.Provide(newSessionService))
	must(c.Provide(newEmployeeService))
	must(c.Provide(newAttendanceService))
	must(c.Provide(newReportService))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidate))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
