// Package logsvc reports application events to Rollbar and mirrors them on a std logger.
package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/staffdesk/core"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// event is a log call split into what Rollbar gets and what is printed locally.
type event struct {
	actor  *core.Actor
	report []interface{} // msg first, then errors and extras
	lines  []interface{}
}

// split pulls the first core.Actor out of args. The actor becomes the Rollbar person,
// and its request id and route travel as an extra map.
func split(msg string, args []interface{}) event {
	ev := event{report: make([]interface{}, 0, len(args)+2)}
	ev.report = append(ev.report, msg)
	for _, arg := range args {
		actor, ok := arg.(core.Actor)
		switch {
		case !ok:
			ev.report = append(ev.report, arg)
			ev.lines = append(ev.lines, arg)
		case ev.actor == nil:
			a := actor
			ev.actor = &a
		}
	}
	if ev.actor != nil {
		if extras := ev.actor.Fields(); len(extras) > 0 {
			ev.report = append(ev.report, extras)
		}
	}
	return ev
}

func (l RollbarLogger) send(report func(...interface{}), msg string, args []interface{}) {
	ev := split(msg, args)
	if ev.actor != nil && ev.actor.Username != "" {
		rollbar.SetPerson(ev.actor.Username, ev.actor.Username, "")
	} else {
		rollbar.ClearPerson()
	}
	report(ev.report...)

	if ev.actor != nil && ev.actor.Username != "" {
		l.std.Printf("%s [%s]", msg, ev.actor)
	} else {
		l.std.Println(msg)
	}
	for _, line := range ev.lines {
		l.std.Printf("%+v\n", line)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.send(rollbar.Debug, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.send(rollbar.Info, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.send(rollbar.Warning, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.send(rollbar.Error, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.send(rollbar.Critical, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
