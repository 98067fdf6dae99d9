package core

import "strings"

// Logger is any service that can record application events.
// args may carry errors, maps of extra data or the Actor of the request.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor is the dashboard user on whose behalf an event was logged.
type Actor struct {
	Username  string
	RequestID string
	Route     string
}

// Fields returns the request details of the actor, for structured log backends.
func (a Actor) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 2)
	if a.RequestID != "" {
		fields["request_id"] = a.RequestID
	}
	if a.Route != "" {
		fields["route"] = a.Route
	}
	return fields
}

func (a Actor) String() string {
	parts := []string{a.Username}
	if a.Route != "" {
		parts = append(parts, a.Route)
	}
	if a.RequestID != "" {
		parts = append(parts, a.RequestID)
	}
	return strings.Join(parts, " ")
}
