package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/staffdesk/core"
)

func TestRollbarLogger(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{
			name: "error and extras",
			args: []interface{}{errors.New("timeout"), map[string]interface{}{"attempt": 2}},
			want: "fetch failed\ntimeout\nmap[attempt:2]\n",
		},
		{
			name: "actor is not printed as a line",
			args: []interface{}{core.Actor{Username: "admin", Route: "/v1/session/login", RequestID: "r1"}},
			want: "fetch failed [admin /v1/session/login r1]\n",
		},
		{
			name: "anonymous actor",
			args: []interface{}{core.Actor{RequestID: "r2"}},
			want: "fetch failed\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST"})
			l.Enable(false)

			l.Warn("fetch failed", tt.args...)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func Test_split(t *testing.T) {
	first := core.Actor{Username: "a", RequestID: "r1", Route: "/v1/employees"}
	ev := split("msg", []interface{}{first, core.Actor{Username: "b"}, 1})

	assert.Equal(t, &first, ev.actor)
	assert.Equal(t, []interface{}{1}, ev.lines)
	assert.Equal(t, []interface{}{"msg", 1, map[string]interface{}{"request_id": "r1", "route": "/v1/employees"}}, ev.report)

	ev = split("msg", []interface{}{core.Actor{Username: "c"}})
	assert.Equal(t, []interface{}{"msg"}, ev.report)
}
