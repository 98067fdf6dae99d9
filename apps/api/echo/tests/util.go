package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/staffdesk/apps/api/echo"
	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/attendance"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
	"github.com/trezcool/staffdesk/services/email"
	"github.com/trezcool/staffdesk/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type (
	// staticFetcher serves a fixed payload in place of the remote data source.
	staticFetcher struct {
		payload interface{}
		err     error
	}

	mailbox interface {
		core.EmailService
		SentMessages() []core.EmailMessage
	}

	testApp struct {
		*Server
		conf  *core.Config
		store *session.Store
		mail  mailbox
	}
)

func (f *staticFetcher) Fetch(context.Context) (interface{}, error) {
	return f.payload, f.err
}

// setup returns a server whose session is logged in with testutil.Employees().
func setup(t *testing.T, fetcher ...session.Fetcher) *testApp {
	t.Helper()
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()

	var f session.Fetcher = &staticFetcher{payload: []interface{}{
		[]interface{}{"Asha Rao", "Engineer", "Pune", "E1001", "2020-01-06", "$82,500"},
		[]interface{}{"Bruno Diaz", "Designer", "Delhi", "E1002", "2021-03-15", "$45,000"},
	}}
	if len(fetcher) > 0 {
		f = fetcher[0]
	}

	logger := testutil.NewLogger()
	translator := core.NewTranslator()
	store := testutil.NewStore(t, testutil.Employees()...)
	sessSvc, err := session.NewService(store, f, conf.Dashboard, logger)
	if err != nil {
		t.Fatalf("session.NewService() failed: %v", err)
	}
	attSvc := attendance.NewService(store)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      core.NewValidate(translator),
		Translator:    translator,
		SessionSvc:    sessSvc,
		EmployeeSvc:   employee.NewService(store, conf.Dashboard.PageSize),
		AttendanceSvc: attSvc,
		ReportSvc:     report.NewService(store, attSvc, conf.AppName),
		MailSvc:       mailSvc,
	})
	return &testApp{Server: srv, conf: conf, store: store, mail: mailSvc}
}

func (app *testApp) token(t *testing.T, origIat ...int64) string {
	t.Helper()
	token, err := GenerateToken(app.conf, NewClaims(app.conf, app.conf.Dashboard.Username, origIat...))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return token
}

// serve runs the request tests in order against app.
func (app *testApp) serve(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		assert.Empty(t, rec.Body.String())
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q failed: %v", rec.Body.String(), err)
	}
}

func daysAgo(n int) int64 {
	return time.Now().Add(-time.Duration(n) * 24 * time.Hour).Unix()
}
