package tests

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/staffdesk/apps/api/echo"
	"github.com/trezcool/staffdesk/core/employee"
)

func Test_sessionApi_login(t *testing.T) {
	creds := func(username, password string) []byte {
		return marchallObj(t, LoginRequest{Username: username, Password: password})
	}

	t.Run("errors", func(t *testing.T) {
		app := setup(t, &staticFetcher{err: errors.New("connection refused")})
		app.serve(t, []httpTest{
			{
				name: "credentials required", method: http.MethodPost, path: "/v1/session/login", body: []byte(`{}`),
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
			},
			{
				name: "wrong password", method: http.MethodPost, path: "/v1/session/login", body: creds("testuser", "nope"),
				wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
			},
			{
				name: "wrong username", method: http.MethodPost, path: "/v1/session/login", body: creds("admin", "Test123"),
				wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
			},
			{
				name: "source down", method: http.MethodPost, path: "/v1/session/login", body: creds("testuser", "Test123"),
				wantCode: http.StatusBadGateway, wantData: marchallObj(t, httpErr{Error: "employee data source unavailable"}),
			},
		})
		// failed logins leave the session untouched
		assert.True(t, app.store.Authenticated())
		assert.Len(t, app.store.Records(), 4)
	})

	t.Run("success", func(t *testing.T) {
		app := setup(t)
		req, rec := newRequest(http.MethodPost, "/v1/session/login", creds(" testuser ", "Test123"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res LoginResponse
		decodeBody(t, rec, &res)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, employee.ShapeRows, res.Shape)

		records := app.store.Records()
		require.Len(t, records, 2)
		assert.Equal(t, employee.Employee{
			ID: 1, Name: "Asha Rao", Designation: "Engineer", City: "Pune", Salary: 82500, EmpID: "E1001", JoinDate: "2020-01-06",
		}, records[0])

		// the new token is usable
		req, rec = newAuthRequest(http.MethodGet, "/v1/employees/2", res.Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_sessionApi_retrieve(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/session")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/session", app.token(t))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SessionResponse{Authenticated: true, Username: "testuser", Records: 4, Version: app.store.Version()}),
	}, rec)
}

func Test_sessionApi_logout(t *testing.T) {
	app := setup(t)
	token := app.token(t)

	app.serve(t, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/session/logout", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "logout", method: http.MethodPost, path: "/v1/session/logout", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: "Logged out."}),
		},
		{
			name: "logging out twice is fine", method: http.MethodPost, path: "/v1/session/logout", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: "Logged out."}),
		},
		{
			name: "valid token, closed session", path: "/v1/employees", token: token,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "session logged out"}),
		},
		{
			name: "no refresh after logout", method: http.MethodPost, path: "/v1/session/token-refresh", token: token,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "session logged out"}),
		},
	})
	assert.False(t, app.store.Authenticated())
	assert.Empty(t, app.store.Records())
}

func Test_sessionApi_refreshToken(t *testing.T) {
	app := setup(t)

	app.serve(t, []httpTest{
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/session/token-refresh", token: app.token(t, daysAgo(8)),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{
			name: "bad token", method: http.MethodPost, path: "/v1/session/token-refresh", token: "not.a.token",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/session/token-refresh", app.token(t, daysAgo(2)))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res TokenResponse
	decodeBody(t, rec, &res)
	assert.NotEmpty(t, res.Token)
}

func Test_sessionApi_debug(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/debug", app.token(t))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var diag map[string]interface{}
	decodeBody(t, rec, &diag)
	assert.Equal(t, true, diag["authenticated"])
	assert.Equal(t, float64(4), diag["records"])
}
