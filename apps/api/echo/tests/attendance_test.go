package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/staffdesk/core/attendance"
	"github.com/trezcool/staffdesk/tests"
)

func Test_attendanceApi(t *testing.T) {
	app := setup(t)
	token := app.token(t)
	emps := testutil.Employees()

	mark := func(date string, id int, status attendance.Status) []byte {
		return marchallObj(t, attendance.NewMark{Date: date, EmployeeID: id, Status: status})
	}
	rows := func(statuses ...attendance.Status) []attendance.Row {
		rr := make([]attendance.Row, len(emps))
		for i, emp := range emps {
			rr[i] = attendance.Row{Employee: emp, Status: statuses[i]}
		}
		return rr
	}
	day := func(date string, summary, overall attendance.Summary, statuses ...attendance.Status) []byte {
		return marchallObj(t, attendance.Day{Date: date, Rows: rows(statuses...), Summary: summary, Overall: overall})
	}
	nm := attendance.NotMarked

	app.serve(t, []httpTest{
		{name: "auth required", path: "/v1/attendance", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "empty day", path: "/v1/attendance?date=2024-05-06", token: token, wantCode: http.StatusOK,
			wantData: day("2024-05-06", attendance.Summary{NotMarked: 4}, attendance.Summary{}, nm, nm, nm, nm),
		},
		{
			name: "invalid date", path: "/v1/attendance?date=06-05-2024", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"date": "date must be formatted as YYYY-MM-DD"}),
		},
		{
			name: "mark", method: http.MethodPost, path: "/v1/attendance", token: token, body: mark("2024-05-06", 2, attendance.Leave),
			wantCode: http.StatusOK,
			wantData: day("2024-05-06", attendance.Summary{Leave: 1, NotMarked: 3}, attendance.Summary{Leave: 1}, nm, attendance.Leave, nm, nm),
		},
		{
			name: "mark another day", method: http.MethodPost, path: "/v1/attendance", token: token, body: mark(" 2024-05-07 ", 1, attendance.Present),
			wantCode: http.StatusOK,
			wantData: day("2024-05-07", attendance.Summary{Present: 1, NotMarked: 3}, attendance.Summary{Present: 1, Leave: 1}, attendance.Present, nm, nm, nm),
		},
		{
			name: "unmark", method: http.MethodPost, path: "/v1/attendance", token: token, body: mark("2024-05-06", 2, nm),
			wantCode: http.StatusOK,
			wantData: day("2024-05-06", attendance.Summary{NotMarked: 4}, attendance.Summary{Present: 1}, nm, nm, nm, nm),
		},
		{
			name: "invalid status", method: http.MethodPost, path: "/v1/attendance", token: token, body: mark("2024-05-06", 2, "Late"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": `"Late" is not one of Present, Absent, Leave, Not Marked`}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/attendance", token: token, body: []byte(`{"status": "Present"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "this field is required", "employeeId": "this field is required"}),
		},
		{
			name: "unknown employee", method: http.MethodPost, path: "/v1/attendance", token: token, body: mark("2024-05-06", 42, attendance.Absent),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "month", path: "/v1/attendance/month?year=2024&month=5", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, attendance.Month{Year: 2024, Month: 5, WorkingDays: 23, Rows: []attendance.MonthRow{
				{Employee: emps[0], Present: 1, Rate: 4.3},
				{Employee: emps[1]},
				{Employee: emps[2]},
				{Employee: emps[3]},
			}}),
		},
		{
			name: "invalid month", path: "/v1/attendance/month?year=2024&month=13", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"month": "month must be between 1 and 12"}),
		},
	})
}
