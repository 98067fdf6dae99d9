// Package attendance tracks daily presence marks of the session employees.
package attendance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
)

// DateLayout is the format of attendance dates.
const DateLayout = "2006-01-02"

type Status string

const (
	Present   Status = "Present"
	Absent    Status = "Absent"
	Leave     Status = "Leave"
	NotMarked Status = "Not Marked"
)

var ErrInvalidStatus = errors.New("invalid attendance status")

func (s Status) IsValid() bool {
	switch s {
	case Present, Absent, Leave, NotMarked:
		return true
	}
	return false
}

type (
	// Repository stores the marks; session.Store implements it.
	Repository interface {
		Records() []employee.Employee
		Record(id int) (employee.Employee, bool)
		MarkAttendance(date string, id int, status string) error
		Attendance(date string) map[int]string
		AllAttendance() map[string]map[int]string
	}

	// NewMark is a mark submitted through the API. NotMarked clears a previous mark.
	NewMark struct {
		Date       string `json:"date" validate:"required,isodate"`
		EmployeeID int    `json:"employeeId" validate:"required,gt=0"`
		Status     Status `json:"status" validate:"required"`
	}

	Summary struct {
		Present   int `json:"present"`
		Absent    int `json:"absent"`
		Leave     int `json:"leave"`
		NotMarked int `json:"notMarked"`
	}

	Row struct {
		Employee employee.Employee `json:"employee"`
		Status   Status            `json:"status"`
	}

	Day struct {
		Date    string  `json:"date"`
		Rows    []Row   `json:"rows"`
		Summary Summary `json:"summary"`
		// Overall counts every mark recorded, whatever the date.
		Overall Summary `json:"overall"`
	}

	MonthRow struct {
		Employee employee.Employee `json:"employee"`
		Present  int               `json:"present"`
		Absent   int               `json:"absent"`
		Leave    int               `json:"leave"`
		Rate     float64           `json:"rate"` // % of working days present
	}

	Month struct {
		Year        int        `json:"year"`
		Month       int        `json:"month"`
		WorkingDays int        `json:"workingDays"`
		Rows        []MonthRow `json:"rows"`
	}

	Service struct {
		repo Repository
	}
)

func (nm *NewMark) Validate(validate *validator.Validate) error {
	nm.Date = core.CleanString(nm.Date)
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if !nm.Status.IsValid() {
		return statusError(nm.Status)
	}
	return nil
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Mark records the status of an employee on date.
func (svc *Service) Mark(date string, id int, status Status) error {
	if _, err := parseDate(date); err != nil {
		return err
	}
	if !status.IsValid() {
		return statusError(status)
	}
	if _, ok := svc.repo.Record(id); !ok {
		return employee.ErrNotFound
	}
	value := string(status)
	if status == NotMarked {
		value = ""
	}
	if err := svc.repo.MarkAttendance(date, id, value); err != nil {
		return errors.Wrap(err, "attendance.Service.Mark")
	}
	return nil
}

// Day lists every employee with their status on date.
func (svc *Service) Day(date string) (Day, error) {
	if _, err := parseDate(date); err != nil {
		return Day{}, err
	}
	marks := svc.repo.Attendance(date)
	day := Day{Date: date, Rows: make([]Row, 0)}
	for _, emp := range svc.repo.Records() {
		status := NotMarked
		if s, ok := marks[emp.ID]; ok {
			status = Status(s)
		}
		day.Rows = append(day.Rows, Row{Employee: emp, Status: status})
		day.Summary.add(status)
	}
	for _, marks := range svc.repo.AllAttendance() {
		for _, s := range marks {
			day.Overall.add(Status(s))
		}
	}
	return day, nil
}

// Month summarizes the marks of every employee over a calendar month.
func (svc *Service) Month(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, core.Invalid("month", "month must be between 1 and 12")
	}
	if year < 1 {
		return Month{}, core.Invalid("year", "invalid year")
	}

	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	type counts struct{ present, absent, leave int }
	perEmployee := make(map[int]*counts)
	for date, marks := range svc.repo.AllAttendance() {
		if !strings.HasPrefix(date, prefix) {
			continue
		}
		for id, s := range marks {
			c := perEmployee[id]
			if c == nil {
				c = &counts{}
				perEmployee[id] = c
			}
			switch Status(s) {
			case Present:
				c.present++
			case Absent:
				c.absent++
			case Leave:
				c.leave++
			}
		}
	}

	m := Month{Year: year, Month: month, WorkingDays: WorkingDays(year, time.Month(month)), Rows: make([]MonthRow, 0)}
	for _, emp := range svc.repo.Records() {
		row := MonthRow{Employee: emp}
		if c := perEmployee[emp.ID]; c != nil {
			row.Present, row.Absent, row.Leave = c.present, c.absent, c.leave
		}
		if m.WorkingDays > 0 {
			row.Rate = math.Round(float64(row.Present)/float64(m.WorkingDays)*1000) / 10
		}
		m.Rows = append(m.Rows, row)
	}
	sort.SliceStable(m.Rows, func(i, j int) bool { return m.Rows[i].Rate > m.Rows[j].Rate })
	return m, nil
}

// WorkingDays counts the Monday to Friday days of a month.
func WorkingDays(year int, month time.Month) int {
	n := 0
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

func (s *Summary) add(status Status) {
	switch status {
	case Present:
		s.Present++
	case Absent:
		s.Absent++
	case Leave:
		s.Leave++
	default:
		s.NotMarked++
	}
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, core.Invalid("date", "date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func statusError(status Status) error {
	return core.NewValidationError(ErrInvalidStatus, core.FieldError{
		Field: "status",
		Error: fmt.Sprintf("%q is not one of %s, %s, %s, %s", status, Present, Absent, Leave, NotMarked),
	})
}
