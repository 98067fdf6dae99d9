// Package report renders the payroll, salary, attendance and employee documents of the dashboard.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/attendance"
	"github.com/trezcool/staffdesk/core/employee"
)

type Kind string

const (
	KindPayroll    Kind = "payroll"
	KindSalary     Kind = "salary"
	KindAttendance Kind = "attendance"
	KindCustom     Kind = "custom"
	KindEmployees  Kind = "employees"
)

var kindTitles = map[Kind]string{
	KindPayroll:    "Payroll Report",
	KindSalary:     "Salary Distribution Report",
	KindAttendance: "Monthly Attendance Report",
	KindCustom:     "Custom Employee Report",
	KindEmployees:  "Employee Report",
}

type Format string

const (
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var contentTypes = map[Format]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatJSON: "application/json; charset=utf-8",
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kindTitles[k]; !ok {
		return "", core.Invalid("kind", "unknown report kind: "+s)
	}
	return k, nil
}

// ParseFormat parses a report format; an empty string means html.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatHTML, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", core.Invalid("format", "unknown report format: "+s)
	}
	return f, nil
}

type (
	// Source provides the session records; session.Store implements it.
	Source interface {
		Records() []employee.Employee
		Record(id int) (employee.Employee, bool)
	}

	Report struct {
		Kind         Kind                    `json:"kind"`
		Title        string                  `json:"title"`
		AppName      string                  `json:"appName"`
		GeneratedAt  time.Time               `json:"generatedAt"`
		Stats        employee.Stats          `json:"stats"`
		Employees    []employee.Employee     `json:"employees,omitempty"`
		Departments  []employee.BreakdownRow `json:"departments,omitempty"`
		Cities       []employee.BreakdownRow `json:"cities,omitempty"`
		SalaryRanges []employee.Count        `json:"salaryRanges,omitempty"`
		Attendance   *attendance.Month       `json:"attendance,omitempty"`
	}

	// Document is a rendered report, ready to be downloaded, emailed or uploaded.
	Document struct {
		ID          string
		Filename    string
		ContentType string
		Body        []byte
	}

	Service struct {
		source     Source
		attendance *attendance.Service
		appName    string
		nowFunc    func() time.Time
	}
)

func NewService(source Source, att *attendance.Service, appName string) *Service {
	return &Service{source: source, attendance: att, appName: appName, nowFunc: time.Now}
}

// Build gathers the data of a report over the current records.
func (svc *Service) Build(kind Kind) (Report, error) {
	title, ok := kindTitles[kind]
	if !ok {
		return Report{}, core.Invalid("kind", "unknown report kind: "+string(kind))
	}
	now := svc.nowFunc()
	records := svc.source.Records()
	rep := Report{
		Kind:        kind,
		Title:       title,
		AppName:     svc.appName,
		GeneratedAt: now,
		Stats:       employee.ComputeStats(records),
	}

	var err error
	switch kind {
	case KindEmployees:
		rep.Employees = records
	case KindPayroll:
		rep.Employees = records
		if rep.Departments, err = employee.Breakdown(records, employee.FieldDesignation); err != nil {
			return Report{}, err
		}
		if rep.Cities, err = employee.Breakdown(records, employee.FieldCity); err != nil {
			return Report{}, err
		}
	case KindSalary:
		if rep.Departments, err = employee.Breakdown(records, employee.FieldDesignation); err != nil {
			return Report{}, err
		}
		rep.SalaryRanges = employee.SalaryRanges(records)
	case KindCustom:
		if rep.Cities, err = employee.Breakdown(records, employee.FieldCity); err != nil {
			return Report{}, err
		}
		rep.SalaryRanges = employee.SalaryRanges(records)
	case KindAttendance:
		month, err := svc.attendance.Month(now.Year(), int(now.Month()))
		if err != nil {
			return Report{}, errors.Wrap(err, "building attendance report")
		}
		rep.Attendance = &month
	}
	return rep, nil
}

// Render builds and renders a report.
func (svc *Service) Render(kind Kind, format Format) (*Document, error) {
	rep, err := svc.Build(kind)
	if err != nil {
		return nil, err
	}
	body, err := render(rep, format)
	if err != nil {
		return nil, err
	}
	return newDocument(string(kind)+"_report", format, rep.GeneratedAt, body), nil
}

// RenderSlip renders the salary slip of an employee, as html or json.
func (svc *Service) RenderSlip(id int, format Format) (*Document, error) {
	emp, ok := svc.source.Record(id)
	if !ok {
		return nil, employee.ErrNotFound
	}
	slip := NewSlip(emp, svc.nowFunc())
	slip.AppName = svc.appName

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatHTML:
		body, err = renderTemplate("slip.html", slip)
	case FormatJSON:
		body, err = renderJSON(slip)
	default:
		return nil, core.Invalid("format", "salary slips are only rendered as html or json")
	}
	if err != nil {
		return nil, err
	}
	return newDocument("salary_slip_"+strings.ReplaceAll(strings.ToLower(emp.Name), " ", "_"), format, slip.GeneratedAt, body), nil
}

// ExportEmployee renders a single employee as an indented JSON download.
func (svc *Service) ExportEmployee(id int) (*Document, error) {
	emp, ok := svc.source.Record(id)
	if !ok {
		return nil, employee.ErrNotFound
	}
	body, err := renderJSON(emp)
	if err != nil {
		return nil, err
	}
	return newDocument("employee_"+strings.ReplaceAll(strings.ToLower(emp.Name), " ", "_"), FormatJSON, svc.nowFunc(), body), nil
}

func newDocument(prefix string, format Format, at time.Time, body []byte) *Document {
	id := uuid.New().String()
	return &Document{
		ID:          id,
		Filename:    prefix + "_" + at.Format("2006-01-02") + "_" + id[:8] + "." + string(format),
		ContentType: contentTypes[format],
		Body:        body,
	}
}
