package report

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/trezcool/staffdesk/core/employee"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	printer   = message.NewPrinter(language.English)
	templates = template.Must(template.New("").Funcs(template.FuncMap{
		"money":     Money,
		"number":    func(n int) string { return printer.Sprintf("%d", n) },
		"date":      func(t time.Time) string { return t.Format("January 2, 2006") },
		"time":      func(t time.Time) string { return t.Format("15:04") },
		"year":      func(t time.Time) int { return t.Year() },
		"percent":   func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + "%" },
		"breakdown": breakdownTable,
	}).ParseFS(templateFS, "templates/*.html"))
)

// Money formats a whole dollar amount with thousands separators, eg. "$82,500".
func Money(n int) string {
	return printer.Sprintf("$%d", n)
}

func render(rep Report, format Format) ([]byte, error) {
	switch format {
	case FormatHTML:
		return renderTemplate(string(rep.Kind)+".html", rep)
	case FormatCSV:
		return renderCSV(rep)
	case FormatXLSX:
		return renderXLSX(rep)
	case FormatJSON:
		return renderJSON(rep)
	}
	return nil, errors.Errorf("unsupported report format %q", format)
}

func renderTemplate(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "rendering %s", name)
	}
	return buf.Bytes(), nil
}

func renderJSON(v interface{}) ([]byte, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "rendering json")
	}
	return body, nil
}

func renderCSV(rep Report) ([]byte, error) {
	header, rows := table(rep)
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = fmt.Sprint(cell)
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, errors.Wrap(err, "rendering csv")
	}
	return buf.Bytes(), nil
}

func renderXLSX(rep Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Report"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, errors.Wrap(err, "rendering xlsx")
	}

	header, rows := table(rep)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, errors.Wrap(err, "rendering xlsx")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "rendering xlsx")
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, errors.Wrap(err, "rendering xlsx")
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return nil, errors.Wrap(err, "rendering xlsx")
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "rendering xlsx")
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, errors.Wrap(err, "rendering xlsx")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "rendering xlsx")
	}
	return buf.Bytes(), nil
}

// table flattens a report into a header and rows, for the tabular formats.
func table(rep Report) ([]string, [][]interface{}) {
	var rows [][]interface{}
	switch rep.Kind {
	case KindPayroll:
		for _, emp := range rep.Employees {
			rows = append(rows, []interface{}{emp.Name, emp.Designation, emp.City, emp.Salary})
		}
		return []string{"Name", "Designation", "City", "Salary"}, rows
	case KindSalary:
		return []string{"Department", "Employees", "Total Salary", "Average Salary"}, breakdownRows(rep.Departments)
	case KindCustom:
		return []string{"City", "Employees", "Total Salary", "Average Salary"}, breakdownRows(rep.Cities)
	case KindAttendance:
		if rep.Attendance != nil {
			for _, r := range rep.Attendance.Rows {
				rows = append(rows, []interface{}{r.Employee.Name, r.Employee.Designation, r.Present, r.Absent, r.Leave, r.Rate})
			}
		}
		return []string{"Employee Name", "Designation", "Present Days", "Absent Days", "Leave Days", "Attendance %"}, rows
	}
	for _, emp := range rep.Employees {
		rows = append(rows, []interface{}{emp.Name, emp.Designation, emp.City, emp.Salary, emp.ID})
	}
	return []string{"Name", "Designation", "City", "Salary", "Employee ID"}, rows
}

// breakdownTable is the data of the "breakdown" template.
func breakdownTable(label string, rows []employee.BreakdownRow) map[string]interface{} {
	return map[string]interface{}{"Label": label, "Rows": rows}
}

func breakdownRows(breakdown []employee.BreakdownRow) [][]interface{} {
	rows := make([][]interface{}, 0, len(breakdown))
	for _, b := range breakdown {
		rows = append(rows, []interface{}{b.Key, b.Count, b.Total, b.Avg})
	}
	return rows
}
