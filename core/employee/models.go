package employee

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/staffdesk/core"
)

// Defaults used when a field is missing from the source payload.
const (
	DefaultName        = "Unknown"
	DefaultDesignation = "N/A"
	DefaultCity        = "N/A"

	DefaultPageSize = 10
)

// Sortable & groupable fields
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDesignation = "designation"
	FieldCity        = "city"
	FieldSalary      = "salary"
	FieldEmpID       = "empId"
	FieldJoinDate    = "joinDate"
)

var (
	SortableFields  = []string{FieldID, FieldName, FieldDesignation, FieldCity, FieldSalary, FieldEmpID, FieldJoinDate}
	GroupableFields = []string{FieldCity, FieldDesignation}
)

// Employee is the canonical record every payload shape is normalized into.
type Employee struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	City        string `json:"city"`
	Salary      int    `json:"salary"`
	EmpID       string `json:"empId,omitempty"`
	JoinDate    string `json:"joinDate,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Department  string `json:"department,omitempty"`
}

// Amount is a salary as typed by a user: "$82,500", "82500" or a JSON number.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) Int() int { return ParseSalary(string(a)) }

// UpdateEmployee defines what information may be provided to modify an existing Employee.
// nil fields are left untouched.
type UpdateEmployee struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Designation *string `json:"designation" validate:"omitempty,notblank"`
	City        *string `json:"city" validate:"omitempty,notblank"`
	Salary      *Amount `json:"salary" validate:"omitempty,salary"`
	EmpID       *string `json:"empId"`
	JoinDate    *string `json:"joinDate" validate:"omitempty,isodate"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Department  *string `json:"department"`
}

func (uu *UpdateEmployee) Validate(validate *validator.Validate) error {
	for _, fld := range []*string{uu.Name, uu.Designation, uu.City, uu.EmpID, uu.JoinDate, uu.Phone, uu.Department} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	if uu.Email != nil {
		*uu.Email = core.CleanString(*uu.Email, true /* lower */)
	}
	return validate.Struct(uu)
}

func (uu UpdateEmployee) IsEmpty() bool {
	return uu.Name == nil && uu.Designation == nil && uu.City == nil && uu.Salary == nil &&
		uu.EmpID == nil && uu.JoinDate == nil && uu.Email == nil && uu.Phone == nil && uu.Department == nil
}

// Apply merges the set fields over emp.
func (uu UpdateEmployee) Apply(emp Employee) Employee {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&emp.Name, uu.Name)
	set(&emp.Designation, uu.Designation)
	set(&emp.City, uu.City)
	set(&emp.EmpID, uu.EmpID)
	set(&emp.JoinDate, uu.JoinDate)
	set(&emp.Email, uu.Email)
	set(&emp.Phone, uu.Phone)
	set(&emp.Department, uu.Department)
	if uu.Salary != nil {
		emp.Salary = uu.Salary.Int()
	}
	return emp
}

type QueryFilter struct {
	Search string `query:"search"`
	City   string `query:"city"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.City == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.City = core.CleanString(qf.City)
}

// Stats aggregates salaries over a record set. Every field is 0 on an empty set.
type Stats struct {
	Total        int `json:"total"`
	TotalSalary  int `json:"totalSalary"`
	AvgSalary    int `json:"avgSalary"`
	MinSalary    int `json:"minSalary"`
	MaxSalary    int `json:"maxSalary"`
	Cities       int `json:"cities"`
	Designations int `json:"designations"`
}

type Group struct {
	Key     string     `json:"key"`
	Members []Employee `json:"members"`
}

type BreakdownRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Total int    `json:"total"`
	Avg   int    `json:"avg"`
}

type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Page struct {
	Items      []Employee `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

// ParseID parses a path id; invalid ids are reported as ErrNotFound.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

func isSortable(field string) bool {
	for _, f := range SortableFields {
		if f == field {
			return true
		}
	}
	return false
}

func isGroupable(field string) bool {
	for _, f := range GroupableFields {
		if f == field {
			return true
		}
	}
	return false
}
