package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/staffdesk/core"
)

var staff = []Employee{
	{ID: 1, Name: "Asha", Designation: "Engineer", City: "Pune", Salary: 120000, EmpID: "E3"},
	{ID: 2, Name: "bruno", Designation: "Designer", City: "Delhi", Salary: 45000, EmpID: "E1"},
	{ID: 3, Name: "Chen", Designation: "Senior Engineer", City: "Pune", Salary: 160000, EmpID: "E2"},
	{ID: 4, Name: "Dana", Designation: "Manager", City: "Mumbai", Salary: 95000, EmpID: "E4"},
	{ID: 5, Name: "Eli", Designation: "Designer", City: "Delhi", Salary: 45000, EmpID: "E5"},
}

func ids(records []Employee) []int {
	out := make([]int, len(records))
	for i, emp := range records {
		out[i] = emp.ID
	}
	return out
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))

	got := ComputeStats(staff)
	assert.Equal(t, Stats{
		Total:        5,
		TotalSalary:  465000,
		AvgSalary:    93000,
		MinSalary:    45000,
		MaxSalary:    160000,
		Cities:       3,
		Designations: 4,
	}, got)

	// 3 / 2 = 1.5 rounds up
	assert.Equal(t, 2, ComputeStats([]Employee{{Salary: 1}, {Salary: 2}}).AvgSalary)
}

func TestGroupBy(t *testing.T) {
	groups, err := GroupBy(staff, FieldCity)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "Pune", groups[0].Key)
	assert.Equal(t, []int{1, 3}, ids(groups[0].Members))
	assert.Equal(t, "Delhi", groups[1].Key)
	assert.Equal(t, []int{2, 5}, ids(groups[1].Members))
	assert.Equal(t, "Mumbai", groups[2].Key)

	total := 0
	for _, g := range groups {
		total += len(g.Members)
	}
	assert.Equal(t, len(staff), total)

	_, err = GroupBy(staff, FieldSalary)
	assert.IsType(t, &core.ValidationError{}, err)

	groups, err = GroupBy(nil, FieldDesignation)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter QueryFilter
		want   []int
	}{
		{name: "no filter", want: []int{1, 2, 3, 4, 5}},
		{name: "name, case insensitive", filter: QueryFilter{Search: "BRU"}, want: []int{2}},
		{name: "designation", filter: QueryFilter{Search: "engineer"}, want: []int{1, 3}},
		{name: "city is exact", filter: QueryFilter{City: "Delhi"}, want: []int{2, 5}},
		{name: "city is case sensitive", filter: QueryFilter{City: "delhi"}, want: []int{}},
		{name: "search and city", filter: QueryFilter{Search: "design", City: "Delhi"}, want: []int{2, 5}},
		{name: "search and city mismatch", filter: QueryFilter{Search: "manager", City: "Pune"}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(staff, tt.filter)
			assert.Equal(t, tt.want, ids(got))
			// idempotent
			assert.Equal(t, got, Filter(got, tt.filter))
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name      string
		orderings string
		want      []int
	}{
		{name: "none", orderings: "", want: []int{1, 2, 3, 4, 5}},
		{name: "name asc ignores case", orderings: "name", want: []int{1, 2, 3, 4, 5}},
		{name: "name desc", orderings: "-name", want: []int{5, 4, 3, 2, 1}},
		{name: "salary asc is stable", orderings: "salary", want: []int{2, 5, 4, 1, 3}},
		{name: "salary desc is stable", orderings: "-salary", want: []int{3, 1, 4, 2, 5}},
		{name: "city then salary desc", orderings: "city,-salary", want: []int{2, 5, 4, 3, 1}},
		{name: "empId", orderings: "empId", want: []int{2, 3, 1, 4, 5}},
		{name: "unknown field ignored", orderings: "bogus", want: []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(staff, core.ParseOrderings(tt.orderings))
			assert.Equal(t, tt.want, ids(got))
			assert.ElementsMatch(t, staff, got)
		})
	}
	// input untouched
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(staff))
}

func TestValidateOrderings(t *testing.T) {
	assert.NoError(t, ValidateOrderings(core.ParseOrderings("-salary,name,id")))
	assert.Error(t, ValidateOrderings(core.ParseOrderings("name,password")))
}

func TestPaginate(t *testing.T) {
	records := make([]Employee, 25)
	for i := range records {
		records[i].ID = i + 1
	}
	tests := []struct {
		name      string
		page      int
		size      int
		wantPage  int
		wantSize  int
		wantIDs   []int
		wantPages int
	}{
		{name: "first", page: 1, size: 10, wantPage: 1, wantSize: 10, wantIDs: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, wantPages: 3},
		{name: "last partial", page: 3, size: 10, wantPage: 3, wantSize: 10, wantIDs: []int{21, 22, 23, 24, 25}, wantPages: 3},
		{name: "out of range", page: 4, size: 10, wantPage: 4, wantSize: 10, wantIDs: []int{}, wantPages: 3},
		{name: "page clamps to 1", page: 0, size: 20, wantPage: 1, wantSize: 20, wantIDs: ids(records[:20]), wantPages: 2},
		{name: "default size", page: 2, size: 0, wantPage: 2, wantSize: DefaultPageSize, wantIDs: ids(records[10:20]), wantPages: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(records, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
			assert.Equal(t, 25, p.Total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantIDs, ids(p.Items))
		})
	}

	p := Paginate(nil, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}

func TestTopEarners(t *testing.T) {
	assert.Equal(t, []int{3, 1}, ids(TopEarners(staff, 2)))
	assert.Len(t, TopEarners(staff, 10), 5)
	assert.Empty(t, TopEarners(staff, -1))
}

func TestSalaryRanges(t *testing.T) {
	got := SalaryRanges(append(staff, Employee{Salary: 50000}, Employee{Salary: 150000}))
	assert.Equal(t, []Count{
		{Name: "0-50k", Value: 2},
		{Name: "50k-100k", Value: 2},
		{Name: "100k-150k", Value: 1},
		{Name: "150k+", Value: 2},
	}, got)
	for _, c := range SalaryRanges(nil) {
		assert.Zero(t, c.Value)
	}
}

func TestBreakdown(t *testing.T) {
	rows, err := Breakdown(staff, FieldCity)
	require.NoError(t, err)
	assert.Equal(t, []BreakdownRow{
		{Key: "Pune", Count: 2, Total: 280000, Avg: 140000},
		{Key: "Mumbai", Count: 1, Total: 95000, Avg: 95000},
		{Key: "Delhi", Count: 2, Total: 90000, Avg: 45000},
	}, rows)

	rows, err = Breakdown(staff, "department")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Count)

	_, err = Breakdown(staff, FieldName)
	assert.Error(t, err)
}

func TestCityCounts(t *testing.T) {
	assert.Equal(t, []Count{{"Pune", 2}, {"Delhi", 2}, {"Mumbai", 1}}, CityCounts(staff, 0))
	assert.Equal(t, []Count{{"Pune", 2}}, CityCounts(staff, 1))
}
