package employee

import (
	"math"
	"sort"
	"strings"

	"github.com/trezcool/staffdesk/core"
)

// View builders are pure: they never modify their input and always return fresh slices.

func ComputeStats(records []Employee) Stats {
	if len(records) == 0 {
		return Stats{}
	}
	stats := Stats{
		Total:     len(records),
		MinSalary: records[0].Salary,
		MaxSalary: records[0].Salary,
	}
	cities := make(map[string]struct{})
	designations := make(map[string]struct{})
	for _, emp := range records {
		stats.TotalSalary += emp.Salary
		if emp.Salary < stats.MinSalary {
			stats.MinSalary = emp.Salary
		}
		if emp.Salary > stats.MaxSalary {
			stats.MaxSalary = emp.Salary
		}
		cities[emp.City] = struct{}{}
		designations[emp.Designation] = struct{}{}
	}
	stats.AvgSalary = roundDiv(stats.TotalSalary, stats.Total)
	stats.Cities = len(cities)
	stats.Designations = len(designations)
	return stats
}

// GroupBy partitions records on city or designation.
// Groups come in first-occurrence order and keep the record order.
func GroupBy(records []Employee, field string) ([]Group, error) {
	if !isGroupable(field) {
		return nil, core.Invalid("by", "cannot group by "+field)
	}
	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, emp := range records {
		key := fieldString(emp, field)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Members = append(groups[i].Members, emp)
	}
	return groups, nil
}

// Filter keeps the records matching every set criterion.
// Search is a case-insensitive substring of the name or the designation; City is exact.
func Filter(records []Employee, filter QueryFilter) []Employee {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	city := strings.TrimSpace(filter.City)
	result := make([]Employee, 0, len(records))
	for _, emp := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(emp.Name), search) &&
			!strings.Contains(strings.ToLower(emp.Designation), search) {
			continue
		}
		if city != "" && emp.City != city {
			continue
		}
		result = append(result, emp)
	}
	return result
}

// Sort orders a copy of records on the given orderings, first ordering first.
// Text fields compare case-insensitively, salary and id numerically. Unknown fields are ignored.
// The sort is stable.
func Sort(records []Employee, orderings []core.Ordering) []Employee {
	sorted := make([]Employee, len(records))
	copy(sorted, records)

	valid := make([]core.Ordering, 0, len(orderings))
	for _, ord := range orderings {
		if isSortable(ord.Field) {
			valid = append(valid, ord)
		}
	}
	if len(valid) == 0 {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, ord := range valid {
			c := compareField(sorted[i], sorted[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return sorted
}

// ValidateOrderings reports the first ordering on a field records cannot be sorted on.
func ValidateOrderings(orderings []core.Ordering) error {
	for _, ord := range orderings {
		if !isSortable(ord.Field) {
			return core.Invalid("ordering", "cannot order by "+ord.Field)
		}
	}
	return nil
}

// Paginate returns the 1-based page of records.
// page < 1 is treated as 1, size < 1 as DefaultPageSize; a page past the end is empty.
func Paginate(records []Employee, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(records)
	p := Page{
		Items:      make([]Employee, 0),
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}
	p.Items = append(p.Items, records[start:end]...)
	return p
}

// TopEarners returns the n best paid employees, highest first.
func TopEarners(records []Employee, n int) []Employee {
	sorted := Sort(records, []core.Ordering{{Field: FieldSalary}})
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

type salaryRange struct {
	label    string
	min, max int // [min, max)
}

var salaryRanges = []salaryRange{
	{"0-50k", 0, 50000},
	{"50k-100k", 50000, 100000},
	{"100k-150k", 100000, 150000},
	{"150k+", 150000, math.MaxInt},
}

// SalaryRanges counts records per salary bucket. Every bucket is present, even when empty.
func SalaryRanges(records []Employee) []Count {
	counts := make([]Count, len(salaryRanges))
	for i, r := range salaryRanges {
		counts[i].Name = r.label
	}
	for _, emp := range records {
		for i, r := range salaryRanges {
			if emp.Salary >= r.min && emp.Salary < r.max {
				counts[i].Value++
				break
			}
		}
	}
	return counts
}

// Breakdown summarizes salaries per city, designation or department, biggest total first.
func Breakdown(records []Employee, field string) ([]BreakdownRow, error) {
	if !isGroupable(field) && field != "department" {
		return nil, core.Invalid("by", "cannot break down by "+field)
	}
	rows := make([]BreakdownRow, 0)
	index := make(map[string]int)
	for _, emp := range records {
		key := fieldString(emp, field)
		if key == "" {
			key = DefaultDesignation
		}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, BreakdownRow{Key: key})
		}
		rows[i].Count++
		rows[i].Total += emp.Salary
	}
	for i := range rows {
		rows[i].Avg = roundDiv(rows[i].Total, rows[i].Count)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

// CityCounts counts employees per city, most populated first.
// limit < 1 returns every city.
func CityCounts(records []Employee, limit int) []Count {
	counts := make([]Count, 0)
	index := make(map[string]int)
	for _, emp := range records {
		i, ok := index[emp.City]
		if !ok {
			i = len(counts)
			index[emp.City] = i
			counts = append(counts, Count{Name: emp.City})
		}
		counts[i].Value++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Value > counts[j].Value })
	if limit > 0 && limit < len(counts) {
		counts = counts[:limit]
	}
	return counts
}

func compareField(a, b Employee, field string) int {
	switch field {
	case FieldID:
		return compareInt(a.ID, b.ID)
	case FieldSalary:
		return compareInt(a.Salary, b.Salary)
	}
	return strings.Compare(strings.ToLower(fieldString(a, field)), strings.ToLower(fieldString(b, field)))
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func fieldString(emp Employee, field string) string {
	switch field {
	case FieldName:
		return emp.Name
	case FieldDesignation:
		return emp.Designation
	case FieldCity:
		return emp.City
	case FieldEmpID:
		return emp.EmpID
	case FieldJoinDate:
		return emp.JoinDate
	case "department":
		return emp.Department
	}
	return ""
}

// roundDiv divides rounding half away from zero.
func roundDiv(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d)))
}
