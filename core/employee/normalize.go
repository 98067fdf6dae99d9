package employee

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Shape is the recognized layout of a raw payload.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeEmpty         // empty sequence
	ShapeObject        // mapping of arbitrary keys to rows
	ShapeRows          // sequence of positional rows
	ShapeObjects       // sequence of partial employee objects
	ShapeNested        // sequence whose first element is itself rows or objects
)

var shapeNames = map[Shape]string{
	ShapeUnknown: "unknown",
	ShapeEmpty:   "empty",
	ShapeObject:  "object",
	ShapeRows:    "rows",
	ShapeObjects: "objects",
	ShapeNested:  "nested",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// positional row layout
const (
	colName = iota
	colDesignation
	colCity
	colEmpID
	colJoinDate
	colSalary
)

// Classify determines which layout raw follows.
func Classify(raw interface{}) Shape {
	switch raw.(type) {
	case *Object, map[string]interface{}:
		return ShapeObject
	}
	items, ok := asList(raw)
	if !ok {
		return ShapeUnknown
	}
	if len(items) == 0 {
		return ShapeEmpty
	}
	if isObject(items[0]) {
		return ShapeObjects
	}
	first, ok := asList(items[0])
	if !ok {
		return ShapeUnknown
	}
	// an empty leading row is still a row
	if len(first) > 0 {
		if _, ok := asList(first[0]); ok || isObject(first[0]) {
			return ShapeNested
		}
	}
	return ShapeRows
}

// Normalize converts any recognized payload into employee records.
// It never fails: unrecognized or absent payloads yield no records.
func Normalize(raw interface{}) []Employee {
	records, _ := normalize(raw, true)
	return records
}

// NormalizeStrict is Normalize, but reports unrecognized payloads with ErrMalformedPayload.
// A nil payload or an empty sequence is not malformed.
func NormalizeStrict(raw interface{}) ([]Employee, error) {
	if raw == nil {
		return []Employee{}, nil
	}
	return normalize(raw, true)
}

func normalize(raw interface{}, unwrap bool) ([]Employee, error) {
	shape := Classify(raw)
	switch shape {
	case ShapeEmpty:
		return []Employee{}, nil
	case ShapeRows, ShapeObjects:
		items, _ := asList(raw)
		return fromItems(items), nil
	case ShapeObject:
		return fromObject(raw), nil
	case ShapeNested:
		if unwrap {
			items, _ := asList(raw)
			return normalize(items[0], false)
		}
	}
	return []Employee{}, ErrMalformedPayload
}

// fromItems converts a sequence of rows and/or objects. Ids are 1-based ordinals.
func fromItems(items []interface{}) []Employee {
	records := make([]Employee, 0, len(items))
	for _, item := range items {
		emp, ok := fromItem(item)
		if !ok {
			continue
		}
		emp.ID = len(records) + 1
		records = append(records, emp)
	}
	return records
}

// fromObject converts the values of a key->row mapping, in key enumeration order.
// A positive integer "id" on an object value is kept when it is not already taken.
func fromObject(raw interface{}) []Employee {
	var values []interface{}
	switch obj := raw.(type) {
	case *Object:
		for _, k := range obj.OrderedKeys() {
			values = append(values, obj.Fields[k])
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range orderKeys(keys) {
			values = append(values, obj[k])
		}
	}

	records := make([]Employee, 0, len(values))
	sourceIDs := make([]int, 0, len(values))
	taken := make(map[int]bool)
	for _, val := range values {
		emp, ok := fromItem(val)
		if !ok {
			continue
		}
		id := 0
		if fields, ok := objectFields(val); ok {
			if n := intValue(lookupField(fields, "id")); n > 0 && !taken[n] {
				id = n
				taken[n] = true
			}
		}
		records = append(records, emp)
		sourceIDs = append(sourceIDs, id)
	}

	next := 1
	for i := range records {
		if sourceIDs[i] > 0 {
			records[i].ID = sourceIDs[i]
			continue
		}
		id := i + 1
		if taken[id] {
			for taken[next] {
				next++
			}
			id = next
		}
		taken[id] = true
		records[i].ID = id
	}
	return records
}

func fromItem(item interface{}) (Employee, bool) {
	if row, ok := asList(item); ok {
		return fromRow(row), true
	}
	if fields, ok := objectFields(item); ok {
		return fromFields(fields), true
	}
	return Employee{}, false
}

func fromRow(row []interface{}) Employee {
	at := func(i int) interface{} {
		if i < len(row) {
			return row[i]
		}
		return nil
	}
	return Employee{
		Name:        withDefault(scalarString(at(colName)), DefaultName),
		Designation: withDefault(scalarString(at(colDesignation)), DefaultDesignation),
		City:        withDefault(scalarString(at(colCity)), DefaultCity),
		EmpID:       scalarString(at(colEmpID)),
		JoinDate:    scalarString(at(colJoinDate)),
		Salary:      ParseSalary(at(colSalary)),
	}
}

func fromFields(fields map[string]interface{}) Employee {
	str := func(keys ...string) string {
		return scalarString(lookupField(fields, keys...))
	}
	return Employee{
		Name:        withDefault(str("name"), DefaultName),
		Designation: withDefault(str("designation"), DefaultDesignation),
		City:        withDefault(str("city"), DefaultCity),
		EmpID:       str("empid", "emp_id"),
		JoinDate:    str("joindate", "join_date"),
		Email:       str("email"),
		Phone:       str("phone"),
		Department:  str("department"),
		Salary:      ParseSalary(lookupField(fields, "salary")),
	}
}

// objectFields returns the fields of an object value keyed by their lower-cased name.
func objectFields(v interface{}) (map[string]interface{}, bool) {
	var src map[string]interface{}
	switch obj := v.(type) {
	case *Object:
		src = obj.Fields
	case map[string]interface{}:
		src = obj
	case map[string]string:
		src = make(map[string]interface{}, len(obj))
		for k, s := range obj {
			src[k] = s
		}
	default:
		return nil, false
	}
	fields := make(map[string]interface{}, len(src))
	for k, val := range src {
		fields[strings.ToLower(k)] = val
	}
	return fields, true
}

func lookupField(fields map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if val, ok := fields[k]; ok && val != nil {
			return val
		}
	}
	return nil
}

func isObject(v interface{}) bool {
	_, ok := objectFields(v)
	return ok
}

func asList(v interface{}) ([]interface{}, bool) {
	switch list := v.(type) {
	case []interface{}:
		return list, true
	case []string:
		items := make([]interface{}, len(list))
		for i, s := range list {
			items[i] = s
		}
		return items, true
	case [][]string:
		items := make([]interface{}, len(list))
		for i, row := range list {
			items[i] = row
		}
		return items, true
	case [][]interface{}:
		items := make([]interface{}, len(list))
		for i, row := range list {
			items[i] = row
		}
		return items, true
	case []map[string]interface{}:
		items := make([]interface{}, len(list))
		for i, obj := range list {
			items[i] = obj
		}
		return items, true
	case []*Object:
		items := make([]interface{}, len(list))
		for i, obj := range list {
			items[i] = obj
		}
		return items, true
	}
	return nil, false
}

// scalarString renders a scalar field value; lists, objects and nil become "".
func scalarString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ParseSalary extracts a non-negative whole amount from v.
// Strings drop "$", "," and whitespace, then keep the leading digits ("82,500.75" => 82500).
// Numbers are truncated. Anything else, negatives included, yields 0.
func ParseSalary(v interface{}) int {
	switch val := v.(type) {
	case string:
		return parseSalaryString(val)
	case json.Number:
		return parseSalaryString(val.String())
	case float64:
		return truncate(val)
	case float32:
		return truncate(float64(val))
	case int:
		if val < 0 {
			return 0
		}
		return val
	case int64:
		return truncate(float64(val))
	}
	return 0
}

func parseSalaryString(s string) int {
	s = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "").Replace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		if f, ok := parseFloat(s); ok {
			return truncate(f) // exponent forms such as "1e5"
		}
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.MaxInt32
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		if f, ok := parseFloat(s); ok {
			return truncate(f)
		}
	}
	return n
}

// parseFloat accepts out of range values, which ParseFloat reports as ±Inf or 0.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func truncate(f float64) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func intValue(v interface{}) int {
	switch val := v.(type) {
	case json.Number:
		n, err := strconv.Atoi(val.String())
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return n
	case float64:
		if val != math.Trunc(val) {
			return 0
		}
		return int(val)
	case int:
		return val
	}
	return 0
}
