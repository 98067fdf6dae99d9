package session

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
)

type mapKV struct {
	mu      sync.Mutex
	data    map[string]string
	failSet    error
	failDelete error
	writes     int
}

func newMapKV() *mapKV { return &mapKV{data: make(map[string]string)} }

func (kv *mapKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	val, ok := kv.data[key]
	return val, ok, nil
}

func (kv *mapKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failSet != nil {
		return kv.failSet
	}
	kv.writes++
	kv.data[key] = value
	return nil
}

func (kv *mapKV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failDelete != nil {
		return kv.failDelete
	}
	delete(kv.data, key)
	return nil
}

var testRecords = []employee.Employee{
	{ID: 1, Name: "Asha", Designation: "Engineer", City: "Pune", Salary: 82500},
	{ID: 2, Name: "Bruno", Designation: "Designer", City: "Delhi", Salary: 45000},
	{ID: 3, Name: "Chen", Designation: "Manager", City: "Mumbai", Salary: 120000},
}

func TestStore_LoginLogout(t *testing.T) {
	kv := newMapKV()
	s := NewStore(kv)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Records())

	require.NoError(t, s.Login(testRecords))
	assert.True(t, s.Authenticated())
	assert.Equal(t, testRecords, s.Records())
	assert.Equal(t, "true", kv.data[KeyAuthenticated])

	require.NoError(t, s.SetPhoto(1, "data:image/jpeg;base64,AAA"))
	require.NoError(t, s.Logout())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Records())
	_, stored := kv.data[KeyRecords]
	assert.False(t, stored)
	assert.Equal(t, "false", kv.data[KeyAuthenticated])

	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load())
	assert.False(t, reloaded.Authenticated())
	assert.Empty(t, reloaded.Records())

	// photos survive logout
	photo, ok := s.Photo(1)
	assert.True(t, ok)
	assert.Equal(t, "data:image/jpeg;base64,AAA", photo)
}

func TestStore_RecordsAreCopies(t *testing.T) {
	s := NewStore(newMapKV())
	in := append([]employee.Employee(nil), testRecords...)
	require.NoError(t, s.Login(in))

	in[0].Name = "Changed"
	got := s.Records()
	got[1].Name = "Changed too"
	assert.Equal(t, testRecords, s.Records())
}

func TestStore_UpdateRecord(t *testing.T) {
	kv := newMapKV()
	s := NewStore(kv)
	require.NoError(t, s.Login(testRecords))

	salary := employee.Amount("90000")
	emp, found, err := s.UpdateRecord(2, employee.UpdateEmployee{Salary: &salary})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 90000, emp.Salary)

	rec, ok := s.Record(2)
	require.True(t, ok)
	want := testRecords[1]
	want.Salary = 90000
	assert.Equal(t, want, rec)

	// unknown id: no-op
	writes, version := kv.writes, s.Version()
	_, found, err = s.UpdateRecord(99, employee.UpdateEmployee{Name: core.StringPtr("X")})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, writes, kv.writes)
	assert.Equal(t, version, s.Version())
}

func TestStore_DeleteRecord(t *testing.T) {
	s := NewStore(newMapKV())
	require.NoError(t, s.Login(testRecords))

	found, err := s.DeleteRecord(2)
	require.NoError(t, err)
	assert.True(t, found)

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, 3, records[1].ID)

	found, err = s.DeleteRecord(2)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, s.Records(), 2)
}

func TestStore_SetPhoto(t *testing.T) {
	s := NewStore(newMapKV())
	require.NoError(t, s.SetPhoto(3, "data:x"))
	assert.Equal(t, map[int]string{3: "data:x"}, s.Photos())

	require.NoError(t, s.SetPhoto(3, ""))
	_, ok := s.Photo(3)
	assert.False(t, ok)
	assert.Empty(t, s.Photos())
}

func TestStore_Attendance(t *testing.T) {
	s := NewStore(newMapKV())
	require.NoError(t, s.MarkAttendance("2024-05-01", 1, "Present"))
	require.NoError(t, s.MarkAttendance("2024-05-01", 2, "Leave"))
	require.NoError(t, s.MarkAttendance("2024-05-02", 1, "Absent"))

	assert.Equal(t, map[int]string{1: "Present", 2: "Leave"}, s.Attendance("2024-05-01"))
	assert.Empty(t, s.Attendance("2024-05-03"))

	require.NoError(t, s.MarkAttendance("2024-05-02", 1, ""))
	assert.Equal(t, map[string]map[int]string{"2024-05-01": {1: "Present", 2: "Leave"}}, s.AllAttendance())
}

func TestStore_Load(t *testing.T) {
	kv := newMapKV()
	s := NewStore(kv)
	require.NoError(t, s.Login(testRecords))
	require.NoError(t, s.SetPhoto(2, "data:y"))
	require.NoError(t, s.MarkAttendance("2024-05-01", 2, "Present"))

	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.Authenticated())
	assert.Equal(t, testRecords, reloaded.Records())
	assert.Equal(t, map[int]string{2: "data:y"}, reloaded.Photos())
	assert.Equal(t, map[int]string{2: "Present"}, reloaded.Attendance("2024-05-01"))

	// empty storage
	fresh := NewStore(newMapKV())
	require.NoError(t, fresh.Load())
	assert.False(t, fresh.Authenticated())
	assert.Empty(t, fresh.Records())

	// corrupt value is reported and skipped
	kv.data[KeyRecords] = "{not json"
	broken := NewStore(kv)
	assert.Error(t, broken.Load())
	assert.True(t, broken.Authenticated())
	assert.Empty(t, broken.Records())
}

func TestStore_WriteFailureRollsBack(t *testing.T) {
	kv := newMapKV()
	s := NewStore(kv)
	require.NoError(t, s.Login(testRecords))
	version := s.Version()

	kv.failSet = errors.New("quota exceeded")

	_, _, err := s.UpdateRecord(1, employee.UpdateEmployee{Name: core.StringPtr("Nope")})
	assert.Equal(t, kv.failSet, errors.Cause(err))
	rec, _ := s.Record(1)
	assert.Equal(t, "Asha", rec.Name)

	_, err = s.DeleteRecord(1)
	assert.Error(t, err)
	assert.Len(t, s.Records(), 3)

	assert.Error(t, s.Logout())
	assert.True(t, s.Authenticated())

	assert.Error(t, s.SetPhoto(1, "data:z"))
	assert.Empty(t, s.Photos())

	assert.Equal(t, version, s.Version())
}

func TestStore_LogoutDeleteFailure(t *testing.T) {
	kv := newMapKV()
	s := NewStore(kv)
	require.NoError(t, s.Login(testRecords))

	kv.failDelete = errors.New("locked")
	err := s.Logout()
	assert.Equal(t, kv.failDelete, errors.Cause(err))
	assert.True(t, s.Authenticated())
	assert.Equal(t, testRecords, s.Records())
	assert.Equal(t, "true", kv.data[KeyAuthenticated])

	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.Authenticated())
	assert.Len(t, reloaded.Records(), 3)
}

func TestStore_StaleLogin(t *testing.T) {
	s := NewStore(newMapKV())

	first := s.BeginLogin()
	second := s.BeginLogin()
	assert.Equal(t, ErrStaleLogin, s.CompleteLogin(first, testRecords))
	assert.False(t, s.Authenticated())

	require.NoError(t, s.CompleteLogin(second, testRecords[:1]))
	assert.Len(t, s.Records(), 1)

	third := s.BeginLogin()
	require.NoError(t, s.Logout())
	assert.Equal(t, ErrStaleLogin, s.CompleteLogin(third, testRecords))
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Records())
}

func TestStore_Version(t *testing.T) {
	s := NewStore(newMapKV())
	v0 := s.Version()
	require.NoError(t, s.Login(testRecords))
	require.NoError(t, s.SetPhoto(1, "data:a"))
	_, _, err := s.UpdateRecord(1, employee.UpdateEmployee{City: core.StringPtr("Pune")})
	require.NoError(t, err)
	assert.Equal(t, v0+3, s.Version())
}
