package session

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core/employee"
)

// storage keys
const (
	KeyRecords       = "staffdesk.records"
	KeyAuthenticated = "staffdesk.authenticated"
	KeyPhotos        = "staffdesk.photos"
	KeyAttendance    = "staffdesk.attendance"
)

var (
	ErrStaleLogin       = errors.New("a newer login or logout superseded this login")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// KVStore is the durable string key-value storage the session is persisted to.
type KVStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Attempt identifies a login started with Store.BeginLogin.
type Attempt uint64

// Store is the single owner of the session state: authentication flag, employee records,
// photos and attendance marks. Every mutator writes the affected keys before returning;
// readers get copies.
type Store struct {
	kv KVStore

	mu            sync.RWMutex
	authenticated bool
	records       []employee.Employee
	photos        map[int]string
	attendance    map[string]map[int]string // date -> employee id -> status
	attempt       Attempt
	version       uint64
}

func NewStore(kv KVStore) *Store {
	return &Store{
		kv:         kv,
		records:    make([]employee.Employee, 0),
		photos:     make(map[int]string),
		attendance: make(map[string]map[int]string),
	}
}

// Load hydrates the state from storage. Missing keys keep their empty default.
// Unreadable values are skipped as well, and reported in the returned error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failed []string
	load := func(key string, decode func(string) error) {
		val, ok, err := s.kv.Get(key)
		if err != nil {
			failed = append(failed, key+": "+err.Error())
			return
		}
		if !ok {
			return
		}
		if err := decode(val); err != nil {
			failed = append(failed, key+": "+err.Error())
		}
	}

	load(KeyAuthenticated, func(val string) error {
		auth, err := strconv.ParseBool(val)
		if err == nil {
			s.authenticated = auth
		}
		return err
	})
	load(KeyRecords, func(val string) error {
		var records []employee.Employee
		err := json.Unmarshal([]byte(val), &records)
		if err == nil && records != nil {
			s.records = records
		}
		return err
	})
	load(KeyPhotos, func(val string) error {
		var photos map[int]string
		err := json.Unmarshal([]byte(val), &photos)
		if err == nil && photos != nil {
			s.photos = photos
		}
		return err
	})
	load(KeyAttendance, func(val string) error {
		var att map[string]map[int]string
		err := json.Unmarshal([]byte(val), &att)
		if err == nil && att != nil {
			s.attendance = att
		}
		return err
	})

	if len(failed) > 0 {
		return errors.Errorf("session.Store.Load: %v", failed)
	}
	return nil
}

// Login replaces the records wholesale and marks the session authenticated.
func (s *Store) Login(records []employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(records)
}

// BeginLogin starts a login attempt. Only the latest attempt may complete.
func (s *Store) BeginLogin() Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt++
	return s.attempt
}

// CompleteLogin is Login for the given attempt; it fails with ErrStaleLogin
// when another login began, or a logout happened, since the attempt started.
func (s *Store) CompleteLogin(attempt Attempt, records []employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return ErrStaleLogin
	}
	return s.login(records)
}

func (s *Store) login(records []employee.Employee) error {
	prevRecords, prevAuth := s.records, s.authenticated
	s.records = copyRecords(records)
	s.authenticated = true
	if err := s.persist(KeyRecords, KeyAuthenticated); err != nil {
		s.records, s.authenticated = prevRecords, prevAuth
		s.restore(KeyRecords, KeyAuthenticated)
		return err
	}
	s.version++
	return nil
}

// Logout clears the authentication flag and removes the stored records. Photos and attendance are kept.
// Any login in flight becomes stale.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempt++
	prevRecords, prevAuth := s.records, s.authenticated
	s.records = make([]employee.Employee, 0)
	s.authenticated = false
	err := s.persist(KeyAuthenticated)
	if err == nil {
		// a missing records key loads as the empty default
		if err = s.kv.Delete(KeyRecords); err != nil {
			err = errors.Wrapf(err, "deleting %s", KeyRecords)
		}
	}
	if err != nil {
		s.records, s.authenticated = prevRecords, prevAuth
		s.restore(KeyRecords, KeyAuthenticated)
		return err
	}
	s.version++
	return nil
}

// UpdateRecord merges patch over the record with the given id.
// An unknown id is a no-op reported by found == false.
func (s *Store) UpdateRecord(id int, patch employee.UpdateEmployee) (employee.Employee, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return employee.Employee{}, false, nil
	}
	prev := s.records
	s.records = copyRecords(prev)
	s.records[idx] = patch.Apply(s.records[idx])
	s.records[idx].ID = id
	if err := s.persist(KeyRecords); err != nil {
		s.records = prev
		s.restore(KeyRecords)
		return employee.Employee{}, true, err
	}
	s.version++
	return s.records[idx], true, nil
}

// DeleteRecord removes the record with the given id. An unknown id is a no-op.
func (s *Store) DeleteRecord(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	prev := s.records
	s.records = make([]employee.Employee, 0, len(prev)-1)
	s.records = append(s.records, prev[:idx]...)
	s.records = append(s.records, prev[idx+1:]...)
	if err := s.persist(KeyRecords); err != nil {
		s.records = prev
		s.restore(KeyRecords)
		return true, err
	}
	s.version++
	return true, nil
}

// SetPhoto stores the image data URL of an employee; an empty data removes it.
func (s *Store) SetPhoto(id int, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.photos
	s.photos = copyPhotos(prev)
	if data == "" {
		delete(s.photos, id)
	} else {
		s.photos[id] = data
	}
	if err := s.persist(KeyPhotos); err != nil {
		s.photos = prev
		s.restore(KeyPhotos)
		return err
	}
	s.version++
	return nil
}

// MarkAttendance records the status of an employee on a date (YYYY-MM-DD); an empty status unmarks it.
func (s *Store) MarkAttendance(date string, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.attendance
	s.attendance = copyAttendance(prev)
	day := s.attendance[date]
	if day == nil {
		day = make(map[int]string)
		s.attendance[date] = day
	}
	if status == "" {
		delete(day, id)
		if len(day) == 0 {
			delete(s.attendance, date)
		}
	} else {
		day[id] = status
	}
	if err := s.persist(KeyAttendance); err != nil {
		s.attendance = prev
		s.restore(KeyAttendance)
		return err
	}
	s.version++
	return nil
}

func (s *Store) Records() []employee.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecords(s.records)
}

func (s *Store) Record(id int) (employee.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.records[idx], true
	}
	return employee.Employee{}, false
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) Photos() map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPhotos(s.photos)
}

func (s *Store) Photo(id int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.photos[id]
	return data, ok
}

// Attendance returns the marks of a date, keyed by employee id.
func (s *Store) Attendance(date string) map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := make(map[int]string, len(s.attendance[date]))
	for id, status := range s.attendance[date] {
		day[id] = status
	}
	return day
}

func (s *Store) AllAttendance() map[string]map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAttendance(s.attendance)
}

// Version increases with every committed mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) indexOf(id int) int {
	for i, emp := range s.records {
		if emp.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) encode(key string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch key {
	case KeyRecords:
		data, err = json.Marshal(s.records)
	case KeyAuthenticated:
		return strconv.FormatBool(s.authenticated), nil
	case KeyPhotos:
		data, err = json.Marshal(s.photos)
	case KeyAttendance:
		data, err = json.Marshal(s.attendance)
	default:
		return "", errors.Errorf("unknown session key %q", key)
	}
	return string(data), err
}

// persist writes the current value of every key, stopping at the first failure.
func (s *Store) persist(keys ...string) error {
	for _, key := range keys {
		val, err := s.encode(key)
		if err != nil {
			return errors.Wrapf(err, "encoding %s", key)
		}
		if err := s.kv.Set(key, val); err != nil {
			return errors.Wrapf(err, "writing %s", key)
		}
	}
	return nil
}

// restore rewrites the (rolled back) in-memory values after a failed persist.
// It is best effort: the storage already refused a write.
func (s *Store) restore(keys ...string) {
	for _, key := range keys {
		if val, err := s.encode(key); err == nil {
			_ = s.kv.Set(key, val)
		}
	}
}

func copyRecords(records []employee.Employee) []employee.Employee {
	out := make([]employee.Employee, len(records))
	copy(out, records)
	return out
}

func copyPhotos(photos map[int]string) map[int]string {
	out := make(map[int]string, len(photos))
	for id, data := range photos {
		out[id] = data
	}
	return out
}

func copyAttendance(att map[string]map[int]string) map[string]map[int]string {
	out := make(map[string]map[int]string, len(att))
	for date, day := range att {
		d := make(map[int]string, len(day))
		for id, status := range day {
			d[id] = status
		}
		out[date] = d
	}
	return out
}
