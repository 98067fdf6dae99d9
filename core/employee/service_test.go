package employee

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/staffdesk/core"
)

// memRepo is a minimal Repository over a slice.
type memRepo struct {
	records  []Employee
	writeErr error
}

func (r *memRepo) Records() []Employee {
	out := make([]Employee, len(r.records))
	copy(out, r.records)
	return out
}

func (r *memRepo) Record(id int) (Employee, bool) {
	for _, emp := range r.records {
		if emp.ID == id {
			return emp, true
		}
	}
	return Employee{}, false
}

func (r *memRepo) UpdateRecord(id int, patch UpdateEmployee) (Employee, bool, error) {
	if r.writeErr != nil {
		return Employee{}, false, r.writeErr
	}
	for i, emp := range r.records {
		if emp.ID == id {
			r.records[i] = patch.Apply(emp)
			return r.records[i], true, nil
		}
	}
	return Employee{}, false, nil
}

func (r *memRepo) DeleteRecord(id int) (bool, error) {
	for i, emp := range r.records {
		if emp.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newTestService() (*Service, *memRepo) {
	repo := &memRepo{records: append([]Employee(nil), staff...)}
	return NewService(repo, 2), repo
}

func TestService_Query(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Query(QueryFilter{Search: " design "}, core.ParseOrderings("-id"), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, p.PageSize)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, []int{5, 2}, ids(p.Items))

	_, err = svc.Query(QueryFilter{}, core.ParseOrderings("secret"), 1, 10)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestService_GetUpdateDelete(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.GetByID(99)
	assert.Equal(t, ErrNotFound, err)

	salary := Amount("$90,000")
	emp, err := svc.Update(2, UpdateEmployee{City: core.StringPtr("Pune"), Salary: &salary})
	require.NoError(t, err)
	assert.Equal(t, "Pune", emp.City)
	assert.Equal(t, 90000, emp.Salary)
	assert.Equal(t, "bruno", emp.Name)

	_, err = svc.Update(99, UpdateEmployee{Name: core.StringPtr("x")})
	assert.Equal(t, ErrNotFound, err)

	repo.writeErr = errors.New("disk full")
	_, err = svc.Update(2, UpdateEmployee{Name: core.StringPtr("x")})
	assert.Equal(t, repo.writeErr, errors.Cause(err))
	repo.writeErr = nil

	require.NoError(t, svc.Delete(2))
	assert.Equal(t, ErrNotFound, svc.Delete(2))
	assert.Len(t, repo.Records(), len(staff)-1)
}

func TestUpdateEmployee_Validate(t *testing.T) {
	validate := core.NewValidate(core.NewTranslator())

	bad := Amount("-5")
	tests := []struct {
		name    string
		uu      UpdateEmployee
		wantErr bool
	}{
		{name: "empty patch", uu: UpdateEmployee{}},
		{name: "valid", uu: UpdateEmployee{Name: core.StringPtr(" Zed "), JoinDate: core.StringPtr("2020-01-31")}},
		{name: "blank name", uu: UpdateEmployee{Name: core.StringPtr("   ")}, wantErr: true},
		{name: "bad salary", uu: UpdateEmployee{Salary: &bad}, wantErr: true},
		{name: "bad date", uu: UpdateEmployee{JoinDate: core.StringPtr("31/01/2020")}, wantErr: true},
		{name: "bad email", uu: UpdateEmployee{Email: core.StringPtr("nope")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.uu.Validate(validate)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestUpdateEmployee_Apply(t *testing.T) {
	emp := staff[0]
	got := UpdateEmployee{Designation: core.StringPtr("Lead")}.Apply(emp)
	assert.Equal(t, "Lead", got.Designation)
	assert.Equal(t, emp.Name, got.Name)
	assert.Equal(t, emp.Salary, got.Salary)
	assert.Equal(t, "Engineer", staff[0].Designation)
}
