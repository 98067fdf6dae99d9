package employee

import (
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core"
)

type (
	// Repository is the owner of the session records (see session.Store).
	// Mutations on unknown ids are no-ops reported through the found flag.
	Repository interface {
		Records() []Employee
		Record(id int) (Employee, bool)
		UpdateRecord(id int, patch UpdateEmployee) (emp Employee, found bool, err error)
		DeleteRecord(id int) (found bool, err error)
	}

	Service struct {
		repo     Repository
		pageSize int
	}
)

func NewService(repo Repository, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Service{repo: repo, pageSize: pageSize}
}

func (svc *Service) PageSize() int { return svc.pageSize }

// Query filters, sorts and paginates the session records.
func (svc *Service) Query(filter QueryFilter, orderings []core.Ordering, page, pageSize int) (Page, error) {
	if err := ValidateOrderings(orderings); err != nil {
		return Page{}, err
	}
	if pageSize < 1 {
		pageSize = svc.pageSize
	}
	filter.Clean()
	records := Sort(Filter(svc.repo.Records(), filter), orderings)
	return Paginate(records, page, pageSize), nil
}

func (svc *Service) GetByID(id int) (Employee, error) {
	emp, ok := svc.repo.Record(id)
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (svc *Service) Update(id int, uu UpdateEmployee) (Employee, error) {
	emp, found, err := svc.repo.UpdateRecord(id, uu)
	if err != nil {
		return Employee{}, errors.Wrap(err, "employee.Service.Update")
	}
	if !found {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (svc *Service) Delete(id int) error {
	found, err := svc.repo.DeleteRecord(id)
	if err != nil {
		return errors.Wrap(err, "employee.Service.Delete")
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) Stats() Stats {
	return ComputeStats(svc.repo.Records())
}

func (svc *Service) Groups(by string) ([]Group, error) {
	return GroupBy(svc.repo.Records(), by)
}

func (svc *Service) TopEarners(n int) []Employee {
	return TopEarners(svc.repo.Records(), n)
}

func (svc *Service) SalaryRanges() []Count {
	return SalaryRanges(svc.repo.Records())
}

func (svc *Service) Breakdown(by string) ([]BreakdownRow, error) {
	return Breakdown(svc.repo.Records(), by)
}

func (svc *Service) CityCounts(limit int) []Count {
	return CityCounts(svc.repo.Records(), limit)
}

func (svc *Service) Markers() []Marker {
	return Markers(svc.repo.Records())
}
