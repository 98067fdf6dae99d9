package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
)

func (cli *commandLine) list(filter employee.QueryFilter, ordering string, page, size int) error {
	if !cli.sessSvc.Store().Authenticated() {
		return session.ErrNotAuthenticated
	}
	p, err := cli.empSvc.Query(filter, core.ParseOrderings(ordering), page, size)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDESIGNATION\tCITY\tSALARY")
	for _, emp := range p.Items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", emp.ID, emp.Name, emp.Designation, emp.City, report.Money(emp.Salary))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "page %d/%d (%d employees)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func (cli *commandLine) stats() error {
	if !cli.sessSvc.Store().Authenticated() {
		return session.ErrNotAuthenticated
	}
	s := cli.empSvc.Stats()

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Employees\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Total salary\t%s\n", report.Money(s.TotalSalary))
	_, _ = fmt.Fprintf(w, "Average salary\t%s\n", report.Money(s.AvgSalary))
	_, _ = fmt.Fprintf(w, "Salary range\t%s - %s\n", report.Money(s.MinSalary), report.Money(s.MaxSalary))
	_, _ = fmt.Fprintf(w, "Cities\t%d\n", s.Cities)
	_, _ = fmt.Fprintf(w, "Designations\t%d\n", s.Designations)
	return w.Flush()
}
