package report

import (
	"math"
	"strings"
	"time"

	"github.com/trezcool/staffdesk/core/employee"
)

// Slip is the monthly salary breakdown of an employee.
type Slip struct {
	AppName       string            `json:"-"`
	Employee      employee.Employee `json:"employee"`
	Period        string            `json:"period"`
	GeneratedAt   time.Time         `json:"generatedAt"`
	Basic         int               `json:"basic"`
	HRA           int               `json:"hra"`
	Allowances    int               `json:"allowances"`
	Bonus         int               `json:"bonus"`
	Gross         int               `json:"gross"`
	ProvidentFund int               `json:"providentFund"`
	Tax           int               `json:"tax"`
	Deductions    int               `json:"deductions"`
	Net           int               `json:"net"`
	NetInWords    string            `json:"netInWords"`
}

// NewSlip splits the salary into basic (50%), HRA (20%), allowances (15%) and bonus (15%),
// then deducts provident fund (12%) and tax (10%) from the gross.
func NewSlip(emp employee.Employee, now time.Time) Slip {
	pct := func(n int, p float64) int { return int(math.Round(float64(n) * p)) }

	s := Slip{
		Employee:    emp,
		Period:      now.Format("January 2006"),
		GeneratedAt: now,
		Basic:       pct(emp.Salary, 0.5),
		HRA:         pct(emp.Salary, 0.2),
		Allowances:  pct(emp.Salary, 0.15),
		Bonus:       pct(emp.Salary, 0.15),
	}
	s.Gross = s.Basic + s.HRA + s.Allowances + s.Bonus
	s.ProvidentFund = pct(s.Gross, 0.12)
	s.Tax = pct(s.Gross, 0.1)
	s.Deductions = s.ProvidentFund + s.Tax
	s.Net = s.Gross - s.Deductions
	s.NetInWords = NumberToWords(s.Net) + " Dollars Only"
	return s
}

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	scale = []struct {
		n    int
		name string
	}{
		{1000000000, "Billion"},
		{1000000, "Million"},
		{1000, "Thousand"},
		{100, "Hundred"},
	}
)

// NumberToWords spells out a whole amount in english, eg. 1250 => "One Thousand Two Hundred Fifty".
func NumberToWords(n int) string {
	if n == 0 {
		return "Zero"
	}
	if n < 0 {
		return "Minus " + NumberToWords(-n)
	}
	return strings.Join(words(n), " ")
}

func words(n int) []string {
	switch {
	case n == 0:
		return nil
	case n < 10:
		return []string{ones[n]}
	case n < 20:
		return []string{teens[n-10]}
	case n < 100:
		w := []string{tens[n/10]}
		return append(w, words(n%10)...)
	}
	for _, s := range scale {
		if n >= s.n {
			w := append(words(n/s.n), s.name)
			return append(w, words(n%s.n)...)
		}
	}
	return nil
}
