package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExtraField is one typed code/value pair attached to a report or an
// expense line by the provider. Position is significant: the provider
// returns the fields in a fixed order per form template.
type ExtraField struct {
	Code  string
	Value string
}

// ExpenseReport is a pending expense report as returned by the Report
// Provider, already validated at the client boundary. Read-only within
// a run; its integration status lives remotely.
type ExpenseReport struct {
	ID                     string
	ReportNumber           string
	EmployeeIdentification string // raw "base-dv" form, split by the classifier
	EmployeeName           string
	PolicyName             string
	ApprovedTotal          decimal.Decimal
	SendDate               time.Time
	ExtraFields            []ExtraField
}

// ExpenseLine is one itemized expense within a report.
type ExpenseLine struct {
	Supplier     string
	CategoryCode string
	IssueDate    time.Time
	Total        decimal.Decimal
	Note         string
	ExtraFields  []ExtraField
}

// ExtraField returns the extra field at position i, or an error when
// the payload carries fewer fields than the form template requires.
func (r *ExpenseReport) ExtraField(i int) (ExtraField, error) {
	return fieldAt(r.ExtraFields, i, "report "+r.ID)
}

// ExtraField returns the extra field at position i for the line.
func (l *ExpenseLine) ExtraField(i int) (ExtraField, error) {
	return fieldAt(l.ExtraFields, i, "expense line")
}

func fieldAt(fields []ExtraField, i int, owner string) (ExtraField, error) {
	if i < 0 || i >= len(fields) {
		return ExtraField{}, fmt.Errorf("%s: missing extra field %d (have %d)", owner, i, len(fields))
	}
	return fields[i], nil
}
