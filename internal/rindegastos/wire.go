package rindegastos

import (
	"fmt"
	"time"

	"github.com/haxia/expense-integrator/internal/models"
	"github.com/shopspring/decimal"
)

// Wire structs mirror the provider's JSON payloads. Conversion to the
// internal records happens here so a missing or malformed field is a
// typed error at the boundary, not an index panic deeper in.

const dateLayout = "2006-01-02"

type wireField struct {
	Code  string `json:"Code"`
	Value string `json:"Value"`
}

type wireReport struct {
	ID                     int64           `json:"Id"`
	ReportNumber           int64           `json:"ReportNumber"`
	EmployeeIdentification string          `json:"EmployeeIdentification"`
	EmployeeName           string          `json:"EmployeeName"`
	PolicyName             string          `json:"PolicyName"`
	ReportTotalApproved    decimal.Decimal `json:"ReportTotalApproved"`
	SendDate               string          `json:"SendDate"`
	ExtraFields            []wireField     `json:"ExtraFields"`
}

type wireExpense struct {
	Supplier     string          `json:"Supplier"`
	CategoryCode string          `json:"CategoryCode"`
	IssueDate    string          `json:"IssueDate"`
	Total        decimal.Decimal `json:"Total"`
	Note         string          `json:"Note"`
	ExtraFields  []wireField     `json:"ExtraFields"`
}

func (w wireReport) toModel() (models.ExpenseReport, error) {
	sendDate, err := time.Parse(dateLayout, w.SendDate)
	if err != nil {
		return models.ExpenseReport{}, fmt.Errorf("report %d: bad send date %q: %w", w.ID, w.SendDate, err)
	}
	return models.ExpenseReport{
		ID:                     fmt.Sprintf("%d", w.ID),
		ReportNumber:           fmt.Sprintf("%d", w.ReportNumber),
		EmployeeIdentification: w.EmployeeIdentification,
		EmployeeName:           w.EmployeeName,
		PolicyName:             w.PolicyName,
		ApprovedTotal:          w.ReportTotalApproved,
		SendDate:               sendDate,
		ExtraFields:            toModelFields(w.ExtraFields),
	}, nil
}

func (w wireExpense) toModel() (models.ExpenseLine, error) {
	issueDate, err := time.Parse(dateLayout, w.IssueDate)
	if err != nil {
		return models.ExpenseLine{}, fmt.Errorf("expense %q: bad issue date %q: %w", w.Supplier, w.IssueDate, err)
	}
	return models.ExpenseLine{
		Supplier:     w.Supplier,
		CategoryCode: w.CategoryCode,
		IssueDate:    issueDate,
		Total:        w.Total,
		Note:         w.Note,
		ExtraFields:  toModelFields(w.ExtraFields),
	}, nil
}

func toModelFields(fields []wireField) []models.ExtraField {
	out := make([]models.ExtraField, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.ExtraField{Code: f.Code, Value: f.Value})
	}
	return out
}
