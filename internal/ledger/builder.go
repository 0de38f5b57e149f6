// Package ledger builds balanced ledger movement rows for an expense
// report and posts them to the accounting backend inside a single
// transaction per report.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/haxia/expense-integrator/internal/classify"
	"github.com/haxia/expense-integrator/internal/models"
	"github.com/shopspring/decimal"
)

const (
	// FL marks an expense line backed by a supplier invoice.
	invoiceCode    = "FL"
	invoiceAccount = "2-1-03-01-001"

	zeroCostCenter = "00000000"
	zeroTaxID      = "0000000000"
	zeroCheckDigit = "0"

	vendorYes = "S"
	vendorNo  = "N"

	cashDocumentType = "EF"
	noDocumentType   = "00"

	// Ride-hailing receipts carry no usable document number; the issue
	// date stands in for it.
	rideHailingVendor = "Uber SPA"
)

// BuildInput carries the report-level values every movement row shares.
type BuildInput struct {
	PostingDate        time.Time
	ApprovedTotal      decimal.Decimal
	HeaderGlosa        string
	EmployeeTaxID      string
	EmployeeCheckDigit string
	EmployeeName       string
	PolicyAccount      string
}

// BuildMovements produces the ordered movement rows for a report: one
// debit row per expense line in provider order, then one aggregate
// reimbursement credit row. Voucher numbers are stamped later by the
// Writer, once the backend assigns one.
func BuildMovements(lines []models.ExpenseLine, in BuildInput) ([]models.LedgerMovement, error) {
	movements := make([]models.LedgerMovement, 0, len(lines)+1)

	for i, line := range lines {
		movement, err := buildLineMovement(i, line, in)
		if err != nil {
			return nil, fmt.Errorf("expense line %d: %w", i, err)
		}
		movements = append(movements, movement)
	}

	movements = append(movements, buildCreditMovement(len(lines), in))
	return movements, nil
}

func buildLineMovement(seq int, line models.ExpenseLine, in BuildInput) (models.LedgerMovement, error) {
	typeField, err := line.ExtraField(0)
	if err != nil {
		return models.LedgerMovement{}, err
	}
	docField, err := line.ExtraField(1)
	if err != nil {
		return models.LedgerMovement{}, err
	}

	refNumber := digitsOf(docField.Value)
	if line.Supplier == rideHailingVendor {
		refNumber = line.IssueDate.Format("20060102")
	}
	description := fmt.Sprintf("%s %s %s", line.Note, firstToken(typeField.Value), refNumber)

	movement := models.LedgerMovement{
		FiscalYear:   strconv.Itoa(in.PostingDate.Year()),
		Sequence:     seq,
		PostingDate:  in.PostingDate,
		PostingMonth: in.PostingDate.Format("01"),
		IssueDate:    line.IssueDate,
		DueDate:      LastBusinessDay(line.IssueDate),
		Debit:        line.Total,
		Credit:       decimal.Zero,
		Description:  models.Truncate(description, models.MaxLineDescriptionLen),
	}

	if typeField.Code == invoiceCode {
		counterpartyField, err := line.ExtraField(2)
		if err != nil {
			return models.LedgerMovement{}, err
		}
		taxID, checkDigit, err := classify.SplitTaxID(counterpartyField.Value)
		if err != nil {
			return models.LedgerMovement{}, fmt.Errorf("supplier identification: %w", err)
		}
		refDocNumber, err := strconv.Atoi(strings.TrimSpace(docField.Value))
		if err != nil {
			return models.LedgerMovement{}, fmt.Errorf("invoice number %q is not numeric: %w", docField.Value, err)
		}

		movement.Account = models.Truncate(invoiceAccount, models.MaxAccountLen)
		movement.CostCenter = zeroCostCenter
		movement.CounterpartyTaxID = models.Truncate(taxID, models.MaxCounterpartyTaxLen)
		movement.CounterpartyCheckDigit = models.Truncate(checkDigit, models.MaxCheckDigitLen)
		movement.CounterpartyName = models.Truncate(line.Supplier, models.MaxCounterpartyNameLen)
		movement.IsVendor = vendorYes
		movement.DocumentType = cashDocumentType
		movement.DocumentNumber = 1
		movement.RefDocumentType = invoiceCode
		movement.RefDocumentNumber = refDocNumber
		return movement, nil
	}

	// Non-invoice lines post against the expense category itself and
	// need no counterparty.
	costCenterField, err := line.ExtraField(3)
	if err != nil {
		return models.LedgerMovement{}, err
	}

	movement.Account = models.Truncate(line.CategoryCode, models.MaxAccountLen)
	movement.CostCenter = models.Truncate(costCenterField.Code, models.MaxCostCenterLen)
	movement.CounterpartyTaxID = zeroTaxID
	movement.CounterpartyCheckDigit = zeroCheckDigit
	movement.CounterpartyName = ""
	movement.IsVendor = vendorNo
	movement.DocumentType = noDocumentType
	movement.DocumentNumber = 0
	movement.RefDocumentType = noDocumentType
	movement.RefDocumentNumber = 0
	return movement, nil
}

// buildCreditMovement builds the trailing reimbursement row. Its
// counterparty is always the employee being reimbursed, and its due
// date follows the posting month, not any expense line's.
func buildCreditMovement(seq int, in BuildInput) models.LedgerMovement {
	return models.LedgerMovement{
		FiscalYear:             strconv.Itoa(in.PostingDate.Year()),
		Sequence:               seq,
		Account:                models.Truncate(in.PolicyAccount, models.MaxAccountLen),
		PostingDate:            in.PostingDate,
		PostingMonth:           in.PostingDate.Format("01"),
		CostCenter:             zeroCostCenter,
		CounterpartyTaxID:      models.Truncate(in.EmployeeTaxID, models.MaxCounterpartyTaxLen),
		CounterpartyCheckDigit: models.Truncate(in.EmployeeCheckDigit, models.MaxCheckDigitLen),
		CounterpartyName:       models.Truncate(in.EmployeeName, models.MaxCounterpartyNameLen),
		IsVendor:               vendorNo,
		DocumentType:           noDocumentType,
		DocumentNumber:         0,
		IssueDate:              in.PostingDate,
		DueDate:                LastBusinessDay(in.PostingDate),
		RefDocumentType:        noDocumentType,
		RefDocumentNumber:      0,
		Debit:                  decimal.Zero,
		Credit:                 in.ApprovedTotal,
		Description:            in.HeaderGlosa,
	}
}

// digitsOf concatenates every digit run found in s.
func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstToken(s string) string {
	return strings.SplitN(s, " ", 2)[0]
}
