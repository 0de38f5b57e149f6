package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field widths enforced by the movements table type in the accounting
// backend. Values are truncated, never rejected.
const (
	MaxVoucherNumberLen    = 8
	MaxAccountLen          = 18
	MaxCostCenterLen       = 8
	MaxCounterpartyTaxLen  = 10
	MaxCheckDigitLen       = 1
	MaxCounterpartyNameLen = 60
	MaxLineDescriptionLen  = 255
	MaxHeaderGlosaLen      = 60
)

// Truncate caps s at max runes. Truncation is silent: the backend's
// fixed-width columns take whatever fits, per the integration contract.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// LedgerMovement is one debit or credit row posted against a voucher.
// For a report with N expense lines exactly N+1 movements are built:
// sequences 0..N-1 are debit lines in expense-line order, sequence N is
// the aggregate reimbursement credit.
type LedgerMovement struct {
	FiscalYear             string
	VoucherNumber          string // stamped by the ledger writer once the backend assigns it
	Sequence               int
	Account                string
	PostingDate            time.Time
	PostingMonth           string // two-digit month of the posting date
	CostCenter             string
	CounterpartyTaxID      string
	CounterpartyCheckDigit string
	CounterpartyName       string
	IsVendor               string // "S" / "N"
	DocumentType           string
	DocumentNumber         int
	IssueDate              time.Time
	DueDate                time.Time // last business day of the issue month
	RefDocumentType        string
	RefDocumentNumber      int
	Debit                  decimal.Decimal
	Credit                 decimal.Decimal
	Description            string
}
