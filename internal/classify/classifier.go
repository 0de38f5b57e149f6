// Package classify decides the accounting context of a report: which
// company database it posts to, whether it is a fund report excluded
// from automated posting, and which liability account its policy maps
// to.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haxia/expense-integrator/internal/models"
)

const (
	// Reports filed by the holding's own tax id always post to the
	// HAXIA database regardless of the company extra field.
	overrideTaxID   = "77235100"
	overrideCompany = "HAXIA"

	// FXR marks a report drawn against a pre-existing cash fund.
	fundCode = "FXR"

	policyTagSuffix      = "(CCH)"
	policyAccountTagged  = "2-1-03-07-002"
	policyAccountDefault = "1-1-01-07-003"
)

// ErrMalformedTaxID signals an employee identification that cannot be
// split into base number and check digit.
var ErrMalformedTaxID = errors.New("malformed employee tax identification")

// Classification is the result of classifying one report
type Classification struct {
	Company            string
	Excluded           bool
	PolicyAccount      string
	EmployeeTaxID      string
	EmployeeCheckDigit string
}

// Classify resolves the company, fund exclusion and policy account for
// a report. A malformed employee identification is an input-data error:
// the caller logs it and leaves the report pending for the next run.
func Classify(report models.ExpenseReport) (Classification, error) {
	taxID, checkDigit, err := SplitTaxID(report.EmployeeIdentification)
	if err != nil {
		return Classification{}, fmt.Errorf("report %s: %w", report.ID, err)
	}

	company := overrideCompany
	if taxID != overrideTaxID {
		field, err := report.ExtraField(0)
		if err != nil {
			return Classification{}, fmt.Errorf("company field: %w", err)
		}
		company = field.Value
	}

	fundField, err := report.ExtraField(1)
	if err != nil {
		return Classification{}, fmt.Errorf("fund marker field: %w", err)
	}

	account := policyAccountDefault
	if strings.HasSuffix(report.PolicyName, policyTagSuffix) {
		account = policyAccountTagged
	}

	return Classification{
		Company:            company,
		Excluded:           fundField.Code == fundCode,
		PolicyAccount:      account,
		EmployeeTaxID:      taxID,
		EmployeeCheckDigit: checkDigit,
	}, nil
}

// SplitTaxID splits a "12.345.678-9" style identification into the
// dot-stripped base number and the check digit.
func SplitTaxID(identification string) (string, string, error) {
	parts := strings.SplitN(identification, "-", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q has no check digit", ErrMalformedTaxID, identification)
	}
	base := strings.ReplaceAll(parts[0], ".", "")
	if base == "" {
		return "", "", fmt.Errorf("%w: %q has an empty base number", ErrMalformedTaxID, identification)
	}
	return base, parts[1], nil
}

// HeaderGlosa builds the voucher description: the report's document
// type label, report number and employee name, upper-cased and capped
// at the backend's glosa width.
func HeaderGlosa(report models.ExpenseReport) (string, error) {
	field, err := report.ExtraField(1)
	if err != nil {
		return "", fmt.Errorf("glosa field: %w", err)
	}
	glosa := fmt.Sprintf("%s N° %s %s",
		strings.ToUpper(field.Value),
		report.ReportNumber,
		strings.ToUpper(report.EmployeeName))
	return models.Truncate(glosa, models.MaxHeaderGlosaLen), nil
}
