// Package integrator runs the per-report state machine: classify,
// build, post, acknowledge. Reports are processed strictly in provider
// order; one report's failure never affects another.
package integrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haxia/expense-integrator/internal/classify"
	"github.com/haxia/expense-integrator/internal/ledger"
	"github.com/haxia/expense-integrator/internal/models"
	"go.uber.org/zap"
)

// ReportProvider is the Report Provider surface the driver needs.
type ReportProvider interface {
	FetchPendingReports(ctx context.Context) ([]models.ExpenseReport, error)
	FetchExpenseLines(ctx context.Context, reportID string) ([]models.ExpenseLine, error)
	MarkIntegrated(ctx context.Context, reportID, accountingCode string) error
}

// LedgerPoster posts a report's movements transactionally and returns
// the voucher number assigned by the accounting backend.
type LedgerPoster interface {
	Post(ctx context.Context, company, headerGlosa string, postingDate time.Time, movements []models.LedgerMovement) (string, error)
}

// Outcome is the terminal state of one report within a run.
type Outcome int

const (
	OutcomePosted Outcome = iota
	OutcomeExcluded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePosted:
		return "posted"
	case OutcomeExcluded:
		return "excluded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ReportResult is the tagged per-report result consumed by the run loop.
type ReportResult struct {
	ReportID      string
	ReportNumber  string
	Outcome       Outcome
	VoucherNumber string
	Err           error
}

// Driver orchestrates one integration run
type Driver struct {
	provider ReportProvider
	poster   LedgerPoster
	logger   *zap.Logger
}

// NewDriver creates a new integration driver
func NewDriver(provider ReportProvider, poster LedgerPoster, logger *zap.Logger) *Driver {
	return &Driver{
		provider: provider,
		poster:   poster,
		logger:   logger,
	}
}

// Run processes every pending report once, sequentially. Only the
// initial fetch is fatal; per-report failures are recorded in the
// results and the report stays pending remotely for the next run.
func (d *Driver) Run(ctx context.Context) ([]ReportResult, error) {
	reports, err := d.provider.FetchPendingReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending reports: %w", err)
	}

	if len(reports) == 0 {
		d.logger.Info("No reports pending integration")
		return nil, nil
	}

	results := make([]ReportResult, 0, len(reports))
	for _, report := range reports {
		result := d.processReport(ctx, report)
		switch result.Outcome {
		case OutcomePosted:
			d.logger.Info("Report integrated",
				zap.String("report_id", result.ReportID),
				zap.String("report_number", result.ReportNumber),
				zap.String("voucher_number", result.VoucherNumber))
		case OutcomeExcluded:
			d.logger.Info("Fund report excluded from posting",
				zap.String("report_id", result.ReportID),
				zap.String("report_number", result.ReportNumber))
		case OutcomeFailed:
			if errors.Is(result.Err, classify.ErrMalformedTaxID) {
				d.logger.Warn("Report skipped, left pending",
					zap.String("report_id", result.ReportID),
					zap.String("report_number", result.ReportNumber),
					zap.Error(result.Err))
				break
			}
			d.logger.Error("Report left pending",
				zap.String("report_id", result.ReportID),
				zap.String("report_number", result.ReportNumber),
				zap.Error(result.Err))
		}
		results = append(results, result)
	}
	return results, nil
}

func (d *Driver) processReport(ctx context.Context, report models.ExpenseReport) ReportResult {
	result := ReportResult{ReportID: report.ID, ReportNumber: report.ReportNumber}

	classification, err := classify.Classify(report)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	if classification.Excluded {
		// Marking the fund report integrated (with no accounting code)
		// keeps it out of the next run; it is booked manually.
		if err := d.provider.MarkIntegrated(ctx, report.ID, ""); err != nil {
			d.logger.Error("Failed to mark excluded report integrated",
				zap.String("report_id", report.ID), zap.Error(err))
		}
		result.Outcome = OutcomeExcluded
		return result
	}

	headerGlosa, err := classify.HeaderGlosa(report)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	lines, err := d.provider.FetchExpenseLines(ctx, report.ID)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	movements, err := ledger.BuildMovements(lines, ledger.BuildInput{
		PostingDate:        report.SendDate,
		ApprovedTotal:      report.ApprovedTotal,
		HeaderGlosa:        headerGlosa,
		EmployeeTaxID:      classification.EmployeeTaxID,
		EmployeeCheckDigit: classification.EmployeeCheckDigit,
		EmployeeName:       report.EmployeeName,
		PolicyAccount:      classification.PolicyAccount,
	})
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	voucherNumber, err := d.poster.Post(ctx, classification.Company, headerGlosa, report.SendDate, movements)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	// The posting is committed; a callback failure only costs a
	// duplicate-processing risk on the next run.
	if err := d.provider.MarkIntegrated(ctx, report.ID, voucherNumber); err != nil {
		d.logger.Error("Failed to mark report integrated, posting stands",
			zap.String("report_id", report.ID),
			zap.String("voucher_number", voucherNumber),
			zap.Error(err))
	}

	result.Outcome = OutcomePosted
	result.VoucherNumber = voucherNumber
	return result
}
