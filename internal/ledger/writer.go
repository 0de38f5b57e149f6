package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/haxia/expense-integrator/internal/models"
	"github.com/haxia/expense-integrator/pkg/database"
	"go.uber.org/zap"
)

// ErrNoVoucherNumber signals that the voucher procedure completed
// without returning a voucher number row.
var ErrNoVoucherNumber = errors.New("voucher procedure returned no voucher number")

// WriterConfig holds the accounting backend object names
type WriterConfig struct {
	MovementsTable     string
	VoucherProcedure   string
	MovementsProcedure string
}

// Writer posts a report's movements to the accounting backend: one
// voucher-create call, one bulk movements insert, both inside a single
// transaction that commits or rolls back as a unit.
type Writer struct {
	db            *database.DB
	movementsTVP  string
	voucherProc   string
	movementsProc string
	logger        *zap.Logger
}

// NewWriter creates a new ledger writer
func NewWriter(db *database.DB, cfg WriterConfig, logger *zap.Logger) *Writer {
	return &Writer{
		db:            db,
		movementsTVP:  cfg.MovementsTable,
		voucherProc:   cfg.VoucherProcedure,
		movementsProc: cfg.MovementsProcedure,
		logger:        logger,
	}
}

// Post creates the voucher, stamps its number into every movement and
// bulk-inserts them, all against the given company database. On any
// failure the whole transaction is rolled back: no partial voucher or
// movement set is ever left committed.
func (w *Writer) Post(ctx context.Context, company, headerGlosa string, postingDate time.Time, movements []models.LedgerMovement) (string, error) {
	var voucherNumber string

	err := w.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := w.useCompany(ctx, tx, company); err != nil {
			return err
		}

		number, err := w.createVoucher(ctx, tx, headerGlosa, postingDate)
		if err != nil {
			return err
		}
		voucherNumber = number

		stampVoucher(movements, number)
		return w.insertMovements(ctx, tx, movements)
	})
	if err != nil {
		return "", err
	}

	w.logger.Info("Voucher posted",
		zap.String("company", company),
		zap.String("voucher_number", voucherNumber),
		zap.Int("movements", len(movements)))
	return voucherNumber, nil
}

// useCompany scopes the transaction to the company database. Kept as
// its own statement so the backend-specific scoping syntax stays out of
// the procedure calls.
func (w *Writer) useCompany(ctx context.Context, tx *sql.Tx, company string) error {
	if _, err := tx.ExecContext(ctx, "USE "+quoteIdentifier(company)); err != nil {
		return fmt.Errorf("failed to select company database %s: %w", company, err)
	}
	return nil
}

func (w *Writer) createVoucher(ctx context.Context, tx *sql.Tx, glosa string, date time.Time) (string, error) {
	row := tx.QueryRowContext(ctx,
		fmt.Sprintf("EXEC %s @glosa, @fecha", w.voucherProc),
		sql.Named("glosa", glosa),
		sql.Named("fecha", date))

	var number string
	if err := row.Scan(&number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoVoucherNumber
		}
		return "", fmt.Errorf("voucher procedure failed: %w", err)
	}
	return number, nil
}

func (w *Writer) insertMovements(ctx context.Context, tx *sql.Tx, movements []models.LedgerMovement) error {
	tvp := mssql.TVP{
		TypeName: w.movementsTVP,
		Value:    toTableRows(movements),
	}

	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf("EXEC %s @movs", w.movementsProc),
		sql.Named("movs", tvp))
	if err != nil {
		return fmt.Errorf("movements procedure failed: %w", err)
	}
	defer rows.Close()

	// The procedure echoes one status row per movement. They are
	// informational: real failures surface as SQL errors.
	for rows.Next() {
		var status sql.NullString
		if err := rows.Scan(&status); err != nil {
			return fmt.Errorf("failed to read movements procedure status: %w", err)
		}
		w.logger.Info("Movements procedure status", zap.String("status", status.String))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("movements procedure result failed: %w", err)
	}
	return nil
}

func stampVoucher(movements []models.LedgerMovement, number string) {
	stamped := models.Truncate(number, models.MaxVoucherNumberLen)
	for i := range movements {
		movements[i].VoucherNumber = stamped
	}
}

// movementRow mirrors the backend's movements table type. Amounts go
// over the wire as floats, matching the procedure's column types.
type movementRow struct {
	FiscalYear             string
	VoucherNumber          string
	Sequence               int64
	Account                string
	PostingDate            time.Time
	PostingMonth           string
	CostCenter             string
	CounterpartyTaxID      string
	CounterpartyCheckDigit string
	CounterpartyName       string
	IsVendor               string
	DocumentType           string
	DocumentNumber         int64
	IssueDate              time.Time
	DueDate                time.Time
	RefDocumentType        string
	RefDocumentNumber      int64
	Debit                  float64
	Credit                 float64
	Description            string
}

func toTableRows(movements []models.LedgerMovement) []movementRow {
	rows := make([]movementRow, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, movementRow{
			FiscalYear:             m.FiscalYear,
			VoucherNumber:          m.VoucherNumber,
			Sequence:               int64(m.Sequence),
			Account:                m.Account,
			PostingDate:            m.PostingDate,
			PostingMonth:           m.PostingMonth,
			CostCenter:             m.CostCenter,
			CounterpartyTaxID:      m.CounterpartyTaxID,
			CounterpartyCheckDigit: m.CounterpartyCheckDigit,
			CounterpartyName:       m.CounterpartyName,
			IsVendor:               m.IsVendor,
			DocumentType:           m.DocumentType,
			DocumentNumber:         int64(m.DocumentNumber),
			IssueDate:              m.IssueDate,
			DueDate:                m.DueDate,
			RefDocumentType:        m.RefDocumentType,
			RefDocumentNumber:      int64(m.RefDocumentNumber),
			Debit:                  m.Debit.InexactFloat64(),
			Credit:                 m.Credit.InexactFloat64(),
			Description:            m.Description,
		})
	}
	return rows
}

func quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
