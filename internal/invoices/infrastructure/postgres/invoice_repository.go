package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	invoices "payroll-cloud/internal/invoices/domain"
)

const (
	defaultInvoicesTable  = "invoices"
	defaultSequencesTable = "invoice_sequences"
)

// InvoiceRepository is a Postgres implementation for invoices. Line
// items are stored as a JSONB column.
type InvoiceRepository struct {
	db             *sql.DB
	table          string
	sequencesTable string
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB, opts ...InvoiceOption) *InvoiceRepository {
	repo := &InvoiceRepository{
		db:             db,
		table:          defaultInvoicesTable,
		sequencesTable: defaultSequencesTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InvoiceOption configures the repository.
type InvoiceOption func(*InvoiceRepository)

// WithInvoicesTable overrides the default table name.
func WithInvoicesTable(table string) InvoiceOption {
	return func(repo *InvoiceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const invoiceColumns = `id, invoice_number, employee_id, employee_name, month, issue_date, due_date, items, total, status, notes, created_at, updated_at`

// List returns invoices matching the filter, newest first.
func (r *InvoiceRepository) List(ctx context.Context, filter invoices.Filter) ([]invoices.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, invoiceColumns, r.table)
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += ` AND employee_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []invoices.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *invoice)
	}
	return list, rows.Err()
}

// Get loads one invoice by id.
func (r *InvoiceRepository) Get(ctx context.Context, id string) (*invoices.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if id == "" {
		return nil, errors.New("invoice repo: empty id")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, invoiceColumns, r.table)
	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return invoice, nil
}

// Save upserts an invoice.
func (r *InvoiceRepository) Save(ctx context.Context, invoice *invoices.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if invoice == nil {
		return errors.New("invoice repo: nil invoice")
	}
	if err := invoice.Validate(); err != nil {
		return err
	}
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, invoice_number, employee_id, employee_name, month, issue_date, due_date, items, total, status, notes
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
ON CONFLICT (id)
DO UPDATE SET
	month = EXCLUDED.month,
	issue_date = EXCLUDED.issue_date,
	due_date = EXCLUDED.due_date,
	items = EXCLUDED.items,
	total = EXCLUDED.total,
	status = EXCLUDED.status,
	notes = EXCLUDED.notes,
	updated_at = NOW()`, r.table)

	_, err = r.db.ExecContext(
		ctx,
		query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.EmployeeID,
		invoice.EmployeeName,
		invoice.Month,
		invoice.IssueDate,
		invoice.DueDate,
		items,
		invoice.Total.String(),
		invoice.Status,
		invoice.Notes,
	)
	return err
}

// NextSequence atomically allocates the next per-year counter.
func (r *InvoiceRepository) NextSequence(ctx context.Context, year int) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("invoice repo: nil db")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (year, counter) VALUES ($1, 1)
ON CONFLICT (year)
DO UPDATE SET counter = %s.counter + 1
RETURNING counter`, r.sequencesTable, r.sequencesTable)

	var counter int
	if err := r.db.QueryRowContext(ctx, query, year).Scan(&counter); err != nil {
		return 0, err
	}
	return counter, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*invoices.Invoice, error) {
	var (
		invoice invoices.Invoice
		items   []byte
		total   string
	)
	if err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.EmployeeID,
		&invoice.EmployeeName,
		&invoice.Month,
		&invoice.IssueDate,
		&invoice.DueDate,
		&items,
		&total,
		&invoice.Status,
		&invoice.Notes,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &invoice.Items); err != nil {
		return nil, fmt.Errorf("invoice repo: bad items payload: %w", err)
	}
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("invoice repo: bad total %q: %w", total, err)
	}
	invoice.Total = parsed
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.UpdatedAt = invoice.UpdatedAt.UTC()
	return &invoice, nil
}
