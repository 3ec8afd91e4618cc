package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	payroll "payroll-cloud/internal/payroll/domain"
)

const defaultPaymentsTable = "payments"

// PaymentRepository is a Postgres implementation for payment history.
type PaymentRepository struct {
	db    *sql.DB
	table string
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db *sql.DB, opts ...PaymentOption) *PaymentRepository {
	repo := &PaymentRepository{db: db, table: defaultPaymentsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PaymentOption configures the repository.
type PaymentOption func(*PaymentRepository)

// WithPaymentsTable overrides the default table name.
func WithPaymentsTable(table string) PaymentOption {
	return func(repo *PaymentRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const paymentColumns = `id, employee_id, employee_name, month, total_hours, total_pay, rate_per_hour, status, date_paid, created_at`

// List returns payments, optionally filtered by month, newest first.
func (r *PaymentRepository) List(ctx context.Context, month string) ([]payroll.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, paymentColumns, r.table)
	var args []any
	if month != "" {
		query += ` WHERE month = $1`
		args = append(args, month)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []payroll.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *payment)
	}
	return list, rows.Err()
}

// Get loads one payment by id.
func (r *PaymentRepository) Get(ctx context.Context, id string) (*payroll.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	if id == "" {
		return nil, errors.New("payment repo: empty id")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, paymentColumns, r.table)
	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// Save upserts a payment.
func (r *PaymentRepository) Save(ctx context.Context, payment *payroll.Payment) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	if payment == nil {
		return errors.New("payment repo: nil payment")
	}
	if err := payment.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, employee_id, employee_name, month, total_hours, total_pay, rate_per_hour, status, date_paid
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9
)
ON CONFLICT (id)
DO UPDATE SET
	status = EXCLUDED.status,
	date_paid = EXCLUDED.date_paid`, r.table)

	var datePaid any
	if payment.DatePaid != nil {
		datePaid = payment.DatePaid.UTC()
	}
	_, err := r.db.ExecContext(
		ctx,
		query,
		payment.ID,
		payment.EmployeeID,
		payment.EmployeeName,
		payment.Month,
		payment.TotalHours.String(),
		payment.TotalPay.String(),
		payment.RatePerHour.String(),
		payment.Status,
		datePaid,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*payroll.Payment, error) {
	var (
		payment          payroll.Payment
		hours, pay, rate string
		datePaid         sql.NullTime
	)
	if err := row.Scan(
		&payment.ID,
		&payment.EmployeeID,
		&payment.EmployeeName,
		&payment.Month,
		&hours,
		&pay,
		&rate,
		&payment.Status,
		&datePaid,
		&payment.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if payment.TotalHours, err = decimal.NewFromString(hours); err != nil {
		return nil, fmt.Errorf("payment repo: bad total hours %q: %w", hours, err)
	}
	if payment.TotalPay, err = decimal.NewFromString(pay); err != nil {
		return nil, fmt.Errorf("payment repo: bad total pay %q: %w", pay, err)
	}
	if payment.RatePerHour, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("payment repo: bad rate %q: %w", rate, err)
	}
	if datePaid.Valid {
		paid := datePaid.Time.UTC()
		payment.DatePaid = &paid
	}
	payment.CreatedAt = payment.CreatedAt.UTC()
	return &payment, nil
}
