package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"payroll-cloud/internal/auth"
	employees "payroll-cloud/internal/employees/domain"
)

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const defaultEmployeesTable = "employees"

// EmployeeRepository is a Postgres implementation for employees.
type EmployeeRepository struct {
	db    DBTX
	table string
}

// NewEmployeeRepository constructs a repository.
func NewEmployeeRepository(db DBTX, opts ...EmployeeOption) *EmployeeRepository {
	repo := &EmployeeRepository{db: db, table: defaultEmployeesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EmployeeOption configures the repository.
type EmployeeOption func(*EmployeeRepository)

// WithEmployeesTable overrides the default table name.
func WithEmployeesTable(table string) EmployeeOption {
	return func(repo *EmployeeRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const employeeColumns = `id, name, email, phone, address, role, bank_name, iban, bic, job_title, contract, hourly_rate, start_date, active, created_at, updated_at`

// List returns all employees ordered by id.
func (r *EmployeeRepository) List(ctx context.Context) ([]employees.Employee, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("employee repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY id`, employeeColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []employees.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *emp)
	}
	return list, rows.Err()
}

// Get loads one employee by id.
func (r *EmployeeRepository) Get(ctx context.Context, id string) (*employees.Employee, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("employee repo: nil db")
	}
	if id == "" {
		return nil, errors.New("employee repo: empty id")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, employeeColumns, r.table)

	emp, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return emp, nil
}

// Save upserts an employee. An empty passwordHash keeps the stored
// hash untouched.
func (r *EmployeeRepository) Save(ctx context.Context, emp *employees.Employee, passwordHash string) error {
	if r == nil || r.db == nil {
		return errors.New("employee repo: nil db")
	}
	if emp == nil {
		return errors.New("employee repo: nil employee")
	}
	if err := emp.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, name, email, phone, address, role,
	bank_name, iban, bic,
	job_title, contract, hourly_rate, start_date,
	active, password_hash
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULLIF($15, '')
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	address = EXCLUDED.address,
	role = EXCLUDED.role,
	bank_name = EXCLUDED.bank_name,
	iban = EXCLUDED.iban,
	bic = EXCLUDED.bic,
	job_title = EXCLUDED.job_title,
	contract = EXCLUDED.contract,
	hourly_rate = EXCLUDED.hourly_rate,
	start_date = EXCLUDED.start_date,
	active = EXCLUDED.active,
	password_hash = COALESCE(NULLIF($15, ''), %s.password_hash),
	updated_at = NOW()`, r.table, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		emp.ID,
		emp.Name,
		emp.Email,
		emp.Phone,
		emp.Address,
		emp.Role,
		emp.Bank.BankName,
		emp.Bank.IBAN,
		emp.Bank.BIC,
		emp.Employment.JobTitle,
		emp.Employment.Contract,
		emp.Employment.HourlyRate.String(),
		emp.Employment.StartDate,
		emp.Active,
		passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "employees_email_key") {
			return employees.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Delete removes an employee by id.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("employee repo: nil db")
	}
	if id == "" {
		return errors.New("employee repo: empty id")
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return employees.ErrNotFound
	}
	return nil
}

// CredentialByEmail loads login credentials for the auth middleware.
func (r *EmployeeRepository) CredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("employee repo: nil db")
	}
	if email == "" {
		return nil, auth.ErrInvalidCredentials
	}
	query := fmt.Sprintf(`
SELECT id, name, email, role, COALESCE(password_hash, '')
FROM %s
WHERE lower(email) = lower($1) AND active
LIMIT 1`, r.table)

	var cred auth.Credential
	if err := r.db.QueryRowContext(ctx, query, email).Scan(
		&cred.EmployeeID,
		&cred.Name,
		&cred.Email,
		&cred.Role,
		&cred.PasswordHash,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if cred.PasswordHash == "" {
		return nil, auth.ErrInvalidCredentials
	}
	return &cred, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*employees.Employee, error) {
	var (
		emp  employees.Employee
		rate string
	)
	if err := row.Scan(
		&emp.ID,
		&emp.Name,
		&emp.Email,
		&emp.Phone,
		&emp.Address,
		&emp.Role,
		&emp.Bank.BankName,
		&emp.Bank.IBAN,
		&emp.Bank.BIC,
		&emp.Employment.JobTitle,
		&emp.Employment.Contract,
		&rate,
		&emp.Employment.StartDate,
		&emp.Active,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("employee repo: bad hourly rate %q: %w", rate, err)
	}
	emp.Employment.HourlyRate = parsed
	emp.CreatedAt = emp.CreatedAt.UTC()
	emp.UpdatedAt = emp.UpdatedAt.UTC()
	return &emp, nil
}
