package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	workrecords "payroll-cloud/internal/workrecords/domain"
)

const defaultWorkRecordsTable = "work_records"

// RecordRepository is a Postgres implementation for work records.
type RecordRepository struct {
	db    *sql.DB
	table string
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db *sql.DB, opts ...RecordOption) *RecordRepository {
	repo := &RecordRepository{db: db, table: defaultWorkRecordsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RecordOption configures the repository.
type RecordOption func(*RecordRepository)

// WithRecordsTable overrides the default table name.
func WithRecordsTable(table string) RecordOption {
	return func(repo *RecordRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const recordColumns = `id, employee_id, employee_name, date, start_time, end_time, hours, status, created_at, updated_at`

// List returns records matching the filter, ordered by date.
func (r *RecordRepository) List(ctx context.Context, filter workrecords.Filter) ([]workrecords.WorkRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("work record repo: nil db")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, recordColumns, r.table)
	var args []any
	next := func() string { return "$" + strconv.Itoa(len(args)) }

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += ` AND employee_id = ` + next()
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += ` AND date = ` + next()
	}
	if filter.Month != "" {
		args = append(args, filter.Month+"%")
		query += ` AND date LIKE ` + next()
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = ` + next()
	}
	query += ` ORDER BY date, employee_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []workrecords.WorkRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *record)
	}
	return list, rows.Err()
}

// Get loads one record by id.
func (r *RecordRepository) Get(ctx context.Context, id string) (*workrecords.WorkRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("work record repo: nil db")
	}
	if id == "" {
		return nil, errors.New("work record repo: empty id")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, recordColumns, r.table)
	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Save upserts a record.
func (r *RecordRepository) Save(ctx context.Context, record *workrecords.WorkRecord) error {
	if r == nil || r.db == nil {
		return errors.New("work record repo: nil db")
	}
	if record == nil {
		return errors.New("work record repo: nil record")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, employee_id, employee_name, date, start_time, end_time, hours, status
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (id)
DO UPDATE SET
	employee_name = EXCLUDED.employee_name,
	date = EXCLUDED.date,
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time,
	hours = EXCLUDED.hours,
	status = EXCLUDED.status,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.EmployeeID,
		record.EmployeeName,
		record.Date,
		record.StartTime,
		record.EndTime,
		record.Hours.String(),
		record.Status,
	)
	return err
}

// Delete removes a record by id.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("work record repo: nil db")
	}
	if id == "" {
		return errors.New("work record repo: empty id")
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return workrecords.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*workrecords.WorkRecord, error) {
	var (
		record workrecords.WorkRecord
		hours  string
	)
	if err := row.Scan(
		&record.ID,
		&record.EmployeeID,
		&record.EmployeeName,
		&record.Date,
		&record.StartTime,
		&record.EndTime,
		&hours,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(hours)
	if err != nil {
		return nil, fmt.Errorf("work record repo: bad hours %q: %w", hours, err)
	}
	record.Hours = parsed
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return &record, nil
}
