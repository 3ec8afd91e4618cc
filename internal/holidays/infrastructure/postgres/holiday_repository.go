package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	holidays "payroll-cloud/internal/holidays/domain"
)

const defaultHolidaysTable = "holidays"

// HolidayRepository is a Postgres implementation for holiday requests.
type HolidayRepository struct {
	db    *sql.DB
	table string
}

// NewHolidayRepository constructs a repository.
func NewHolidayRepository(db *sql.DB, opts ...HolidayOption) *HolidayRepository {
	repo := &HolidayRepository{db: db, table: defaultHolidaysTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// HolidayOption configures the repository.
type HolidayOption func(*HolidayRepository)

// WithHolidaysTable overrides the default table name.
func WithHolidaysTable(table string) HolidayOption {
	return func(repo *HolidayRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const holidayColumns = `id, employee_id, employee_name, type, start_date, end_date, notes, approval, created_at, updated_at`

// List returns requests matching the filter, newest first.
func (r *HolidayRepository) List(ctx context.Context, filter holidays.Filter) ([]holidays.Holiday, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("holiday repo: nil db")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, holidayColumns, r.table)
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += ` AND employee_id = $` + strconv.Itoa(len(args))
	}
	if filter.Approval != "" {
		args = append(args, filter.Approval)
		query += ` AND approval = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []holidays.Holiday
	for rows.Next() {
		var holiday holidays.Holiday
		if err := rows.Scan(
			&holiday.ID,
			&holiday.EmployeeID,
			&holiday.EmployeeName,
			&holiday.Type,
			&holiday.StartDate,
			&holiday.EndDate,
			&holiday.Notes,
			&holiday.Approval,
			&holiday.CreatedAt,
			&holiday.UpdatedAt,
		); err != nil {
			return nil, err
		}
		holiday.CreatedAt = holiday.CreatedAt.UTC()
		holiday.UpdatedAt = holiday.UpdatedAt.UTC()
		list = append(list, holiday)
	}
	return list, rows.Err()
}

// Get loads one request by id.
func (r *HolidayRepository) Get(ctx context.Context, id string) (*holidays.Holiday, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("holiday repo: nil db")
	}
	if id == "" {
		return nil, errors.New("holiday repo: empty id")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, holidayColumns, r.table)

	var holiday holidays.Holiday
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&holiday.ID,
		&holiday.EmployeeID,
		&holiday.EmployeeName,
		&holiday.Type,
		&holiday.StartDate,
		&holiday.EndDate,
		&holiday.Notes,
		&holiday.Approval,
		&holiday.CreatedAt,
		&holiday.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	holiday.CreatedAt = holiday.CreatedAt.UTC()
	holiday.UpdatedAt = holiday.UpdatedAt.UTC()
	return &holiday, nil
}

// Save upserts a request.
func (r *HolidayRepository) Save(ctx context.Context, holiday *holidays.Holiday) error {
	if r == nil || r.db == nil {
		return errors.New("holiday repo: nil db")
	}
	if holiday == nil {
		return errors.New("holiday repo: nil holiday")
	}
	if err := holiday.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, employee_id, employee_name, type, start_date, end_date, notes, approval
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (id)
DO UPDATE SET
	type = EXCLUDED.type,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	notes = EXCLUDED.notes,
	approval = EXCLUDED.approval,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		holiday.ID,
		holiday.EmployeeID,
		holiday.EmployeeName,
		holiday.Type,
		holiday.StartDate,
		holiday.EndDate,
		holiday.Notes,
		holiday.Approval,
	)
	return err
}
