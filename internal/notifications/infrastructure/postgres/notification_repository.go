package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	notifications "payroll-cloud/internal/notifications/domain"
)

const defaultNotificationsTable = "notifications"

// NotificationRepository is a Postgres implementation for the feed.
type NotificationRepository struct {
	db    *sql.DB
	table string
}

// NewNotificationRepository constructs a repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db, table: defaultNotificationsTable}
}

// List returns the feed, newest first.
func (r *NotificationRepository) List(ctx context.Context) ([]notifications.Notification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notification repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, text, kind, is_read, created_at
FROM %s
ORDER BY created_at DESC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []notifications.Notification
	for rows.Next() {
		var notification notifications.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.Text,
			&notification.Kind,
			&notification.IsRead,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		notification.CreatedAt = notification.CreatedAt.UTC()
		list = append(list, notification)
	}
	return list, rows.Err()
}

// Save inserts a notification.
func (r *NotificationRepository) Save(ctx context.Context, notification *notifications.Notification) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	if notification == nil {
		return errors.New("notification repo: nil notification")
	}
	if err := notification.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, text, kind, is_read)
VALUES ($1, $2, $3, $4)`, r.table)
	_, err := r.db.ExecContext(ctx, query, notification.ID, notification.Text, notification.Kind, notification.IsRead)
	return err
}

// MarkRead flags one entry as read and returns it.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*notifications.Notification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notification repo: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s SET is_read = TRUE
WHERE id = $1
RETURNING id, text, kind, is_read, created_at`, r.table)

	var notification notifications.Notification
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&notification.ID,
		&notification.Text,
		&notification.Kind,
		&notification.IsRead,
		&notification.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notifications.ErrNotFound
		}
		return nil, err
	}
	notification.CreatedAt = notification.CreatedAt.UTC()
	return &notification, nil
}

// Delete removes one entry.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return notifications.ErrNotFound
	}
	return nil
}
