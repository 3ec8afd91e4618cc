package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	notifications "payroll-cloud/internal/notifications/domain"
)

// Service handles the notification feed.
type Service struct {
	repo notifications.Repository
}

// NewService constructs a notification service.
func NewService(repo notifications.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("notifications: nil repo")
	}
	return &Service{repo: repo}, nil
}

// List returns the feed, newest first.
func (s *Service) List(ctx context.Context) ([]notifications.Notification, error) {
	return s.repo.List(ctx)
}

// Notify appends an entry to the feed. An empty kind defaults to info.
// Satisfies the holiday service's notifier port.
func (s *Service) Notify(ctx context.Context, text, kind string) error {
	if kind == "" {
		kind = notifications.KindInfo
	}
	notification := notifications.Notification{
		ID:        "ntf-" + uuid.NewString(),
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := notification.Validate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, &notification)
}

// MarkRead flags one entry as read.
func (s *Service) MarkRead(ctx context.Context, id string) (*notifications.Notification, error) {
	if id == "" {
		return nil, errors.New("notifications: empty id")
	}
	return s.repo.MarkRead(ctx, id)
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("notifications: empty id")
	}
	return s.repo.Delete(ctx, id)
}
