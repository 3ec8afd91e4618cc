package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Notification kinds.
const (
	KindInfo    = "info"
	KindWarning = "warning"
	KindSuccess = "success"
)

// ErrNotFound is returned for unknown notification ids.
var ErrNotFound = errors.New("notification: not found")

// Notification is one entry in the feed.
type Notification struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks notification invariants.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification: empty id")
	}
	if strings.TrimSpace(n.Text) == "" {
		return errors.New("notification: empty text")
	}
	switch n.Kind {
	case KindInfo, KindWarning, KindSuccess:
	default:
		return fmt.Errorf("notification: unknown kind %q", n.Kind)
	}
	return nil
}

// Repository manages notification persistence.
type Repository interface {
	List(ctx context.Context) ([]Notification, error)
	Save(ctx context.Context, notification *Notification) error
	MarkRead(ctx context.Context, id string) (*Notification, error)
	Delete(ctx context.Context, id string) error
}
