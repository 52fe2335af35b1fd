package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
)

// Dispatcher is the fire-and-forget notification sink. Delivery failures are
// logged and never surfaced to the caller: a notification must not undo an
// already-committed booking or ledger change.
type Dispatcher struct {
	repo Repository
	logg *logger.Logger
}

// NewDispatcher wires the dispatcher with its persistence and logger.
func NewDispatcher(repo Repository, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, logg: logg}
}

// Notify records a notification for the account. Errors are swallowed.
func (d *Dispatcher) Notify(ctx context.Context, accountID uuid.UUID, title, content, url string) {
	if d == nil || d.repo == nil || accountID == uuid.Nil {
		return
	}
	notification := &models.Notification{
		AccountID: accountID,
		Title:     title,
		Content:   content,
	}
	if url != "" {
		notification.URL = &url
	}
	if err := d.repo.Create(ctx, notification); err != nil && d.logg != nil {
		d.logg.Error(ctx, "notification dispatch failed", err)
	}
}
