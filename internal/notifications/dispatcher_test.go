package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
)

type stubRepo struct {
	created []*models.Notification
	err     error
}

func (s *stubRepo) Create(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, n)
	return nil
}

func (s *stubRepo) ListByAccount(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return nil, nil
}

func TestNotify_PersistsRow(t *testing.T) {
	repo := &stubRepo{}
	d := NewDispatcher(repo, nil)
	account := uuid.New()

	d.Notify(context.Background(), account, "Booking confirmed", "Your booking BKG-7G42KMXQ was confirmed.", "/bookings/BKG-7G42KMXQ")

	if len(repo.created) != 1 {
		t.Fatalf("created = %d rows, want 1", len(repo.created))
	}
	got := repo.created[0]
	if got.AccountID != account {
		t.Fatalf("account = %s, want %s", got.AccountID, account)
	}
	if got.URL == nil || *got.URL != "/bookings/BKG-7G42KMXQ" {
		t.Fatalf("url = %v, want /bookings/BKG-7G42KMXQ", got.URL)
	}
}

func TestNotify_SwallowsErrors(t *testing.T) {
	d := NewDispatcher(&stubRepo{err: errors.New("insert failed")}, nil)
	// Must not panic or propagate.
	d.Notify(context.Background(), uuid.New(), "title", "content", "")
}

func TestNotify_IgnoresNilAccount(t *testing.T) {
	repo := &stubRepo{}
	d := NewDispatcher(repo, nil)
	d.Notify(context.Background(), uuid.Nil, "title", "content", "")
	if len(repo.created) != 0 {
		t.Fatalf("created = %d rows, want 0", len(repo.created))
	}
}
