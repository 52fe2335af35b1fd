package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/trongle278/seasondecorbe-sub000/api/responses"
	"github.com/trongle278/seasondecorbe-sub000/api/validators"
	"github.com/trongle278/seasondecorbe-sub000/internal/notifications"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
)

const notificationListLimit = 50

type notificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	URL       *string    `json:"url,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ListNotifications returns the account's recent notifications, newest first.
func ListNotifications(repo notifications.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := requireAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", notificationListLimit, 1, notificationListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListByAccount(r.Context(), accountID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]notificationResponse, 0, len(rows))
		for i := range rows {
			out = append(out, notificationResponse{
				ID:        rows[i].ID,
				Title:     rows[i].Title,
				Content:   rows[i].Content,
				URL:       rows[i].URL,
				ReadAt:    rows[i].ReadAt,
				CreatedAt: rows[i].CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
